package quests

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/identity"
	"github.com/questchain/questchain-api/internal/metrics"
	"github.com/questchain/questchain-api/internal/models"
	"gorm.io/gorm"
)

const (
	maxQuestDays = 366
	heatmapDays  = 30
)

var (
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrNameRequired     = errors.New("quest name is required")
	ErrInvalidType      = errors.New("quest type must be goal or checklist")
	ErrInvalidGoal      = errors.New("goal must be greater than 0")
	ErrInvalidPenalty   = errors.New("penalty points cannot be negative")
	ErrInvalidProgress  = errors.New("progress cannot be negative")
	ErrInvalidDayCount  = errors.New("number of days must be between 1 and 366")
	ErrDayNotFound      = errors.New("quest not found for this date")
	ErrItemNotFound     = errors.New("quest item not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrConcurrentChange = errors.New("quest day was created by another request, please retry")
)

// IsValidation reports whether err is caused by bad client input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidGoal) ||
		errors.Is(err, ErrInvalidPenalty) ||
		errors.Is(err, ErrInvalidProgress) ||
		errors.Is(err, ErrInvalidDayCount)
}

type QuestService struct {
	db       *gorm.DB
	tzOffset time.Duration
	now      func() time.Time
}

func NewQuestService(db *gorm.DB, tzOffset time.Duration) *QuestService {
	return &QuestService{db: db, tzOffset: tzOffset, now: time.Now}
}

// Penalty is the sum of penalty points over incomplete items, or NoDataPenalty
// for an empty day.
func Penalty(items []QuestItem) int {
	if len(items) == 0 {
		return NoDataPenalty
	}
	total := 0
	for _, item := range items {
		if !item.Completed {
			total += item.PenaltyPoints
		}
	}
	return total
}

// WeightedProgress returns the penalty-weighted completion percentage of a day.
// Checklist items contribute their raw progress, so values above 100 are possible.
func WeightedProgress(items []QuestItem) float64 {
	if len(items) == 0 {
		return 0
	}
	totalWeight := 0
	for _, item := range items {
		totalWeight += item.PenaltyPoints
	}
	if totalWeight == 0 {
		return 0
	}

	var weighted float64
	for _, item := range items {
		var ratio float64
		switch {
		case item.Type == TypeChecklist:
			ratio = item.Progress
		case item.Goal != 0:
			ratio = item.Progress / float64(item.Goal)
		}
		weighted += float64(item.PenaltyPoints) * ratio
	}
	return weighted / float64(totalWeight) * 100
}

// SortItems orders goal items before checklist items, then by ascending order.
// Items with equal keys keep their relative position.
func SortItems(items []QuestItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := typeRank(items[i].Type), typeRank(items[j].Type)
		if ri != rj {
			return ri < rj
		}
		return items[i].Order < items[j].Order
	})
}

func typeRank(t string) int {
	if t == TypeGoal {
		return 0
	}
	return 1
}

// GetDay returns the stored day or an unsaved empty day carrying NoDataPenalty.
func (s *QuestService) GetDay(userID uuid.UUID, date string) (*QuestDay, error) {
	if !ValidDate(date) {
		return nil, ErrInvalidDate
	}
	day, err := s.findDay(s.db, userID, date)
	if errors.Is(err, ErrDayNotFound) {
		return &QuestDay{UserID: userID, Date: date, Quests: []QuestItem{}, Penalty: NoDataPenalty}, nil
	}
	return day, err
}

// ReplaceDay stores the given item list as the full content of the day.
func (s *QuestService) ReplaceDay(userID uuid.UUID, date string, items []QuestItem) (*QuestDay, error) {
	if !ValidDate(date) {
		return nil, ErrInvalidDate
	}
	normalized := make([]QuestItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Type == "" {
			item.Type = TypeGoal
		}
		if item.Type != TypeGoal && item.Type != TypeChecklist {
			return nil, ErrInvalidType
		}
		if item.PenaltyPoints < 0 {
			return nil, ErrInvalidPenalty
		}
		normalized = append(normalized, item)
	}

	var day *QuestDay
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		day, err = s.upsertDay(tx, userID, date, func(d *QuestDay) {
			d.Quests = normalized
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return day, nil
}

// CreateQuests appends one new item to each day of the requested range. Days
// already written stay written if a later day fails.
func (s *QuestService) CreateQuests(userID uuid.UUID, req CreateQuestRequest) ([]QuestDay, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	questType := req.Type
	if questType == "" {
		questType = TypeGoal
	}
	if questType != TypeGoal && questType != TypeChecklist {
		return nil, ErrInvalidType
	}
	goal := 1
	if questType == TypeGoal {
		if req.Goal <= 0 {
			return nil, ErrInvalidGoal
		}
		goal = req.Goal
	}
	if req.PenaltyPoints < 0 {
		return nil, ErrInvalidPenalty
	}
	if req.NumberOfDays < 1 || req.NumberOfDays > maxQuestDays {
		return nil, ErrInvalidDayCount
	}
	start, err := time.Parse(DateLayout, req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	days := make([]QuestDay, 0, req.NumberOfDays)
	for i := 0; i < req.NumberOfDays; i++ {
		date := start.AddDate(0, 0, i).Format(DateLayout)
		var day *QuestDay
		err := s.db.Transaction(func(tx *gorm.DB) error {
			var err error
			day, err = s.upsertDay(tx, userID, date, func(d *QuestDay) {
				d.Quests = append(d.Quests, QuestItem{
					ID:            uuid.NewString(),
					Name:          name,
					Progress:      0,
					Goal:          goal,
					Completed:     false,
					PenaltyPoints: req.PenaltyPoints,
					Type:          questType,
					Order:         countType(d.Quests, questType),
				})
			})
			return err
		})
		if err != nil {
			return days, fmt.Errorf("failed to create quest for %s: %w", date, err)
		}
		metrics.QuestItemsCreated.WithLabelValues(questType).Inc()
		days = append(days, *day)
	}
	return days, nil
}

// Reorder assigns new order values to items of one type and re-sorts the day.
func (s *QuestService) Reorder(userID uuid.UUID, date string, req ReorderRequest) ([]QuestItem, error) {
	if !ValidDate(date) {
		return nil, ErrInvalidDate
	}
	var items []QuestItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		day, err := s.findDay(tx, userID, date)
		if err != nil {
			return err
		}
		for _, o := range req.QuestOrders {
			for i := range day.Quests {
				if day.Quests[i].ID == o.QuestID && day.Quests[i].Type == req.QuestType {
					day.Quests[i].Order = o.Order
					break
				}
			}
		}
		SortItems(day.Quests)
		if err := s.saveDay(tx, day); err != nil {
			return err
		}
		items = day.Quests
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem applies a partial update to one item. Progress beyond the goal is
// clamped and completes the item.
func (s *QuestService) UpdateItem(userID uuid.UUID, date, itemID string, req UpdateItemRequest) (*QuestDay, error) {
	if !ValidDate(date) {
		return nil, ErrInvalidDate
	}
	var updated *QuestDay
	err := s.db.Transaction(func(tx *gorm.DB) error {
		day, err := s.findDay(tx, userID, date)
		if err != nil {
			return err
		}
		idx := indexOf(day.Quests, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}
		if err := applyItemUpdate(&day.Quests[idx], req); err != nil {
			return err
		}
		if err := s.saveDay(tx, day); err != nil {
			return err
		}
		updated = day
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyItemUpdate(item *QuestItem, req UpdateItemRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return ErrNameRequired
		}
		item.Name = name
	}
	if req.PenaltyPoints != nil {
		if *req.PenaltyPoints < 0 {
			return ErrInvalidPenalty
		}
		item.PenaltyPoints = *req.PenaltyPoints
	}

	recompute := false
	if req.Goal != nil && item.Type == TypeGoal {
		if *req.Goal <= 0 {
			return ErrInvalidGoal
		}
		item.Goal = *req.Goal
		recompute = true
	}
	if req.Completed != nil {
		item.Completed = *req.Completed
	}
	if req.Progress != nil {
		if *req.Progress < 0 {
			return ErrInvalidProgress
		}
		item.Progress = *req.Progress
		recompute = true
	}

	if recompute {
		goal := float64(item.Goal)
		if item.Progress > goal {
			item.Progress = goal
			item.Completed = true
		} else {
			item.Completed = item.Progress >= goal
		}
	}
	return nil
}

// DeleteItem removes one item from a day; an emptied day keeps NoDataPenalty.
func (s *QuestService) DeleteItem(userID uuid.UUID, date, itemID string) (*QuestDay, error) {
	if !ValidDate(date) {
		return nil, ErrInvalidDate
	}
	var updated *QuestDay
	err := s.db.Transaction(func(tx *gorm.DB) error {
		day, err := s.findDay(tx, userID, date)
		if err != nil {
			return err
		}
		idx := indexOf(day.Quests, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}
		day.Quests = append(day.Quests[:idx], day.Quests[idx+1:]...)
		if err := s.saveDay(tx, day); err != nil {
			return err
		}
		updated = day
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Regularity reports how many tracked days since account creation were fully completed.
func (s *QuestService) Regularity(userID uuid.UUID) (*RegularityResponse, error) {
	var user models.User
	if err := s.db.Select("id", "created_at").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	from := Today(user.CreatedAt, s.tzOffset)
	to := Today(s.now(), s.tzOffset)

	var penalties []int
	if err := s.db.Model(&QuestDay{}).
		Scopes(identity.ForUser(userID)).
		Where("date >= ? AND date <= ? AND penalty <> ?", from, to, NoDataPenalty).
		Pluck("penalty", &penalties).Error; err != nil {
		return nil, fmt.Errorf("failed to load quest days: %w", err)
	}

	resp := &RegularityResponse{TotalDays: len(penalties)}
	for _, p := range penalties {
		if p == 0 {
			resp.CompletedDays++
		}
	}
	resp.IncompleteDays = resp.TotalDays - resp.CompletedDays
	if resp.TotalDays > 0 {
		resp.RegularityPercentage = float64(resp.CompletedDays) * 100 / float64(resp.TotalDays)
	}
	return resp, nil
}

// Heatmap returns exactly thirty dated entries for the window ending offset*30
// days before today. Days without data carry (-1, -1).
func (s *QuestService) Heatmap(userID uuid.UUID, offset int) (map[string]HeatmapEntry, error) {
	end, err := time.Parse(DateLayout, Today(s.now(), s.tzOffset))
	if err != nil {
		return nil, err
	}
	end = end.AddDate(0, 0, -offset*heatmapDays)
	start := end.AddDate(0, 0, -(heatmapDays - 1))

	var days []QuestDay
	if err := s.db.Scopes(identity.ForUser(userID)).
		Where("date >= ? AND date <= ?", start.Format(DateLayout), end.Format(DateLayout)).
		Find(&days).Error; err != nil {
		return nil, fmt.Errorf("failed to load quest days: %w", err)
	}
	byDate := make(map[string]*QuestDay, len(days))
	for i := range days {
		byDate[days[i].Date] = &days[i]
	}

	out := make(map[string]HeatmapEntry, heatmapDays)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		if day, ok := byDate[key]; ok {
			out[key] = HeatmapEntry{Penalty: day.Penalty, ProgressPercentage: WeightedProgress(day.Quests)}
			continue
		}
		out[key] = HeatmapEntry{Penalty: NoDataPenalty, ProgressPercentage: NoDataPenalty}
	}
	return out, nil
}

// DeleteUserData removes every quest day of the user.
func (s *QuestService) DeleteUserData(tx *gorm.DB, userID uuid.UUID) error {
	if err := tx.Scopes(identity.ForUser(userID)).Delete(&QuestDay{}).Error; err != nil {
		return fmt.Errorf("failed to delete quest days: %w", err)
	}
	return nil
}

func (s *QuestService) findDay(db *gorm.DB, userID uuid.UUID, date string) (*QuestDay, error) {
	var day QuestDay
	if err := db.Scopes(identity.ForUser(userID)).Where("date = ?", date).First(&day).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, fmt.Errorf("failed to load quest day: %w", err)
	}
	if day.Quests == nil {
		day.Quests = []QuestItem{}
	}
	return &day, nil
}

// upsertDay loads or starts the day, applies mutate, and persists it with a
// recomputed penalty.
func (s *QuestService) upsertDay(tx *gorm.DB, userID uuid.UUID, date string, mutate func(*QuestDay)) (*QuestDay, error) {
	day, err := s.findDay(tx, userID, date)
	switch {
	case errors.Is(err, ErrDayNotFound):
		day = &QuestDay{ID: uuid.New(), UserID: userID, Date: date, Quests: []QuestItem{}}
		mutate(day)
		day.Penalty = Penalty(day.Quests)
		if err := tx.Create(day).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrConcurrentChange
			}
			return nil, fmt.Errorf("failed to create quest day: %w", err)
		}
		return day, nil
	case err != nil:
		return nil, err
	}

	mutate(day)
	if err := s.saveDay(tx, day); err != nil {
		return nil, err
	}
	return day, nil
}

func (s *QuestService) saveDay(tx *gorm.DB, day *QuestDay) error {
	day.Penalty = Penalty(day.Quests)
	if err := tx.Save(day).Error; err != nil {
		return fmt.Errorf("failed to save quest day: %w", err)
	}
	return nil
}

func indexOf(items []QuestItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func countType(items []QuestItem, t string) int {
	n := 0
	for _, item := range items {
		if item.Type == t {
			n++
		}
	}
	return n
}
