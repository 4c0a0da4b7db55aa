package notifications

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/apps/quests"
	"github.com/questchain/questchain-api/internal/identity"
	"github.com/questchain/questchain-api/internal/metrics"
	"github.com/questchain/questchain-api/internal/models"
	"gorm.io/gorm"
)

const (
	listLimit = 50
	batchSize = 100
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTitleRequired        = errors.New("title is required")
	ErrMessageRequired      = errors.New("message is required")
)

type NotificationService struct {
	db       *gorm.DB
	tzOffset time.Duration
	now      func() time.Time
}

func NewNotificationService(db *gorm.DB, tzOffset time.Duration) *NotificationService {
	return &NotificationService{db: db, tzOffset: tzOffset, now: time.Now}
}

// List returns the newest notifications of the user.
func (s *NotificationService) List(userID uuid.UUID) ([]Notification, error) {
	items := []Notification{}
	if err := s.db.Scopes(identity.ForUser(userID)).
		Order("created_at DESC").
		Limit(listLimit).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, nil
}

func (s *NotificationService) MarkRead(userID, id uuid.UUID) (*Notification, error) {
	var n Notification
	if err := s.db.Scopes(identity.ForUser(userID)).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	if !n.Read {
		if err := s.db.Model(&n).Update("read", true).Error; err != nil {
			return nil, fmt.Errorf("failed to mark notification read: %w", err)
		}
		n.Read = true
	}
	return &n, nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	res := s.db.Model(&Notification{}).
		Scopes(identity.ForUser(userID)).
		Where("read = ?", false).
		Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Broadcast stores one notification per existing user.
func (s *NotificationService) Broadcast(req BroadcastRequest) (int, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return 0, ErrTitleRequired
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return 0, ErrMessageRequired
	}

	var userIDs []uuid.UUID
	if err := s.db.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	batch := make([]Notification, 0, len(userIDs))
	for _, id := range userIDs {
		batch = append(batch, newNotification(id, title, message, TypeBroadcast, nil))
	}
	if err := s.store(batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// SendEveningReminders creates one reminder per incomplete item scheduled today.
func (s *NotificationService) SendEveningReminders() (int, error) {
	today := quests.Today(s.now(), s.tzOffset)
	days, err := s.daysWithIncompleteItems(today)
	if err != nil {
		return 0, err
	}

	var batch []Notification
	for i := range days {
		dayID := days[i].ID
		for _, item := range days[i].IncompleteItems() {
			batch = append(batch, newNotification(
				days[i].UserID,
				"Quest Reminder",
				fmt.Sprintf("Don't forget to complete \"%s\" today! Take some time now to complete it.", item.Name),
				TypeQuest,
				&dayID,
			))
		}
	}
	if err := s.store(batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// SendDailySummary creates one summary per day of yesterday that was left incomplete.
func (s *NotificationService) SendDailySummary() (int, error) {
	yesterday, err := quests.ShiftDate(quests.Today(s.now(), s.tzOffset), -1)
	if err != nil {
		return 0, err
	}
	days, err := s.daysWithIncompleteItems(yesterday)
	if err != nil {
		return 0, err
	}

	var batch []Notification
	for i := range days {
		count := len(days[i].IncompleteItems())
		if count == 0 {
			continue
		}
		batch = append(batch, newNotification(
			days[i].UserID,
			"Daily Summary",
			fmt.Sprintf("You had %d incomplete quests yesterday. Try to maintain your streak today!", count),
			TypeQuest,
			nil,
		))
	}
	if err := s.store(batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// DeleteUserData removes every notification of the user.
func (s *NotificationService) DeleteUserData(tx *gorm.DB, userID uuid.UUID) error {
	if err := tx.Scopes(identity.ForUser(userID)).Delete(&Notification{}).Error; err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}

// daysWithIncompleteItems loads the quest days of date that belong to existing
// users and still hold at least one incomplete item.
func (s *NotificationService) daysWithIncompleteItems(date string) ([]quests.QuestDay, error) {
	var days []quests.QuestDay
	if err := s.db.
		Where("date = ?", date).
		Where("user_id IN (?)", s.db.Model(&models.User{}).Select("id")).
		Order("user_id").
		Find(&days).Error; err != nil {
		return nil, fmt.Errorf("failed to load quest days for %s: %w", date, err)
	}

	out := days[:0]
	for _, day := range days {
		if len(day.IncompleteItems()) > 0 {
			out = append(out, day)
		}
	}
	return out, nil
}

func (s *NotificationService) store(batch []Notification) error {
	if len(batch) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(batch, batchSize).Error; err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(batch[0].Type).Add(float64(len(batch)))
	return nil
}

func newNotification(userID uuid.UUID, title, message, kind string, questID *uuid.UUID) Notification {
	return Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
		QuestID: questID,
	}
}
