package quests

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TypeGoal      = "goal"
	TypeChecklist = "checklist"

	// NoDataPenalty marks a day without any items.
	NoDataPenalty = -1
)

// QuestDay holds one user's quest items for a single calendar date.
type QuestDay struct {
	ID        uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID    uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex:idx_quest_days_user_date" json:"user"`
	Date      string                         `gorm:"size:10;not null;uniqueIndex:idx_quest_days_user_date;index" json:"date"`
	Quests    datatypes.JSONSlice[QuestItem] `json:"quests"`
	Penalty   int                            `gorm:"not null" json:"penalty"`
	CreatedAt time.Time                      `json:"createdAt"`
	UpdatedAt time.Time                      `json:"updatedAt"`
}

// QuestItem is a single trackable habit on a day.
type QuestItem struct {
	ID            string  `json:"_id"`
	Name          string  `json:"name"`
	Progress      float64 `json:"progress"`
	Goal          int     `json:"goal"`
	Completed     bool    `json:"completed"`
	PenaltyPoints int     `json:"penaltyPoints"`
	Type          string  `json:"type"`
	Order         int     `json:"order"`
}

// IncompleteItems returns the items not yet completed, in stored order.
func (d *QuestDay) IncompleteItems() []QuestItem {
	var out []QuestItem
	for _, item := range d.Quests {
		if !item.Completed {
			out = append(out, item)
		}
	}
	return out
}

// --- DTOs ---

type ReplaceDayRequest struct {
	Quests []QuestItem `json:"quests"`
}

type CreateQuestRequest struct {
	Name          string `json:"name"`
	Goal          int    `json:"goal"`
	PenaltyPoints int    `json:"penaltyPoints"`
	Type          string `json:"type"`
	StartDate     string `json:"startDate"`
	NumberOfDays  int    `json:"numberOfDays"`
}

type CreateQuestResponse struct {
	Message string     `json:"message"`
	Quests  []QuestDay `json:"quests"`
}

type UpdateItemRequest struct {
	Name          *string  `json:"name"`
	Goal          *int     `json:"goal"`
	PenaltyPoints *int     `json:"penaltyPoints"`
	Progress      *float64 `json:"progress"`
	Completed     *bool    `json:"completed"`
}

type QuestOrder struct {
	QuestID string `json:"questId"`
	Order   int    `json:"order"`
}

type ReorderRequest struct {
	QuestType   string       `json:"questType"`
	QuestOrders []QuestOrder `json:"questOrders"`
}

type ReorderResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Quests  []QuestItem `json:"quests"`
}

type RegularityResponse struct {
	RegularityPercentage float64 `json:"regularityPercentage"`
	CompletedDays        int     `json:"completedDays"`
	IncompleteDays       int     `json:"incompleteDays"`
	TotalDays            int     `json:"totalDays"`
}

type HeatmapEntry struct {
	Penalty            int     `json:"penalty"`
	ProgressPercentage float64 `json:"progressPercentage"`
}
