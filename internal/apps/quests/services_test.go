package quests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, now time.Time) (*QuestService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t, &QuestDay{})
	svc := NewQuestService(db, 5*time.Hour+30*time.Minute)
	svc.now = func() time.Time { return now }
	return svc, db
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }

func readQuest() CreateQuestRequest {
	return CreateQuestRequest{
		Name:          "Read",
		Goal:          10,
		PenaltyPoints: 5,
		NumberOfDays:  2,
		StartDate:     "2024-01-01",
		Type:          TypeGoal,
	}
}

func TestCreateQuestsExample(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	user := uuid.New()

	days, err := svc.CreateQuests(user, readQuest())
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-01-01", days[0].Date)
	assert.Equal(t, "2024-01-02", days[1].Date)

	for _, day := range days {
		assert.Equal(t, 5, day.Penalty)
		require.Len(t, day.Quests, 1)
		item := day.Quests[0]
		assert.Equal(t, "Read", item.Name)
		assert.Zero(t, item.Progress)
		assert.Equal(t, 10, item.Goal)
		assert.False(t, item.Completed)
		assert.Equal(t, 5, item.PenaltyPoints)
		assert.NotEmpty(t, item.ID)
	}

	stored, err := svc.GetDay(user, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Penalty)
	assert.Len(t, stored.Quests, 1)
}

func TestCreateQuestsAppendsToExistingDay(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	user := uuid.New()

	_, err := svc.CreateQuests(user, readQuest())
	require.NoError(t, err)

	days, err := svc.CreateQuests(user, CreateQuestRequest{
		Name: "Stretch", Goal: 99, PenaltyPoints: 3, NumberOfDays: 1, StartDate: "2024-01-01", Type: TypeChecklist,
	})
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Quests, 2)
	assert.Equal(t, 8, days[0].Penalty)
	assert.Equal(t, 1, days[0].Quests[1].Goal, "checklist goal is fixed at 1")
}

func TestCreateQuestsAfterEmptiedDay(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	user := uuid.New()

	day, err := svc.ReplaceDay(user, "2024-03-01", nil)
	require.NoError(t, err)
	assert.Equal(t, NoDataPenalty, day.Penalty)

	days, err := svc.CreateQuests(user, CreateQuestRequest{
		Name: "Walk", Goal: 1, PenaltyPoints: 4, NumberOfDays: 1, StartDate: "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, days[0].Penalty)
	assert.Equal(t, TypeGoal, days[0].Quests[0].Type)
}

func TestCreateQuestsValidation(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	user := uuid.New()

	tests := []struct {
		name   string
		mutate func(r *CreateQuestRequest)
		want   error
	}{
		{"blank name", func(r *CreateQuestRequest) { r.Name = "  " }, ErrNameRequired},
		{"unknown type", func(r *CreateQuestRequest) { r.Type = "habit" }, ErrInvalidType},
		{"zero goal", func(r *CreateQuestRequest) { r.Goal = 0 }, ErrInvalidGoal},
		{"negative penalty", func(r *CreateQuestRequest) { r.PenaltyPoints = -1 }, ErrInvalidPenalty},
		{"no days", func(r *CreateQuestRequest) { r.NumberOfDays = 0 }, ErrInvalidDayCount},
		{"too many days", func(r *CreateQuestRequest) { r.NumberOfDays = 367 }, ErrInvalidDayCount},
		{"bad start date", func(r *CreateQuestRequest) { r.StartDate = "2024-13-01" }, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := readQuest()
			tt.mutate(&req)
			_, err := svc.CreateQuests(user, req)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidation(err))
		})
	}

	t.Run("checklist ignores goal", func(t *testing.T) {
		req := readQuest()
		req.Type = TypeChecklist
		req.Goal = 0
		_, err := svc.CreateQuests(user, req)
		assert.NoError(t, err)
	})
}

func TestUpdateItemProgressExample(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	user := uuid.New()

	days, err := svc.CreateQuests(user, readQuest())
	require.NoError(t, err)
	itemID := days[0].Quests[0].ID

	day, err := svc.UpdateItem(user, "2024-01-01", itemID, UpdateItemRequest{
		Progress:  floatPtr(10),
		Completed: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, day.Penalty)
	assert.True(t, day.Quests[0].Completed)

	other, err := svc.GetDay(user, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 5, other.Penalty, "other days are untouched")
}

func TestUpdateItem(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	user := uuid.New()

	days, err := svc.CreateQuests(user, readQuest())
	require.NoError(t, err)
	itemID := days[0].Quests[0].ID

	t.Run("progress beyond goal is clamped", func(t *testing.T) {
		day, err := svc.UpdateItem(user, "2024-01-01", itemID, UpdateItemRequest{Progress: floatPtr(15)})
		require.NoError(t, err)
		assert.Equal(t, float64(10), day.Quests[0].Progress)
		assert.True(t, day.Quests[0].Completed)
		assert.Equal(t, 0, day.Penalty)
	})

	t.Run("raising goal reopens the item", func(t *testing.T) {
		day, err := svc.UpdateItem(user, "2024-01-01", itemID, UpdateItemRequest{Goal: intPtr(20), PenaltyPoints: intPtr(7)})
		require.NoError(t, err)
		assert.Equal(t, 20, day.Quests[0].Goal)
		assert.False(t, day.Quests[0].Completed)
		assert.Equal(t, 7, day.Penalty)
	})

	t.Run("rename only", func(t *testing.T) {
		day, err := svc.UpdateItem(user, "2024-01-01", itemID, UpdateItemRequest{Name: strPtr("Read a book")})
		require.NoError(t, err)
		assert.Equal(t, "Read a book", day.Quests[0].Name)
		assert.Equal(t, 7, day.Penalty)
	})

	t.Run("goal is ignored for checklist items", func(t *testing.T) {
		created, err := svc.CreateQuests(user, CreateQuestRequest{
			Name: "Meditate", PenaltyPoints: 2, NumberOfDays: 1, StartDate: "2024-02-01", Type: TypeChecklist,
		})
		require.NoError(t, err)
		id := created[0].Quests[0].ID

		day, err := svc.UpdateItem(user, "2024-02-01", id, UpdateItemRequest{Goal: intPtr(5)})
		require.NoError(t, err)
		assert.Equal(t, 1, day.Quests[0].Goal)
	})

	t.Run("missing day and item", func(t *testing.T) {
		_, err := svc.UpdateItem(user, "2030-01-01", itemID, UpdateItemRequest{})
		assert.ErrorIs(t, err, ErrDayNotFound)

		_, err = svc.UpdateItem(user, "2024-01-01", "nope", UpdateItemRequest{})
		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("another user cannot see the day", func(t *testing.T) {
		_, err := svc.UpdateItem(uuid.New(), "2024-01-01", itemID, UpdateItemRequest{})
		assert.ErrorIs(t, err, ErrDayNotFound)
	})
}

func TestDeleteItem(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	user := uuid.New()

	_, err := svc.CreateQuests(user, readQuest())
	require.NoError(t, err)
	days, err := svc.CreateQuests(user, CreateQuestRequest{
		Name: "Run", Goal: 5, PenaltyPoints: 2, NumberOfDays: 1, StartDate: "2024-01-01",
	})
	require.NoError(t, err)
	first, second := days[0].Quests[0].ID, days[0].Quests[1].ID

	day, err := svc.DeleteItem(user, "2024-01-01", first)
	require.NoError(t, err)
	assert.Equal(t, 2, day.Penalty)
	assert.Len(t, day.Quests, 1)

	day, err = svc.DeleteItem(user, "2024-01-01", second)
	require.NoError(t, err)
	assert.Equal(t, NoDataPenalty, day.Penalty)
	assert.Empty(t, day.Quests)

	_, err = svc.DeleteItem(user, "2024-01-01", second)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestReplaceDay(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	user := uuid.New()

	day, err := svc.ReplaceDay(user, "2024-05-05", []QuestItem{
		{Name: "Water", Goal: 8, Progress: 8, Completed: true, PenaltyPoints: 3},
		{ID: "keep-me", Name: "Journal", Goal: 1, PenaltyPoints: 4, Type: TypeChecklist},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, day.Penalty)
	assert.NotEmpty(t, day.Quests[0].ID)
	assert.Equal(t, TypeGoal, day.Quests[0].Type)
	assert.Equal(t, "keep-me", day.Quests[1].ID)

	again, err := svc.ReplaceDay(user, "2024-05-05", []QuestItem{{ID: "keep-me", Name: "Journal", Goal: 1, PenaltyPoints: 4, Type: TypeChecklist, Completed: true}})
	require.NoError(t, err)
	assert.Equal(t, day.ID, again.ID, "the day is updated in place")
	assert.Equal(t, 0, again.Penalty)

	_, err = svc.ReplaceDay(user, "2024-05-05", []QuestItem{{Name: "x", Type: "other"}})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.ReplaceDay(user, "May 5th", nil)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestGetDayMissing(t *testing.T) {
	svc, _ := newTestService(t, time.Now())

	day, err := svc.GetDay(uuid.New(), "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, day.ID)
	assert.Equal(t, NoDataPenalty, day.Penalty)
	assert.NotNil(t, day.Quests)
	assert.Empty(t, day.Quests)
}

func TestReorderKeepsGoalsFirst(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	user := uuid.New()

	_, err := svc.ReplaceDay(user, "2024-01-01", []QuestItem{
		{ID: "c1", Name: "c1", Type: TypeChecklist, Goal: 1, Order: 0},
		{ID: "g1", Name: "g1", Type: TypeGoal, Goal: 3, Order: 0},
		{ID: "c2", Name: "c2", Type: TypeChecklist, Goal: 1, Order: 1},
		{ID: "g2", Name: "g2", Type: TypeGoal, Goal: 3, Order: 1},
	})
	require.NoError(t, err)

	items, err := svc.Reorder(user, "2024-01-01", ReorderRequest{
		QuestType: TypeGoal,
		QuestOrders: []QuestOrder{
			{QuestID: "g1", Order: 5},
			{QuestID: "g2", Order: 2},
			{QuestID: "c1", Order: 9},
		},
	})
	require.NoError(t, err)

	var ids []string
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"g2", "g1", "c1", "c2"}, ids)
	assert.Equal(t, 0, items[2].Order, "orders of another type are not touched")

	seenChecklist := false
	for i, item := range items {
		if item.Type == TypeChecklist {
			seenChecklist = true
			continue
		}
		assert.False(t, seenChecklist, "goal item after checklist item")
		if i > 0 && items[i-1].Type == item.Type {
			assert.LessOrEqual(t, items[i-1].Order, item.Order)
		}
	}

	_, err = svc.Reorder(user, "2024-01-02", ReorderRequest{QuestType: TypeGoal})
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestPenalty(t *testing.T) {
	tests := []struct {
		name  string
		items []QuestItem
		want  int
	}{
		{"empty day", nil, NoDataPenalty},
		{"all complete", []QuestItem{{PenaltyPoints: 3, Completed: true}}, 0},
		{"mixed", []QuestItem{
			{PenaltyPoints: 3, Completed: true},
			{PenaltyPoints: 4},
			{PenaltyPoints: 6},
		}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Penalty(tt.items))
		})
	}
}

func TestWeightedProgress(t *testing.T) {
	assert.Zero(t, WeightedProgress(nil))
	assert.Zero(t, WeightedProgress([]QuestItem{{PenaltyPoints: 0, Progress: 5, Goal: 10}}))

	items := []QuestItem{
		{Type: TypeGoal, Goal: 10, Progress: 5, PenaltyPoints: 2},
		{Type: TypeChecklist, Goal: 1, Progress: 1, PenaltyPoints: 2},
	}
	assert.InDelta(t, 75.0, WeightedProgress(items), 1e-9)

	// checklist progress is used as-is
	over := []QuestItem{{Type: TypeChecklist, Goal: 1, Progress: 3, PenaltyPoints: 1}}
	assert.InDelta(t, 300.0, WeightedProgress(over), 1e-9)

	zeroGoal := []QuestItem{{Type: TypeGoal, Goal: 0, Progress: 4, PenaltyPoints: 1}}
	assert.Zero(t, WeightedProgress(zeroGoal))
}

func TestRegularity(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now)
	user := testutil.CreateUser(t, db, "quinn")
	require.NoError(t, db.Model(user).Update("created_at", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)).Error)

	t.Run("no tracked days", func(t *testing.T) {
		resp, err := svc.Regularity(user.ID)
		require.NoError(t, err)
		assert.Zero(t, resp.RegularityPercentage)
		assert.Zero(t, resp.TotalDays)
	})

	seed := map[string][]QuestItem{
		"2024-01-01": {{Name: "before signup", PenaltyPoints: 1}},
		"2024-01-03": {{Name: "done", PenaltyPoints: 1, Completed: true}},
		"2024-01-04": {{Name: "missed", PenaltyPoints: 1}},
		"2024-01-05": nil,
		"2024-01-06": {{Name: "done", PenaltyPoints: 2, Completed: true}},
		"2024-01-07": {{Name: "free", PenaltyPoints: 0}},
		"2024-01-20": {{Name: "future", PenaltyPoints: 1, Completed: true}},
	}
	for date, items := range seed {
		_, err := svc.ReplaceDay(user.ID, date, items)
		require.NoError(t, err)
	}

	resp, err := svc.Regularity(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.TotalDays)
	assert.Equal(t, 3, resp.CompletedDays)
	assert.Equal(t, 1, resp.IncompleteDays)
	assert.InDelta(t, 75.0, resp.RegularityPercentage, 1e-9)

	_, err = svc.Regularity(uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestHeatmap(t *testing.T) {
	// 20:00 UTC is already the next day at +05:30.
	now := time.Date(2024, 3, 30, 20, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	user := uuid.New()

	_, err := svc.ReplaceDay(user, "2024-03-31", []QuestItem{
		{Type: TypeGoal, Goal: 10, Progress: 5, PenaltyPoints: 4},
	})
	require.NoError(t, err)
	_, err = svc.ReplaceDay(user, "2024-03-01", []QuestItem{
		{Type: TypeChecklist, Goal: 1, Progress: 1, Completed: true, PenaltyPoints: 4},
	})
	require.NoError(t, err)

	heatmap, err := svc.Heatmap(user, 0)
	require.NoError(t, err)
	require.Len(t, heatmap, 30)

	assert.Equal(t, HeatmapEntry{Penalty: 4, ProgressPercentage: 50}, heatmap["2024-03-31"])
	assert.Equal(t, HeatmapEntry{Penalty: NoDataPenalty, ProgressPercentage: NoDataPenalty}, heatmap["2024-03-15"])
	assert.Contains(t, heatmap, "2024-03-02")
	assert.NotContains(t, heatmap, "2024-03-01")

	previous, err := svc.Heatmap(user, 1)
	require.NoError(t, err)
	require.Len(t, previous, 30)
	assert.Equal(t, HeatmapEntry{Penalty: 0, ProgressPercentage: 100}, previous["2024-03-01"])
	assert.Contains(t, previous, "2024-02-01")
}

func TestDeleteUserData(t *testing.T) {
	svc, db := newTestService(t, time.Now())
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.CreateQuests(alice, readQuest())
	require.NoError(t, err)
	_, err = svc.CreateQuests(bob, readQuest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUserData(db, alice))

	var remaining []QuestDay
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	for _, day := range remaining {
		assert.Equal(t, bob, day.UserID)
	}
}

func TestToday(t *testing.T) {
	offset := 5*time.Hour + 30*time.Minute
	assert.Equal(t, "2024-01-01", Today(time.Date(2024, 1, 1, 18, 29, 0, 0, time.UTC), offset))
	assert.Equal(t, "2024-01-02", Today(time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC), offset))

	prev, err := ShiftDate("2024-03-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", prev)
}
