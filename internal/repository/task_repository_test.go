package repository

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odedby/tasknest/internal/database"
	"github.com/odedby/tasknest/internal/models"
)

func newTestRepo(t *testing.T) *TaskRepository {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return NewTaskRepository(db)
}

func strPtr(s string) *string {
	return &s
}

func TestCreateAppendsHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, &TaskInput{
		Title:    "Buy groceries",
		Owner:    "Ofek",
		Priority: models.PriorityMedium,
	})
	require.NoError(t, err)

	assert.Equal(t, "Buy groceries", task.Title)
	assert.Equal(t, "Ofek", task.Owner)
	assert.Equal(t, models.StatusOpen, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.Category)
	assert.NotEmpty(t, task.CreatedAt)

	history, err := repo.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ActionCreated, history[0].Action)
	assert.Equal(t, "Task created: Buy groceries", history[0].Details)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Insertion order deliberately scrambled against the expected sort.
	low, err := repo.Create(ctx, &TaskInput{Title: "low", Owner: "Ofek", Priority: models.PriorityLow})
	require.NoError(t, err)
	highLate, err := repo.Create(ctx, &TaskInput{
		Title: "high late", Owner: "Ofek", Priority: models.PriorityHigh,
		DueDate: strPtr("2024-01-20T00:00:00"),
	})
	require.NoError(t, err)
	medium, err := repo.Create(ctx, &TaskInput{Title: "medium", Owner: "Ofek", Priority: models.PriorityMedium})
	require.NoError(t, err)
	highEarly, err := repo.Create(ctx, &TaskInput{
		Title: "high early", Owner: "Ofek", Priority: models.PriorityHigh,
		DueDate: strPtr("2024-01-19T00:00:00"),
	})
	require.NoError(t, err)
	highNoDue, err := repo.Create(ctx, &TaskInput{Title: "high no due", Owner: "Ofek", Priority: models.PriorityHigh})
	require.NoError(t, err)

	tasks, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 5)

	var ids []int64
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []int64{highEarly.ID, highLate.ID, highNoDue.ID, medium.ID, low.ID}, ids)
}

func TestListFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &TaskInput{
		Title: "groceries", Owner: "Ofek", Priority: models.PriorityHigh,
		Category: strPtr("shopping"), DueDate: strPtr("2024-01-15T18:00:00"),
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &TaskInput{
		Title: "laundry", Owner: "Shachar", Priority: models.PriorityLow,
	})
	require.NoError(t, err)

	t.Run("by owner", func(t *testing.T) {
		tasks, err := repo.List(ctx, ListFilter{Owner: strPtr("Shachar")})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "laundry", tasks[0].Title)
	})

	t.Run("by priority", func(t *testing.T) {
		tasks, err := repo.List(ctx, ListFilter{Priority: strPtr(models.PriorityHigh)})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "groceries", tasks[0].Title)
	})

	t.Run("by category", func(t *testing.T) {
		tasks, err := repo.List(ctx, ListFilter{Category: strPtr("shopping")})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "groceries", tasks[0].Title)
	})

	t.Run("by due calendar date", func(t *testing.T) {
		tasks, err := repo.List(ctx, ListFilter{DueOn: strPtr("2024-01-15")})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "groceries", tasks[0].Title)
	})

	t.Run("no match", func(t *testing.T) {
		tasks, err := repo.List(ctx, ListFilter{Owner: strPtr("nobody")})
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestMarkDone(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, &TaskInput{Title: "laundry", Owner: "Ofek", Priority: models.PriorityMedium})
	require.NoError(t, err)

	ok, err := repo.MarkDone(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	done, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.NotEmpty(t, *done.CompletedAt)

	history, err := repo.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ActionCompleted, history[0].Action)
}

func TestMarkDoneMissingTask(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ok, err := repo.MarkDone(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	history, err := repo.History(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMarkDoneDropsFromOpenList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, &TaskInput{Title: "laundry", Owner: "Ofek", Priority: models.PriorityMedium})
	require.NoError(t, err)

	ok, err := repo.MarkDone(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)

	open := models.StatusOpen
	tasks, err := repo.List(ctx, ListFilter{Status: &open})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestReassign(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, &TaskInput{Title: "laundry", Owner: "Ofek", Priority: models.PriorityMedium})
	require.NoError(t, err)

	ok, err := repo.Reassign(ctx, task.ID, "Shachar")
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shachar", updated.Owner)

	history, err := repo.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ActionReassigned, history[0].Action)
	assert.Equal(t, "Reassigned to Shachar", history[0].Details)
}

func TestUpdateCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, &TaskInput{
		Title: "laundry", Owner: "Ofek", Priority: models.PriorityMedium,
		Category: strPtr("home"),
	})
	require.NoError(t, err)

	ok, err := repo.UpdateCategory(ctx, task.ID, strPtr("chores"))
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "chores", *updated.Category)

	ok, err = repo.UpdateCategory(ctx, task.ID, nil)
	require.NoError(t, err)
	require.True(t, ok)

	cleared, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Category)

	history, err := repo.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Category cleared", history[0].Details)
	assert.Equal(t, "Category set to chores", history[1].Details)
}

func TestUpdateMissingTaskWritesNoHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ok, err := repo.Reassign(ctx, 999, "Shachar")
	require.NoError(t, err)
	assert.False(t, ok)

	history, err := repo.History(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, category := range []string{"home", "work", "home"} {
		_, err := repo.Create(ctx, &TaskInput{
			Title: "t", Owner: "Ofek", Priority: models.PriorityMedium,
			Category: strPtr(category),
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &TaskInput{Title: "t", Owner: "Ofek", Priority: models.PriorityMedium})
	require.NoError(t, err)

	categories, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, categories)
}

func TestHistoryNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, &TaskInput{Title: "laundry", Owner: "Ofek", Priority: models.PriorityMedium})
	require.NoError(t, err)

	_, err = repo.UpdateNextStep(ctx, task.ID, "sort colors")
	require.NoError(t, err)
	_, err = repo.UpdateDueDate(ctx, task.ID, "2024-01-20T00:00:00")
	require.NoError(t, err)

	history, err := repo.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.ActionDueDateChanged, history[0].Action)
	assert.Equal(t, "New due date: 2024-01-20T00:00:00", history[0].Details)
	assert.Equal(t, models.ActionNextStepUpdated, history[1].Action)
	assert.Equal(t, "Next step: sort colors", history[1].Details)
	assert.Equal(t, models.ActionCreated, history[2].Action)
}
