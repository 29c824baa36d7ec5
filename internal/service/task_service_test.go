package service

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odedby/tasknest/internal/database"
	"github.com/odedby/tasknest/internal/dates"
	"github.com/odedby/tasknest/internal/models"
	"github.com/odedby/tasknest/internal/repository"
)

func newTestService(t *testing.T) *TaskService {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return NewTaskService(repository.NewTaskRepository(db))
}

func TestCreateDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "  Buy groceries  ", Owner: " Ofek "})
	require.NoError(t, err)

	assert.Equal(t, "Buy groceries", task.Title)
	assert.Equal(t, "Ofek", task.Owner)
	assert.Equal(t, models.StatusOpen, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.Category)

	history, err := svc.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ActionCreated, history[0].Action)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateTaskInput
		field string
	}{
		{name: "missing title", input: CreateTaskInput{Owner: "Ofek"}, field: "title"},
		{name: "blank title", input: CreateTaskInput{Title: "   ", Owner: "Ofek"}, field: "title"},
		{name: "missing owner", input: CreateTaskInput{Title: "Buy groceries"}, field: "owner"},
		{name: "unknown priority", input: CreateTaskInput{Title: "t", Owner: "o", Priority: "urgent"}, field: "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	// Rejected creations must not leave partial rows behind.
	tasks, err := svc.ListOpen(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreatePriorityNormalized(t *testing.T) {
	svc := newTestService(t)

	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "t", Owner: "o", Priority: " HIGH ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, task.Priority)
}

func TestCreateNormalizesDueDate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", Owner: "o", DueDate: "2024-01-15"})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-01-15T00:00:00", *task.DueDate)

	raw, err := svc.Create(ctx, CreateTaskInput{Title: "t2", Owner: "o", DueDate: "whenever"})
	require.NoError(t, err)
	require.NotNil(t, raw.DueDate)
	assert.Equal(t, "whenever", *raw.DueDate)
}

func TestListOpenOrdering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTaskInput{Title: "later", Owner: "o", Priority: "high", DueDate: "2024-01-20"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTaskInput{Title: "relaxed", Owner: "o", Priority: "low"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTaskInput{Title: "sooner", Owner: "o", Priority: "high", DueDate: "2024-01-19"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTaskInput{Title: "normal", Owner: "o"})
	require.NoError(t, err)

	tasks, err := svc.ListOpen(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	var titles []string
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"sooner", "later", "normal", "relaxed"}, titles)
}

func TestListDueToday(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	today := dates.Today()
	_, err := svc.Create(ctx, CreateTaskInput{Title: "due today", Owner: "o", DueDate: today + " 18:00"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTaskInput{Title: "due later", Owner: "o", DueDate: "2030-01-01"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTaskInput{Title: "no due", Owner: "o"})
	require.NoError(t, err)

	tasks, err := svc.ListDueToday(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "due today", tasks[0].Title)
}

func TestMarkDoneIsUnguarded(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", Owner: "o"})
	require.NoError(t, err)

	ok, err := svc.MarkDone(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// A second completion succeeds again and appends another entry.
	ok, err = svc.MarkDone(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	history, err := svc.History(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestMarkDoneMissing(t *testing.T) {
	svc := newTestService(t)

	ok, err := svc.MarkDone(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReassignValidatesOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", Owner: "Ofek"})
	require.NoError(t, err)

	_, err = svc.Reassign(ctx, task.ID, "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "owner", verr.Field)

	ok, err := svc.Reassign(ctx, task.ID, " Shachar ")
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shachar", updated.Owner)
}

func TestUpdatePriorityValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", Owner: "o"})
	require.NoError(t, err)

	_, err = svc.UpdatePriority(ctx, task.ID, "urgent")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	ok, err := svc.UpdatePriority(ctx, task.ID, " LOW ")
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityLow, updated.Priority)
}

func TestUpdateDueDateNormalizes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "t", Owner: "o"})
	require.NoError(t, err)

	ok, err := svc.UpdateDueDate(ctx, task.ID, "2024-02-01")
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, "2024-02-01T00:00:00", *updated.DueDate)
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
