// internal/service/task_service.go
package service

import (
	"context"
	"strings"

	"github.com/odedby/tasknest/internal/dates"
	"github.com/odedby/tasknest/internal/models"
	"github.com/odedby/tasknest/internal/repository"
)

// ErrNotFound is re-exported so callers can branch without importing
// the repository package.
var ErrNotFound = repository.ErrNotFound

// TaskService enforces validation and transition rules. It is the only
// writer to the task store.
type TaskService struct {
	repo *repository.TaskRepository
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// CreateTaskInput carries the creation request fields. Priority
// defaults to medium; a nil Category means uncategorized.
type CreateTaskInput struct {
	Title    string
	Owner    string
	DueDate  string
	NextStep string
	Notes    string
	Priority string
	Category *string
}

// ListFilter narrows ListOpen results; set fields are ANDed.
type ListFilter struct {
	Owner    string
	Priority string
	Category string
}

// Create validates the input, normalizes the due date best-effort and
// persists a new open task with a created history entry.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	owner := strings.TrimSpace(input.Owner)

	if title == "" {
		return nil, newValidationError("title", "must not be empty")
	}
	if owner == "" {
		return nil, newValidationError("owner", "must not be empty")
	}

	priority := models.PriorityMedium
	if trimmed := strings.ToLower(strings.TrimSpace(input.Priority)); trimmed != "" {
		if !models.ValidPriority(trimmed) {
			return nil, newValidationError("priority", "must be one of high, medium, low")
		}
		priority = trimmed
	}

	repoInput := &repository.TaskInput{
		Title:    title,
		Owner:    owner,
		NextStep: strings.TrimSpace(input.NextStep),
		Notes:    strings.TrimSpace(input.Notes),
		Priority: priority,
		Category: input.Category,
	}

	if due := strings.TrimSpace(input.DueDate); due != "" {
		normalized := dates.Normalize(due).Value
		repoInput.DueDate = &normalized
	}

	return s.repo.Create(ctx, repoInput)
}

// Get returns a task by id, or ErrNotFound.
func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// ListOpen returns open tasks ordered by priority rank, then due date
// (tasks without one last), then id.
func (s *TaskService) ListOpen(ctx context.Context, filter ListFilter) ([]*models.Task, error) {
	status := models.StatusOpen
	repoFilter := repository.ListFilter{Status: &status}

	if owner := strings.TrimSpace(filter.Owner); owner != "" {
		repoFilter.Owner = &owner
	}
	if priority := strings.ToLower(strings.TrimSpace(filter.Priority)); priority != "" {
		repoFilter.Priority = &priority
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		repoFilter.Category = &category
	}

	return s.repo.List(ctx, repoFilter)
}

// ListDueToday returns open tasks whose due date falls on the current
// local calendar date, in the same ordering as ListOpen.
func (s *TaskService) ListDueToday(ctx context.Context) ([]*models.Task, error) {
	status := models.StatusOpen
	today := dates.Today()
	return s.repo.List(ctx, repository.ListFilter{Status: &status, DueOn: &today})
}

// MarkDone completes a task. Returns false when the task does not
// exist. Re-invoking on a done task succeeds again; the transition is
// deliberately unguarded.
func (s *TaskService) MarkDone(ctx context.Context, id int64) (bool, error) {
	return s.repo.MarkDone(ctx, id)
}

// Reassign moves a task to a new owner.
func (s *TaskService) Reassign(ctx context.Context, id int64, newOwner string) (bool, error) {
	owner := strings.TrimSpace(newOwner)
	if owner == "" {
		return false, newValidationError("owner", "must not be empty")
	}
	return s.repo.Reassign(ctx, id, owner)
}

// UpdateDueDate replaces a task's due date, normalized best-effort.
func (s *TaskService) UpdateDueDate(ctx context.Context, id int64, newDueDate string) (bool, error) {
	normalized := dates.Normalize(newDueDate).Value
	return s.repo.UpdateDueDate(ctx, id, normalized)
}

// UpdateNextStep replaces a task's next action.
func (s *TaskService) UpdateNextStep(ctx context.Context, id int64, nextStep string) (bool, error) {
	return s.repo.UpdateNextStep(ctx, id, strings.TrimSpace(nextStep))
}

// UpdatePriority replaces a task's priority, validated against the
// enum the same way creation is.
func (s *TaskService) UpdatePriority(ctx context.Context, id int64, priority string) (bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(priority))
	if !models.ValidPriority(trimmed) {
		return false, newValidationError("priority", "must be one of high, medium, low")
	}
	return s.repo.UpdatePriority(ctx, id, trimmed)
}

// UpdateCategory replaces a task's category. Any text is accepted; nil
// or empty clears it.
func (s *TaskService) UpdateCategory(ctx context.Context, id int64, category *string) (bool, error) {
	if category != nil {
		trimmed := strings.TrimSpace(*category)
		category = &trimmed
	}
	return s.repo.UpdateCategory(ctx, id, category)
}

// History returns a task's audit trail, newest first.
func (s *TaskService) History(ctx context.Context, id int64) ([]models.HistoryEntry, error) {
	return s.repo.History(ctx, id)
}

// Categories returns the distinct non-null categories in use.
func (s *TaskService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}
