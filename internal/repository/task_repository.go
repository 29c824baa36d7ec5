// internal/repository/task_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/odedby/tasknest/internal/models"
)

// ErrNotFound is returned when a referenced task does not exist.
var ErrNotFound = errors.New("task not found")

// TaskRepository is the durable store for tasks and their history.
// Every mutation appends exactly one history entry in the same
// transaction; tasks are never deleted.
type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskInput carries the fields of a new task.
type TaskInput struct {
	Title    string
	Owner    string
	DueDate  *string
	NextStep string
	Notes    string
	Priority string
	Category *string
}

// ListFilter narrows List results. All set fields are ANDed together.
type ListFilter struct {
	Status   *string
	Owner    *string
	Priority *string
	Category *string
	DueOn    *string // ISO calendar date; prefix-matches due_date
}

const taskColumns = `id, title, owner, due_date,
	COALESCE(next_step, '') AS next_step, status, created_at, completed_at,
	COALESCE(notes, '') AS notes,
	COALESCE(priority, 'medium') AS priority, category`

// Priority rank, then due date (tasks without one sort last within
// their priority group), then id for stability.
const taskOrdering = `
	CASE COALESCE(priority, 'medium') WHEN 'high' THEN 0 WHEN 'low' THEN 2 ELSE 1 END,
	CASE WHEN due_date IS NULL OR due_date = '' THEN 1 ELSE 0 END,
	due_date,
	id`

func (r *TaskRepository) Create(ctx context.Context, input *TaskInput) (*models.Task, error) {
	now := nowISO()

	var dueDate sql.NullString
	if input.DueDate != nil && *input.DueDate != "" {
		dueDate = sql.NullString{String: *input.DueDate, Valid: true}
	}

	var category sql.NullString
	if input.Category != nil && *input.Category != "" {
		category = sql.NullString{String: *input.Category, Valid: true}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	id, err := r.insertTask(ctx, tx, input, dueDate, category, now)
	if err != nil {
		return nil, rollback(tx, fmt.Errorf("insert task: %w", err))
	}

	details := fmt.Sprintf("Task created: %s", input.Title)
	if err := r.appendHistory(ctx, tx, id, models.ActionCreated, details); err != nil {
		return nil, rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *TaskRepository) insertTask(ctx context.Context, tx *sqlx.Tx, input *TaskInput, dueDate, category sql.NullString, now string) (int64, error) {
	query := `INSERT INTO tasks (title, owner, due_date, next_step, status, created_at, notes, priority, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []interface{}{
		input.Title, input.Owner, dueDate, input.NextStep,
		models.StatusOpen, now, input.Notes, input.Priority, category,
	}

	if r.db.DriverName() == "postgres" {
		var id int64
		err := tx.QueryRowxContext(ctx, r.db.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	query := r.db.Rebind("SELECT " + taskColumns + " FROM tasks WHERE id = ?")
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, filter ListFilter) ([]*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var clauses []string
	var args []interface{}

	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Owner != nil {
		clauses = append(clauses, "owner = ?")
		args = append(args, *filter.Owner)
	}
	if filter.Priority != nil {
		clauses = append(clauses, "COALESCE(priority, 'medium') = ?")
		args = append(args, *filter.Priority)
	}
	if filter.Category != nil {
		clauses = append(clauses, "category = ?")
		args = append(args, *filter.Category)
	}
	if filter.DueOn != nil {
		clauses = append(clauses, "due_date LIKE ?")
		args = append(args, *filter.DueOn+"%")
	}

	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY" + taskOrdering

	tasks := []*models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return tasks, nil
}

// MarkDone sets a task to done. It reports false when the task does not
// exist and makes no history write in that case. Calling it on an
// already-done task overwrites completed_at and appends another entry.
func (r *TaskRepository) MarkDone(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}

	query := r.db.Rebind("UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?")
	res, err := tx.ExecContext(ctx, query, models.StatusDone, nowISO(), id)
	if err != nil {
		return false, rollback(tx, fmt.Errorf("mark task %d done: %w", id, err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, rollback(tx, err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	if err := r.appendHistory(ctx, tx, id, models.ActionCompleted, "Task marked as done"); err != nil {
		return false, rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit mark done: %w", err)
	}
	return true, nil
}

func (r *TaskRepository) Reassign(ctx context.Context, id int64, newOwner string) (bool, error) {
	return r.updateColumn(ctx, id, "owner", newOwner,
		models.ActionReassigned, fmt.Sprintf("Reassigned to %s", newOwner))
}

func (r *TaskRepository) UpdateDueDate(ctx context.Context, id int64, dueDate string) (bool, error) {
	return r.updateColumn(ctx, id, "due_date", dueDate,
		models.ActionDueDateChanged, fmt.Sprintf("New due date: %s", dueDate))
}

func (r *TaskRepository) UpdateNextStep(ctx context.Context, id int64, nextStep string) (bool, error) {
	return r.updateColumn(ctx, id, "next_step", nextStep,
		models.ActionNextStepUpdated, fmt.Sprintf("Next step: %s", nextStep))
}

func (r *TaskRepository) UpdatePriority(ctx context.Context, id int64, priority string) (bool, error) {
	return r.updateColumn(ctx, id, "priority", priority,
		models.ActionPriorityChanged, fmt.Sprintf("Priority set to %s", priority))
}

func (r *TaskRepository) UpdateCategory(ctx context.Context, id int64, category *string) (bool, error) {
	var value sql.NullString
	details := "Category cleared"
	if category != nil && *category != "" {
		value = sql.NullString{String: *category, Valid: true}
		details = fmt.Sprintf("Category set to %s", *category)
	}
	return r.updateColumn(ctx, id, "category", value, models.ActionCategoryChanged, details)
}

func (r *TaskRepository) updateColumn(ctx context.Context, id int64, column string, value interface{}, action, details string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}

	query := r.db.Rebind(fmt.Sprintf("UPDATE tasks SET %s = ? WHERE id = ?", column))
	res, err := tx.ExecContext(ctx, query, value, id)
	if err != nil {
		return false, rollback(tx, fmt.Errorf("update task %d %s: %w", id, column, err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, rollback(tx, err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	if err := r.appendHistory(ctx, tx, id, action, details); err != nil {
		return false, rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit %s update: %w", column, err)
	}
	return true, nil
}

// History returns a task's audit trail, newest first.
func (r *TaskRepository) History(ctx context.Context, taskID int64) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	query := r.db.Rebind(`SELECT id, task_id, action, COALESCE(details, '') AS details, timestamp
		FROM task_history WHERE task_id = ? ORDER BY id DESC`)
	if err := r.db.SelectContext(ctx, &entries, query, taskID); err != nil {
		return nil, fmt.Errorf("query history for task %d: %w", taskID, err)
	}
	return entries, nil
}

// Categories returns the distinct non-null categories currently in use.
func (r *TaskRepository) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	query := `SELECT DISTINCT category FROM tasks
		WHERE category IS NOT NULL AND category != '' ORDER BY category`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return categories, nil
}

func (r *TaskRepository) appendHistory(ctx context.Context, tx *sqlx.Tx, taskID int64, action, details string) error {
	query := r.db.Rebind(`INSERT INTO task_history (task_id, action, details, timestamp)
		VALUES (?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, query, taskID, action, details, nowISO()); err != nil {
		return fmt.Errorf("append %s history for task %d: %w", action, taskID, err)
	}
	return nil
}

func rollback(tx *sqlx.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

func nowISO() string {
	return time.Now().Format("2006-01-02T15:04:05")
}
