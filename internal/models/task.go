// internal/models/task.go
package models

// Task status constants
const (
	StatusOpen = "open"
	StatusDone = "done"
)

// Priority constants, ranked high < medium < low for sorting
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// History action constants
const (
	ActionCreated         = "created"
	ActionCompleted       = "completed"
	ActionReassigned      = "reassigned"
	ActionDueDateChanged  = "due_date_changed"
	ActionNextStepUpdated = "next_step_updated"
	ActionPriorityChanged = "priority_changed"
	ActionCategoryChanged = "category_changed"
)

// ValidPriority reports whether p is one of the persistable priority values.
func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// PriorityRank returns the sort ordinal for a priority value.
// Unknown or missing priorities rank as medium.
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// Task is the central entity. Timestamps are stored as ISO-8601 text;
// due_date may also hold raw unparsed user input verbatim.
type Task struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Owner       string  `db:"owner" json:"owner"`
	DueDate     *string `db:"due_date" json:"due_date"`
	NextStep    string  `db:"next_step" json:"next_step"`
	Status      string  `db:"status" json:"status"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	CompletedAt *string `db:"completed_at" json:"completed_at"`
	Notes       string  `db:"notes" json:"notes"`
	Priority    string  `db:"priority" json:"priority"`
	Category    *string `db:"category" json:"category"`
}

// IsOpen reports whether the task is still open.
func (t *Task) IsOpen() bool {
	return t.Status == StatusOpen
}

// HistoryEntry is an immutable audit record of one change to a task.
type HistoryEntry struct {
	ID        int64  `db:"id" json:"id"`
	TaskID    int64  `db:"task_id" json:"task_id"`
	Action    string `db:"action" json:"action"`
	Details   string `db:"details" json:"details"`
	Timestamp string `db:"timestamp" json:"timestamp"`
}
