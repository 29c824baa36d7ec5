// Package notify renders tasks into human-readable chat text and into
// quick-action links for the web surface. Pure functions, no state.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/odedby/tasknest/internal/models"
)

// Chat lists are capped to keep replies readable on a phone.
const listLimit = 10

// QuickActions holds the action links generated for one task.
type QuickActions struct {
	MarkDone string            `json:"mark_done"`
	View     string            `json:"view"`
	Reassign map[string]string `json:"reassign"`
}

// Formatter renders tasks for chat replies and builds action links.
type Formatter struct {
	baseURL string
	users   []string
}

func NewFormatter(baseURL string, users []string) *Formatter {
	return &Formatter{baseURL: strings.TrimRight(baseURL, "/"), users: users}
}

// Actions builds the quick-action links for a task: mark done, view,
// and one reassign link per known user.
func (f *Formatter) Actions(taskID int64) QuickActions {
	actions := QuickActions{
		MarkDone: fmt.Sprintf("%s/markDone/%d", f.baseURL, taskID),
		View:     fmt.Sprintf("%s/task/%d", f.baseURL, taskID),
		Reassign: make(map[string]string, len(f.users)),
	}
	for _, user := range f.users {
		actions.Reassign[user] = fmt.Sprintf("%s/reassign/%d?to=%s", f.baseURL, taskID, url.QueryEscape(user))
	}
	return actions
}

// TaskCreated renders the confirmation reply for a new task.
func (f *Formatter) TaskCreated(task *models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Task #%d created!*\n\n", task.ID)
	fmt.Fprintf(&b, "📝 %s\n", task.Title)
	fmt.Fprintf(&b, "👤 Owner: %s\n", task.Owner)
	if task.DueDate != nil {
		fmt.Fprintf(&b, "📅 Due: %s\n", *task.DueDate)
	}
	fmt.Fprintf(&b, "\nUse '#done %d' to mark complete", task.ID)
	return b.String()
}

// TaskLine renders one task as a list entry.
func (f *Formatter) TaskLine(index int, task *models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s %s\n", index, priorityEmoji(task.Priority), task.Title)
	fmt.Fprintf(&b, "   👤 %s", task.Owner)
	if task.DueDate != nil {
		fmt.Fprintf(&b, " | 📅 %s", *task.DueDate)
	}
	b.WriteString("\n")
	if task.NextStep != "" {
		fmt.Fprintf(&b, "   ➡️ %s\n", task.NextStep)
	}
	fmt.Fprintf(&b, "   🆔 %d\n", task.ID)
	return b.String()
}

// TaskList renders an ordered list of tasks under a title, capped at
// ten entries with a trailer for the rest.
func (f *Formatter) TaskList(title string, tasks []*models.Task) string {
	if len(tasks) == 0 {
		return "📭 No open tasks!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 *%s*\n\n", title)

	shown := tasks
	if len(shown) > listLimit {
		shown = shown[:listLimit]
	}
	for i, task := range shown {
		b.WriteString(f.TaskLine(i+1, task))
		b.WriteString("\n")
	}
	if len(tasks) > listLimit {
		fmt.Fprintf(&b, "_...and %d more tasks_", len(tasks)-listLimit)
	}
	return strings.TrimRight(b.String(), "\n")
}

// TaskDone renders the completion confirmation.
func (f *Formatter) TaskDone(task *models.Task) string {
	return fmt.Sprintf("✅ Task completed!\n\n📝 %s\n👤 %s", task.Title, task.Owner)
}

// Help returns the chat command reference.
func (f *Formatter) Help() string {
	return `📝 *Task Manager Commands*

*Create Task:*
#task
Title: <task title>
Owner: <person name>
Due: <date/time> (optional)
Next: <next action> (optional)
Priority: high/medium/low (optional)
Category: work/home/shopping (optional)
Notes: <anything> (optional)

*List Tasks:*
#tasks or #list - All open tasks
#mine <name> - Tasks for a specific owner
#today - Tasks due today

*Complete Task:*
#done <id> - Mark task as done

*Help:*
#help or #? - Show this message`
}

// Unrecognized is the fixed reply for messages that match no command.
func (f *Formatter) Unrecognized() string {
	return "❓ Could not understand that. Send #help for the list of commands."
}

// InvalidTask is the fixed reply for a creation message missing its
// required fields.
func (f *Formatter) InvalidTask() string {
	return "❌ Invalid task format. Use:\n\n#task\nTitle: <title>\nOwner: <name>"
}

func priorityEmoji(priority string) string {
	switch priority {
	case models.PriorityHigh:
		return "🔴"
	case models.PriorityLow:
		return "🟢"
	default:
		return "🟡"
	}
}
