// Package bot routes parsed chat commands to the task service and
// renders replies. Transport plumbing (session, delivery) lives in the
// webhook adapter; this is the message-to-reply core.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/odedby/tasknest/internal/command"
	"github.com/odedby/tasknest/internal/notify"
	"github.com/odedby/tasknest/internal/service"
)

type Router struct {
	tasks     *service.TaskService
	formatter *notify.Formatter
}

func NewRouter(tasks *service.TaskService, formatter *notify.Formatter) *Router {
	return &Router{tasks: tasks, formatter: formatter}
}

// Handle turns one inbound message into a reply. Parse failures and
// missing tasks degrade to fixed replies; only store failures are
// reported as errors to the sender.
func (r *Router) Handle(ctx context.Context, body string) string {
	cmd := command.Parse(body)

	switch cmd.Kind {
	case command.KindCreate:
		return r.handleCreate(ctx, cmd.Draft)
	case command.KindListOpen:
		return r.handleList(ctx, "Open Tasks", service.ListFilter{})
	case command.KindListMine:
		if cmd.Owner == "" {
			return "❓ Specify owner: #mine <name>"
		}
		return r.handleList(ctx, fmt.Sprintf("Tasks for %s", cmd.Owner), service.ListFilter{Owner: cmd.Owner})
	case command.KindListToday:
		return r.handleToday(ctx)
	case command.KindDone:
		return r.handleDone(ctx, cmd.ID)
	case command.KindHelp:
		return r.formatter.Help()
	default:
		return r.formatter.Unrecognized()
	}
}

func (r *Router) handleCreate(ctx context.Context, draft *command.TaskDraft) string {
	if !draft.Complete() {
		return r.formatter.InvalidTask()
	}

	input := service.CreateTaskInput{
		Title:    draft.Title,
		Owner:    draft.Owner,
		DueDate:  draft.DueDate,
		NextStep: draft.NextStep,
		Notes:    draft.Notes,
		Priority: draft.Priority,
	}
	if draft.Category != "" {
		input.Category = &draft.Category
	}

	task, err := r.tasks.Create(ctx, input)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return fmt.Sprintf("❌ %s", verr.Error())
		}
		log.Printf("[bot] create failed: %v", err)
		return "❌ Error creating task, please try again."
	}

	return r.formatter.TaskCreated(task)
}

func (r *Router) handleList(ctx context.Context, title string, filter service.ListFilter) string {
	tasks, err := r.tasks.ListOpen(ctx, filter)
	if err != nil {
		log.Printf("[bot] list failed: %v", err)
		return "❌ Error listing tasks, please try again."
	}
	if filter.Owner != "" && len(tasks) == 0 {
		return fmt.Sprintf("📭 No open tasks for %s", filter.Owner)
	}
	return r.formatter.TaskList(title, tasks)
}

func (r *Router) handleToday(ctx context.Context) string {
	tasks, err := r.tasks.ListDueToday(ctx)
	if err != nil {
		log.Printf("[bot] today list failed: %v", err)
		return "❌ Error listing tasks, please try again."
	}
	if len(tasks) == 0 {
		return "📭 Nothing due today!"
	}
	return r.formatter.TaskList("Due Today", tasks)
}

func (r *Router) handleDone(ctx context.Context, id int64) string {
	if id == 0 {
		return "❓ Specify task ID: #done <id>"
	}

	ok, err := r.tasks.MarkDone(ctx, id)
	if err != nil {
		log.Printf("[bot] mark done failed: %v", err)
		return "❌ Error completing task, please try again."
	}
	if !ok {
		return fmt.Sprintf("❌ Task %d not found", id)
	}

	task, err := r.tasks.Get(ctx, id)
	if err != nil {
		// Completed but unreadable; still confirm.
		return fmt.Sprintf("✅ Task %d marked as done", id)
	}
	return r.formatter.TaskDone(task)
}
