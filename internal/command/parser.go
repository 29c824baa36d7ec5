// Package command parses inbound chat messages into structured
// requests: one multi-line task-creation grammar plus a small fixed set
// of query commands.
package command

import (
	"strconv"
	"strings"

	"github.com/odedby/tasknest/internal/dates"
)

// Kind identifies a recognized chat command.
type Kind int

const (
	KindUnknown Kind = iota
	KindCreate
	KindListOpen
	KindListMine
	KindListToday
	KindDone
	KindHelp
)

// Sentinel marks a message as a task-creation command.
const Sentinel = "#task"

// Command is the parsed form of one chat message.
type Command struct {
	Kind  Kind
	Draft *TaskDraft // set for KindCreate
	Owner string     // set for KindListMine (may be empty)
	ID    int64      // set for KindDone (0 when missing)
}

// TaskDraft is a candidate task record parsed from a creation message.
// The parser is lenient: it never fails, and the caller is responsible
// for checking that Title and Owner are present before creating.
type TaskDraft struct {
	Title    string
	Owner    string
	DueDate  string
	NextStep string
	Priority string
	Category string
	Notes    string
}

// Parse classifies a chat message and extracts its arguments. Literal
// query commands are matched first; any message containing the sentinel
// is treated as a creation command; everything else is unknown.
func Parse(text string) Command {
	body := strings.TrimSpace(text)
	lower := strings.ToLower(body)

	switch lower {
	case "#tasks", "#list":
		return Command{Kind: KindListOpen}
	case "#today":
		return Command{Kind: KindListToday}
	case "#help", "#?":
		return Command{Kind: KindHelp}
	}

	if strings.HasPrefix(lower, "#mine") || strings.HasPrefix(lower, "#my") {
		return Command{Kind: KindListMine, Owner: argumentAfterCommand(body)}
	}

	if strings.HasPrefix(lower, "#done") {
		return Command{Kind: KindDone, ID: parseTaskID(body)}
	}

	if strings.Contains(lower, Sentinel) {
		return Command{Kind: KindCreate, Draft: ParseTaskMessage(body)}
	}

	return Command{Kind: KindUnknown}
}

// ParseTaskMessage parses the multi-line creation grammar:
//
//	#task
//	Title: Buy groceries
//	Owner: Ofek
//	Due: Tomorrow 6pm
//	Next: Make list
//	Priority: high
//	Category: shopping
//	Notes: anything
//
// Keys are case-insensitive. Lines without a colon and unrecognized
// keys are silently skipped. Due values are normalized best-effort; an
// unparseable date is kept verbatim.
func ParseTaskMessage(text string) *TaskDraft {
	draft := &TaskDraft{}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		key, value, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			draft.Title = value
		case "owner":
			draft.Owner = value
		case "due":
			draft.DueDate = dates.Normalize(value).Value
		case "next":
			draft.NextStep = value
		case "priority":
			draft.Priority = strings.ToLower(value)
		case "category":
			draft.Category = strings.ToLower(value)
		case "notes":
			draft.Notes = value
		}
	}

	return draft
}

// Complete reports whether the draft has the fields required for
// creation.
func (d *TaskDraft) Complete() bool {
	return d.Title != "" && d.Owner != ""
}

func argumentAfterCommand(body string) string {
	fields := strings.Fields(body)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func parseTaskID(body string) int64 {
	for _, field := range strings.Fields(body)[1:] {
		candidate := strings.TrimPrefix(strings.ToLower(field), "task_")
		candidate = strings.TrimPrefix(candidate, "#")
		if id, err := strconv.ParseInt(candidate, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}
