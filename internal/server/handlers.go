// internal/server/handlers.go
package server

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/odedby/tasknest/internal/command"
	"github.com/odedby/tasknest/internal/service"
)

// CreateTaskRequest is the JSON creation payload.
type CreateTaskRequest struct {
	Title    string  `json:"title"`
	Owner    string  `json:"owner"`
	DueDate  string  `json:"due_date"`
	NextStep string  `json:"next_step"`
	Notes    string  `json:"notes"`
	Priority string  `json:"priority"`
	Category *string `json:"category"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format("2006-01-02T15:04:05"),
	})
}

func (s *Server) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	task, err := s.tasks.Create(c.Context(), service.CreateTaskInput{
		Title:    req.Title,
		Owner:    req.Owner,
		DueDate:  req.DueDate,
		NextStep: req.NextStep,
		Notes:    req.Notes,
		Priority: req.Priority,
		Category: req.Category,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"task_id":       task.ID,
		"message":       fmt.Sprintf("Task #%d created successfully", task.ID),
		"task":          task,
		"quick_actions": s.formatter.Actions(task.ID),
	})
}

func (s *Server) createTaskFromText(c *fiber.Ctx) error {
	text := c.Query("text")
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Missing text parameter",
		})
	}

	draft := command.ParseTaskMessage(text)
	if !draft.Complete() {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "parse_failure",
			Message: "Could not parse task. Missing title or owner.",
		})
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

	task, err := s.tasks.Create(c.Context(), input)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"task_id":       task.ID,
		"task":          task,
		"quick_actions": s.formatter.Actions(task.ID),
	})
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	// Only open tasks are listable; a status parameter is accepted
	// and ignored.
	tasks, err := s.tasks.ListOpen(c.Context(), service.ListFilter{
		Owner:    c.Query("owner"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

func (s *Server) listToday(c *fiber.Ctx) error {
	tasks, err := s.tasks.ListDueToday(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

func (s *Server) getTask(c *fiber.Ctx) error {
	id, ok := taskIDParam(c)
	if !ok {
		return respondInvalidID(c)
	}

	task, err := s.tasks.Get(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(task)
}

func (s *Server) viewTask(c *fiber.Ctx) error {
	id, ok := taskIDParam(c)
	if !ok {
		return respondInvalidID(c)
	}

	task, err := s.tasks.Get(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	history, err := s.tasks.History(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"task":          task,
		"history":       history,
		"quick_actions": s.formatter.Actions(id),
	})
}

func (s *Server) getHistory(c *fiber.Ctx) error {
	id, ok := taskIDParam(c)
	if !ok {
		return respondInvalidID(c)
	}

	history, err := s.tasks.History(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"task_id": id, "history": history})
}

func (s *Server) getCategories(c *fiber.Ctx) error {
	categories, err := s.tasks.Categories(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (s *Server) markDone(c *fiber.Ctx) error {
	id, ok := taskIDParam(c)
	if !ok {
		return respondInvalidID(c)
	}

	ok, err := s.tasks.MarkDone(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	if !ok {
		return respondNotFound(c, id)
	}
	return c.JSON(fiber.Map{"success": true, "message": fmt.Sprintf("Task #%d marked as done", id)})
}

func (s *Server) reassign(c *fiber.Ctx) error {
	id, ok := taskIDParam(c)
	if !ok {
		return respondInvalidID(c)
	}

	newOwner := paramValue(c, "to")
	if newOwner == "" {
		return respondMissingParam(c, "to")
	}

	ok, err := s.tasks.Reassign(c.Context(), id, newOwner)
	if err != nil {
		return s.respondError(c, err)
	}
	if !ok {
		return respondNotFound(c, id)
	}
	return c.JSON(fiber.Map{"success": true, "message": fmt.Sprintf("Task #%d reassigned to %s", id, newOwner)})
}

func (s *Server) updateDueDate(c *fiber.Ctx) error {
	id, ok := taskIDParam(c)
	if !ok {
		return respondInvalidID(c)
	}

	date := paramValue(c, "date")
	if date == "" {
		return respondMissingParam(c, "date")
	}

	ok, err := s.tasks.UpdateDueDate(c.Context(), id, date)
	if err != nil {
		return s.respondError(c, err)
	}
	if !ok {
		return respondNotFound(c, id)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Due date updated"})
}

func (s *Server) updateNextStep(c *fiber.Ctx) error {
	id, ok := taskIDParam(c)
	if !ok {
		return respondInvalidID(c)
	}

	step := paramValue(c, "step")
	if step == "" {
		return respondMissingParam(c, "step")
	}

	ok, err := s.tasks.UpdateNextStep(c.Context(), id, step)
	if err != nil {
		return s.respondError(c, err)
	}
	if !ok {
		return respondNotFound(c, id)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Next step updated"})
}

func (s *Server) updatePriority(c *fiber.Ctx) error {
	id, ok := taskIDParam(c)
	if !ok {
		return respondInvalidID(c)
	}

	priority := paramValue(c, "priority")
	if priority == "" {
		return respondMissingParam(c, "priority")
	}

	ok, err := s.tasks.UpdatePriority(c.Context(), id, priority)
	if err != nil {
		return s.respondError(c, err)
	}
	if !ok {
		return respondNotFound(c, id)
	}
	return c.JSON(fiber.Map{"success": true, "message": fmt.Sprintf("Priority set to %s", priority)})
}

func (s *Server) updateCategory(c *fiber.Ctx) error {
	id, ok := taskIDParam(c)
	if !ok {
		return respondInvalidID(c)
	}

	// An empty value clears the category.
	var category *string
	if value := paramValue(c, "category"); value != "" {
		category = &value
	}

	ok, err := s.tasks.UpdateCategory(c.Context(), id, category)
	if err != nil {
		return s.respondError(c, err)
	}
	if !ok {
		return respondNotFound(c, id)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Category updated"})
}

func (s *Server) chatWebhook(c *fiber.Ctx) error {
	body := c.FormValue("Body")
	reply := s.bot.Handle(c.Context(), body)

	c.Set(fiber.HeaderContentType, "text/xml")
	return c.SendString(twiML(reply))
}

func (s *Server) respondError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: verr.Error(),
		})
	}
	if errors.Is(err, service.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "store_failure",
		Message: err.Error(),
	})
}

func taskIDParam(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func respondInvalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid task ID",
	})
}

// paramValue reads an action parameter from the query string or, for
// form posts, the body.
func paramValue(c *fiber.Ctx, name string) string {
	if value := c.Query(name); value != "" {
		return value
	}
	return c.FormValue(name)
}

func respondNotFound(c *fiber.Ctx, id int64) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error:   "not_found",
		Message: fmt.Sprintf("Task #%d not found", id),
	})
}

func respondMissingParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: fmt.Sprintf("Missing %q parameter", name),
	})
}

// twiML wraps a reply body in the Twilio messaging response envelope.
func twiML(message string) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(message))
	return `<?xml version="1.0" encoding="UTF-8"?><Response><Message>` +
		escaped.String() + `</Message></Response>`
}
