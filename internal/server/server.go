// internal/server/server.go
package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/odedby/tasknest/internal/bot"
	"github.com/odedby/tasknest/internal/notify"
	"github.com/odedby/tasknest/internal/service"
)

// Server exposes the task tracker over HTTP: a JSON API, quick-action
// links, and the inbound chat webhook.
type Server struct {
	app       *fiber.App
	tasks     *service.TaskService
	formatter *notify.Formatter
	bot       *bot.Router
}

func New(tasks *service.TaskService, formatter *notify.Formatter, botRouter *bot.Router) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "tasknest",
		DisableStartupMessage: true,
	})

	s := &Server{
		app:       app,
		tasks:     tasks,
		formatter: formatter,
		bot:       botRouter,
	}

	app.Use(RequestID())
	app.Use(RequestLogger())
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.health)

	// JSON API
	s.app.Post("/api/newTask", s.createTask)
	s.app.Get("/api/tasks", s.listTasks)
	s.app.Get("/api/tasks/today", s.listToday)
	s.app.Get("/api/task/:id", s.getTask)
	s.app.Get("/api/task/:id/history", s.getHistory)
	s.app.Get("/api/categories", s.getCategories)

	// Chat-format creation via query parameter
	s.app.Get("/newTask", s.createTaskFromText)

	// Quick actions, reachable from chat links (GET) and forms (POST)
	s.app.All("/markDone/:id", s.markDone)
	s.app.All("/reassign/:id", s.reassign)
	s.app.All("/updateDue/:id", s.updateDueDate)
	s.app.All("/updateNext/:id", s.updateNextStep)
	s.app.All("/updatePriority/:id", s.updatePriority)
	s.app.All("/updateCategory/:id", s.updateCategory)

	// Task view referenced by quick-action links
	s.app.Get("/task/:id", s.viewTask)

	// Inbound chat transport
	s.app.Post("/webhook/whatsapp", s.chatWebhook)
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
