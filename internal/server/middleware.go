// internal/server/middleware.go
package server

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID attaches a correlation id to every request. Inbound
// X-Request-ID headers are honored so chained adapters keep one id.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// RequestLogger logs each request with its outcome and duration.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		level := "INFO"
		if err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError {
			level = "ERROR"
		}

		log.Printf("[%s] %s %s completed in %v (status: %d, request: %v)",
			level, c.Method(), c.Path(), duration, c.Response().StatusCode(), c.Locals(requestIDKey))
		return err
	}
}
