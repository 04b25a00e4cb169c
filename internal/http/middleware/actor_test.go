package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestActor(t *testing.T) {
	app := fiber.New()
	app.Use(Actor())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(ActorID(c))
	})

	t.Run("should resolve actor id from header", func(t *testing.T) {
		id := uuid.New().String()
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(ActorHeader, id)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := make([]byte, resp.ContentLength)
		resp.Body.Read(body)
		assert.Equal(t, id, string(body))
	})

	t.Run("should reject missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("should reject malformed id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(ActorHeader, "42")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestActorIDWithoutMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/test", func(c *fiber.Ctx) error {
		assert.Empty(t, ActorID(c))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, _ := app.Test(req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
