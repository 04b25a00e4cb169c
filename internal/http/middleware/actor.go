package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// ActorHeader carries the authenticated principal's user id. Session
	// and credential mechanics live outside this service; by the time a
	// request arrives here the identity has already been established.
	ActorHeader = "X-User-ID"
	// ActorLocalKey is the key used to store the actor id in Fiber's context locals.
	ActorLocalKey = "actor_id"
)

// Actor resolves the authenticated principal from the request and stores
// its id in context locals. Requests without a well-formed identity are
// rejected before reaching any handler.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(ActorHeader)
		if id == "" {
			return fiber.ErrUnauthorized
		}
		if _, err := uuid.Parse(id); err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(ActorLocalKey, id)
		return c.Next()
	}
}

// ActorID returns the actor id stored by Actor, or "" when absent.
func ActorID(c *fiber.Ctx) string {
	if v := c.Locals(ActorLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
