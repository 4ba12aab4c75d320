package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	require.NoError(t, json.Unmarshal(body, target))
}

// authAs simulates the JWT middleware for handler tests.
func authAs(username, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("username", username)
		c.Locals("user_role", role)
		return c.Next()
	}
}
