package identity

import (
	"net/http/httptest"
	"strings"
	"testing"

	"aicademy/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func resolveVia(t *testing.T, hint Hint, authHeader string) (Identity, error) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "testsecret"}

	var gotID Identity
	var gotErr error

	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		gotID, gotErr = FromRequest(c, nil, cfg, hint)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/t", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	_, err := app.Test(req)
	assert.NoError(t, err)

	return gotID, gotErr
}

func TestFromRequestUsesHintWhenNoToken(t *testing.T) {
	id, err := resolveVia(t, Hint{Subject: "ext:42", Name: "Alice", Email: "a@example.com"}, "")
	assert.NoError(t, err)
	assert.False(t, id.Verified)
	assert.Equal(t, "ext:42", id.Subject)
	assert.Equal(t, "Alice", id.Name)
}

func TestFromRequestNoIdentityAtAll(t *testing.T) {
	_, err := resolveVia(t, Hint{}, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFromRequestInvalidTokenIsNotDowngraded(t *testing.T) {
	// Невалидный токен — ошибка, а не переход на hint.
	_, err := resolveVia(t, Hint{Subject: "ext:42"}, "garbage-token")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestNewLocalSubject(t *testing.T) {
	s1 := NewLocalSubject()
	s2 := NewLocalSubject()

	assert.True(t, strings.HasPrefix(s1, "local:"))
	assert.NotEqual(t, s1, s2)
}
