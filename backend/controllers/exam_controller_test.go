package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"aicademy/backend/config"
	"aicademy/backend/examguard"
	"aicademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testExamApp() (*fiber.App, *examguard.Registry) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	guards := examguard.NewRegistry()
	ec := NewExamController(nil, cfg, guards, utils.InitLogger())

	app := fiber.New()
	app.Post("/api/exams/:lessonId/start", ec.StartExam)
	app.Post("/api/exams/violations", ec.ReportViolation)
	app.Post("/api/exams/:lessonId/submit", ec.SubmitExam)
	return app, guards
}

func TestSubmitWithoutIdentityFailsLoudly(t *testing.T) {
	app, _ := testExamApp()

	body, _ := json.Marshal(map[string]interface{}{
		"score":   80,
		"answers": []string{"A", "B"},
	})
	req := httptest.NewRequest("POST", "/api/exams/1/submit", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestStartWithoutIdentityIsRejected(t *testing.T) {
	app, _ := testExamApp()

	req := httptest.NewRequest("POST", "/api/exams/1/start", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestReportViolationUnknownType(t *testing.T) {
	app, _ := testExamApp()

	body, _ := json.Marshal(map[string]string{
		"session": uuid.NewString(),
		"type":    "mouse_move",
	})
	req := httptest.NewRequest("POST", "/api/exams/violations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportViolationNoticeIsAcknowledged(t *testing.T) {
	app, _ := testExamApp()

	// Подавленный context menu не считается нарушением.
	body, _ := json.Marshal(map[string]string{
		"session": uuid.NewString(),
		"type":    "context_menu",
	})
	req := httptest.NewRequest("POST", "/api/exams/violations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestReportViolationInvalidSessionToken(t *testing.T) {
	app, _ := testExamApp()

	body, _ := json.Marshal(map[string]string{
		"session": "not-a-uuid",
		"type":    "tab_hidden",
	})
	req := httptest.NewRequest("POST", "/api/exams/violations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportViolationUnknownSession(t *testing.T) {
	app, _ := testExamApp()

	body, _ := json.Marshal(map[string]string{
		"session": uuid.NewString(),
		"type":    "tab_hidden",
	})
	req := httptest.NewRequest("POST", "/api/exams/violations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReportViolationCountsWarnings(t *testing.T) {
	app, guards := testExamApp()

	token := uuid.New()
	guards.Begin(token, nil)

	for i, eventType := range []string{"tab_hidden", "window_blur", "copy_attempt"} {
		body, _ := json.Marshal(map[string]string{
			"session": token.String(),
			"type":    eventType,
		})
		req := httptest.NewRequest("POST", "/api/exams/violations", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, float64(i+1), result["warnings"])
	}

	guard, ok := guards.Get(token)
	assert.True(t, ok)
	assert.Equal(t, 3, guard.Warnings())
}
