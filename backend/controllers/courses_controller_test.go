package controllers

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"aicademy/backend/ai"
	"aicademy/backend/config"
	"aicademy/backend/models"
	"aicademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteCourseForbiddenForNonOwner(t *testing.T) {
	db := testDB(t)
	cfg := &config.Config{JWTSecret: "testsecret"}
	logger := utils.InitLogger()
	cc := NewCoursesController(db, cfg, ai.NewClient(cfg, logger), logger)

	app := fiber.New()
	app.Delete("/api/courses/:id", cc.DeleteCourse)

	owner := models.User{Subject: "local:owner", Username: "owner"}
	require.NoError(t, db.Create(&owner).Error)
	course := models.Course{UserID: owner.ID, Title: "Go", Topic: "Go"}
	require.NoError(t, db.Create(&course).Error)

	intruder := models.User{Subject: "local:intruder", Username: "intruder"}
	require.NoError(t, db.Create(&intruder).Error)
	token, err := utils.GenerateJWTToken(intruder.ID, cfg)
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/courses/%d", course.ID), nil)
	req.Header.Set("Authorization", token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Курс остаётся на месте.
	var count int64
	db.Model(&models.Course{}).Where("id = ?", course.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
