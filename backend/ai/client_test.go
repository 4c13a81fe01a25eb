package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aicademy/backend/config"
	"aicademy/backend/utils"

	"github.com/stretchr/testify/assert"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		OpenAIAPIKey:      "test-key",
		OpenAIModel:       "test-model",
		OpenAIBaseURL:     server.URL,
		GenerationTimeout: 5,
	}
	return NewClient(cfg, utils.InitLogger())
}

func completionWith(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestGenerateOutlineParsesResponse(t *testing.T) {
	outline := `{"modules": [
		{"title": "M1", "description": "d", "lessons": ["L1", "L2"]},
		{"title": "M2", "description": "d", "lessons": ["L1"]},
		{"title": "M3", "description": "d", "lessons": ["L1"]},
		{"title": "M4", "description": "d", "lessons": ["L1"]},
		{"title": "M5", "description": "d", "lessons": ["L1"]}
	]}`
	c := testClient(t, completionWith("```json\n"+outline+"\n```"))

	modules := c.GenerateOutline(context.Background(), "Go")
	assert.Len(t, modules, 5)
	assert.Equal(t, "M1", modules[0].Title)
	assert.Equal(t, []string{"L1", "L2"}, modules[0].Lessons)
}

func TestGenerateOutlineMalformedJSONFallsBack(t *testing.T) {
	c := testClient(t, completionWith("Sure! Here is your course outline: modules..."))

	modules := c.GenerateOutline(context.Background(), "Go")
	assert.Equal(t, FallbackCurriculum("Go"), modules)
}

func TestGenerateOutlineLazyOutlineFallsBack(t *testing.T) {
	c := testClient(t, completionWith(`{"modules": [{"title": "Only one", "lessons": ["L1"]}]}`))

	modules := c.GenerateOutline(context.Background(), "Go")
	assert.Equal(t, FallbackCurriculum("Go"), modules)
}

func TestGenerateOutlineHTTPErrorFallsBack(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	modules := c.GenerateOutline(context.Background(), "Go")
	assert.Equal(t, FallbackCurriculum("Go"), modules)
}

func TestGenerateOutlineWithoutKeyFallsBack(t *testing.T) {
	cfg := &config.Config{OpenAIBaseURL: "http://localhost:0", GenerationTimeout: 1}
	c := NewClient(cfg, utils.InitLogger())

	modules := c.GenerateOutline(context.Background(), "Go")
	assert.Equal(t, FallbackCurriculum("Go"), modules)
}

func TestGenerateLessonParsesResponse(t *testing.T) {
	lesson := `{"content": "# Lesson", "questions": [
		{"question": "q?", "options": ["A", "B"], "correctAnswer": "A", "explanation": "because"}
	]}`
	c := testClient(t, completionWith(lesson))

	got := c.GenerateLesson(context.Background(), "Slices", "Go Basics")
	assert.Equal(t, "# Lesson", got.Content)
	assert.Len(t, got.Questions, 1)
	assert.Equal(t, "A", got.Questions[0].CorrectAnswer)
}

func TestGenerateLessonMalformedJSONFallsBack(t *testing.T) {
	c := testClient(t, completionWith("not json at all"))

	got := c.GenerateLesson(context.Background(), "Slices", "Go Basics")
	assert.Equal(t, FallbackLesson("Slices", "Go Basics"), got)
}

func TestChatSoftFailure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	reply := c.Chat(context.Background(), "", []ChatMessage{{Role: "user", Content: "hi"}})
	assert.NotEmpty(t, reply)
	assert.Contains(t, reply, "Sorry")
}

func TestChatReturnsReply(t *testing.T) {
	c := testClient(t, completionWith("Hello, student!"))

	reply := c.Chat(context.Background(), "lesson text", []ChatMessage{{Role: "user", Content: "hi"}})
	assert.Equal(t, "Hello, student!", reply)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}

func TestFallbackCurriculumShape(t *testing.T) {
	modules := FallbackCurriculum("Rust")
	assert.GreaterOrEqual(t, len(modules), 4)
	for _, m := range modules {
		assert.NotEmpty(t, m.Title)
		assert.NotEmpty(t, m.Lessons)
	}
	// Детерминированность.
	assert.Equal(t, modules, FallbackCurriculum("Rust"))
}

func TestFallbackLessonQuestionsAreValid(t *testing.T) {
	lesson := FallbackLesson("Ownership", "Rust Basics")
	assert.NotEmpty(t, lesson.Content)
	assert.Len(t, lesson.Questions, 3)

	for _, q := range lesson.Questions {
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
			}
		}
		assert.True(t, found, "correct answer must be one of the options")
	}
}
