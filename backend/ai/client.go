// Package ai talks to an OpenAI-compatible chat-completions API to
// generate course outlines, lesson content and tutor replies. Generation
// failures of any kind degrade to deterministic fallback content; they
// are never surfaced to the user as errors.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"aicademy/backend/config"
)

type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

type ModuleOutline struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Lessons     []string `json:"lessons"`
}

type QuestionDraft struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type LessonContent struct {
	Content   string          `json:"content"`
	Questions []QuestionDraft `json:"questions"`
}

type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	logger     *log.Logger
}

func NewClient(cfg *config.Config, logger *log.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiKey:     cfg.OpenAIAPIKey,
		model:      cfg.OpenAIModel,
		baseURL:    strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		timeout:    time.Duration(cfg.GenerationTimeout) * time.Second,
		logger:     logger,
	}
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// complete выполняет один запрос к chat-completions API.
func (c *Client) complete(ctx context.Context, req completionRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// GenerateOutline builds a course outline for the topic. Any failure —
// missing key, HTTP error, timeout, unparsable JSON, or a lazy outline
// with fewer than 4 modules — returns the fallback curriculum.
func (c *Client) GenerateOutline(ctx context.Context, topic string) []ModuleOutline {
	if c.apiKey == "" {
		c.logger.Println("ai: no API key, using fallback curriculum")
		return FallbackCurriculum(topic)
	}

	prompt := fmt.Sprintf(`You are a curriculum designer for a learning platform.
Topic: %q

Create a complete course covering the topic from basics to advanced use.
Create between 5 and 12 modules, each with 3-5 lesson titles.

Return ONLY a JSON object with this structure:
{"modules": [{"title": "...", "description": "...", "lessons": ["...", "..."]}]}`, topic)

	content, err := c.complete(ctx, completionRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: "You are a technical curriculum architect. Output strict JSON only."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		c.logger.Printf("ai: outline generation failed: %v", err)
		return FallbackCurriculum(topic)
	}

	var parsed struct {
		Modules []ModuleOutline `json:"modules"`
	}
	if err := json.Unmarshal([]byte(StripCodeFences(content)), &parsed); err != nil {
		c.logger.Printf("ai: outline response is not valid JSON: %v", err)
		return FallbackCurriculum(topic)
	}

	// Ленивый одномодульный ответ отклоняем.
	if len(parsed.Modules) < 4 {
		c.logger.Printf("ai: outline has only %d modules, using fallback", len(parsed.Modules))
		return FallbackCurriculum(topic)
	}

	return parsed.Modules
}

// GenerateLesson builds lesson content plus quiz questions. Same failure
// contract as GenerateOutline: the fallback lesson is always usable.
func (c *Client) GenerateLesson(ctx context.Context, title, moduleTitle string) LessonContent {
	if c.apiKey == "" {
		c.logger.Println("ai: no API key, using fallback lesson content")
		return FallbackLesson(title, moduleTitle)
	}

	if moduleTitle == "" {
		moduleTitle = "General"
	}
	prompt := fmt.Sprintf(`You are a technical author for a learning platform.
Lesson: %q
Module: %q

Write a comprehensive lesson in Markdown, then 3 multiple-choice questions.
Each question has 4 options; correctAnswer must be copied verbatim from options.

Output JSON:
{"content": "markdown...", "questions": [{"question": "...", "options": ["A","B","C","D"], "correctAnswer": "A", "explanation": "..."}]}`, title, moduleTitle)

	content, err := c.complete(ctx, completionRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: "You write deep, technical, production-ready guides. Output strict JSON only."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 2000,
	})
	if err != nil {
		c.logger.Printf("ai: lesson generation failed: %v", err)
		return FallbackLesson(title, moduleTitle)
	}

	var parsed LessonContent
	if err := json.Unmarshal([]byte(StripCodeFences(content)), &parsed); err != nil {
		c.logger.Printf("ai: lesson response is not valid JSON: %v", err)
		return FallbackLesson(title, moduleTitle)
	}
	if parsed.Content == "" {
		c.logger.Println("ai: lesson response has empty content, using fallback")
		return FallbackLesson(title, moduleTitle)
	}

	return parsed
}

// Chat returns a tutor reply. Soft failure: on any error the user gets a
// canned apology, never an error.
func (c *Client) Chat(ctx context.Context, lessonContext string, messages []ChatMessage) string {
	if c.apiKey == "" {
		return "I see! (Note: AI tutor is not configured on this server yet.)"
	}

	system := "You are a helpful AI tutor on a learning platform. Be friendly, encouraging, concise and technically accurate. Use Markdown."
	if lessonContext != "" {
		if len(lessonContext) > 15000 {
			lessonContext = lessonContext[:15000]
		}
		system += "\n\nThe user is currently studying a lesson with the following content:\n\"\"\"\n" +
			lessonContext + "\n\"\"\"\nAnswer questions relating to this content."
	}

	all := append([]ChatMessage{{Role: "system", Content: system}}, messages...)
	reply, err := c.complete(ctx, completionRequest{
		Model:       c.model,
		Messages:    all,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		c.logger.Printf("ai: tutor chat failed: %v", err)
		return "Sorry, I am having trouble connecting to my brain right now."
	}
	return reply
}

// StripCodeFences removes markdown code fence markers so a fenced JSON
// payload still parses.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
