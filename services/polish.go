package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"learning-progression-system/utils"
)

// ContentPolisher runs community shout-out text through an OpenAI-compatible
// chat-completions endpoint. Any failure degrades to the original text; the
// polish is cosmetic and must never block a submission.
type ContentPolisher struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

func NewContentPolisher() *ContentPolisher {
	baseURL := os.Getenv("TEXTGEN_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("TEXTGEN_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &ContentPolisher{
		BaseURL:    baseURL,
		APIKey:     os.Getenv("TEXTGEN_API_KEY"),
		Model:      model,
		HTTPClient: utils.HTTPClient,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Polish returns a cleaned-up version of text, or text unmodified on any error.
func (p *ContentPolisher) Polish(ctx context.Context, text string) string {
	if text == "" || p.APIKey == "" {
		return text
	}

	body, _ := json.Marshal(chatRequest{
		Model: p.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "Polish the user's celebration post for clarity and energy. Keep it short, keep the meaning, return only the rewritten text."},
			{Role: "user", Content: text},
		},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return text
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.APIKey))

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		log.Printf("⚠️ Text polish failed, using original: %v", err)
		return text
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ Text polish returned %d, using original", resp.StatusCode)
		return text
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || len(parsed.Choices) == 0 {
		return text
	}
	polished := parsed.Choices[0].Message.Content
	if polished == "" {
		return text
	}
	return polished
}
