package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// Message is one chat turn sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the language-model completion dependency. Stages receive it
// injected so tests can substitute a stub.
type Completer interface {
	Complete(ctx context.Context, msgs []Message, model string) (string, error)
}

type chatReq struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResp struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// OpenAICompleter talks to a chat.completions compatible endpoint.
type OpenAICompleter struct {
	http   *HTTP
	url    string
	apiKey string
}

func NewOpenAICompleter(h *HTTP, url, apiKey string) *OpenAICompleter {
	return &OpenAICompleter{http: h, url: url, apiKey: apiKey}
}

func (c *OpenAICompleter) Complete(ctx context.Context, msgs []Message, model string) (string, error) {
	body, _ := json.Marshal(chatReq{Model: model, Messages: msgs})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llm %s: %s", resp.Status, string(b))
	}

	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llm decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("llm: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

var fenceRe = regexp.MustCompile("(?m)^```(?:json)?[ \t]*\r?\n?|```$")

// StripFences removes surrounding markdown code-fence markers, which
// models add around JSON despite instructions not to.
func StripFences(raw string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// ParseFencedJSON unmarshals model output that may be wrapped in fences.
func ParseFencedJSON(raw string, v any) error {
	return json.Unmarshal([]byte(StripFences(raw)), v)
}
