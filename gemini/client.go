package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"gembot/logger"
	"gembot/models"
)

const personality = `You are a friendly, helpful AI assistant chatting on Telegram.
Answer concisely and stay on topic. Use Markdown formatting for code.`

// promptWindow is how many trailing history turns make it into the prompt.
const promptWindow = 6

const emptyReply = "Sorry, I could not come up with an answer. Try rephrasing your question."

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	maxLen int
}

func New(ctx context.Context, apiKey, modelName string, maxLen int) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetTopK(40)
	model.SetMaxOutputTokens(2048)

	logger.Get().Info("gemini model initialized", zap.String("model", modelName))
	return &Client{client: client, model: model, maxLen: maxLen}, nil
}

// Generate produces a reply for the user's message given the recent
// conversation history (oldest first).
func (c *Client) Generate(ctx context.Context, message string, history []models.Conversation) (string, error) {
	parts := []string{personality}

	if len(history) > promptWindow {
		history = history[len(history)-promptWindow:]
	}
	for _, turn := range history {
		prefix := "User"
		if turn.Role == models.RoleAssistant {
			prefix = "Assistant"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", prefix, turn.Content))
	}
	parts = append(parts, fmt.Sprintf("User: %s", message), "Assistant:")

	resp, err := c.model.GenerateContent(ctx, genai.Text(strings.Join(parts, "\n\n")))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	reply := extractText(resp)
	if reply == "" {
		logger.Get().Warn("gemini returned an empty response")
		return emptyReply, nil
	}

	return truncate(reply, c.maxLen), nil
}

// truncate shortens a reply to at most max bytes, cutting on a rune
// boundary so multi-byte text stays valid UTF-8.
func truncate(reply string, max int) string {
	if len(reply) <= max {
		return reply
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(reply[cut]) {
		cut--
	}
	return reply[:cut] + "\n\n...(response truncated)"
}

// Ping fires a trivial request so a bad API key fails at startup rather
// than on the first user message.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.model.GenerateContent(ctx, genai.Text("Hello, respond with 'OK'"))
	if err != nil {
		return fmt.Errorf("gemini connectivity check: %w", err)
	}
	if extractText(resp) == "" {
		return fmt.Errorf("gemini connectivity check: empty response")
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
