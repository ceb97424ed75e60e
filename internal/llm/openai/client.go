package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	oai "github.com/openai/openai-go"
)

var errNoChoices = errors.New("no choices in completion response")

// Complete implements llm.Completer: one user message, first choice's content back.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Debug("llm.complete.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(prompt),
	)

	params := oai.ChatCompletionNewParams{
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage(prompt),
		},
		Model:       oai.ChatModel(c.cfg.Model),
		Temperature: oai.Float(c.cfg.Temperature),
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		c.log.Error("llm.complete.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.log.Error("llm.complete.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", errNoChoices
	}

	content := resp.Choices[0].Message.Content
	c.log.Info("llm.complete.ok",
		"req_id", rid,
		"model", resp.Model,
		"content_len", len(content),
		"total_tokens", resp.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
