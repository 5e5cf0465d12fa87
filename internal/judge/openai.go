package judge

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

// OpenAIConfig configures the chat-completions judge
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// MaxRetries is passed to the client; the Guard's timeout still bounds the whole call
	MaxRetries int
}

// OpenAIJudge asks an OpenAI-compatible chat model for verdicts and narration
type OpenAIJudge struct {
	client openai.Client
	model  string
}

// NewOpenAIJudge creates a judge backed by the chat completions API
func NewOpenAIJudge(cfg OpenAIConfig) *OpenAIJudge {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIJudge{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Evaluate implements Judge
func (j *OpenAIJudge) Evaluate(ctx context.Context, ec EvalContext, text string) (domain.Verdict, error) {
	content, err := j.complete(ctx, evaluateSystemPrompt, evaluatePrompt(ec, text), 0)
	if err != nil {
		return domain.Verdict{}, err
	}
	return parseVerdict(content)
}

// OpeningLine implements Judge
func (j *OpenAIJudge) OpeningLine(ctx context.Context, dc DuelContext) (string, error) {
	return j.complete(ctx, narrationSystemPrompt, openingPrompt(dc), 0.9)
}

// ClosingLine implements Judge
func (j *OpenAIJudge) ClosingLine(ctx context.Context, dc DuelContext, winnerID *uuid.UUID) (string, error) {
	return j.complete(ctx, narrationSystemPrompt, closingPrompt(dc, winnerID), 0.9)
}

func (j *OpenAIJudge) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	resp, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(j.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrMsgEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}
