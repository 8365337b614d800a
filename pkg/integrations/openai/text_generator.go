package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/leadflow/leadflow/pkg/domain"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// TextGenerator produces short prose for score reasoning and outreach copy.
type TextGenerator struct {
	client      chatClient
	model       string
	temperature float32
}

var _ domain.TextGenerator = (*TextGenerator)(nil)

type TextGeneratorDependencies struct {
	Client *openai.Client
	Model  string
}

func NewTextGenerator(deps TextGeneratorDependencies) *TextGenerator {
	model := deps.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &TextGenerator{
		client:      deps.Client,
		model:       model,
		temperature: 0.7,
	}
}

func (g *TextGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", domain.ErrProvider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", domain.ErrProvider)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
