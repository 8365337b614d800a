package planner

import (
	"context"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflow/leadflow/pkg/domain"
)

type fakeChatClient struct {
	reply string
	err   error
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func plannerWithReply(reply string) *Planner {
	return &Planner{client: &fakeChatClient{reply: reply}, model: openai.GPT4oMini}
}

func TestParseIntent_SingleTask(t *testing.T) {
	p := plannerWithReply(`{"task": "prospecting", "industry": "HealthTech", "location": "Toronto", "min_employees": 50, "num_companies": 2, "response": "On it."}`)

	descriptor, err := p.ParseIntent(context.Background(), domain.Session{ID: "session-1"}, "find healthtech companies")
	require.NoError(t, err)

	assert.Equal(t, []domain.TaskKind{domain.TaskKindProspecting}, descriptor.Kinds)
	assert.Equal(t, "HealthTech", descriptor.Industry)
	assert.Equal(t, "Toronto", descriptor.Location)
	assert.Equal(t, 50, descriptor.MinEmployees)
	assert.Equal(t, 2, descriptor.NumCompanies)
	assert.Equal(t, "On it.", descriptor.Response)
}

func TestParseIntent_MultiTaskKeepsOrder(t *testing.T) {
	p := plannerWithReply(`{"task": ["qualify", "personalize"], "send_emails": true, "response": "Will do."}`)

	descriptor, err := p.ParseIntent(context.Background(), domain.Session{ID: "session-1"}, "qualify and personalize, send them")
	require.NoError(t, err)

	assert.Equal(t, []domain.TaskKind{domain.TaskKindQualify, domain.TaskKindPersonalize}, descriptor.Kinds)
	assert.True(t, descriptor.SendEmails)
}

func TestParseIntent_ConversationalReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"null task", `{"task": null, "response": "I can prospect, enrich, qualify and personalize."}`},
		{"missing task", `{"response": "Happy to help."}`},
		{"N/A task", `{"task": "N/A", "response": "Hello!"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descriptor, err := plannerWithReply(tt.reply).ParseIntent(context.Background(), domain.Session{ID: "s"}, "hi")
			require.NoError(t, err)
			assert.True(t, descriptor.IsConversational())
			assert.NotEmpty(t, descriptor.Response)
		})
	}
}

func TestParseIntent_ExtractsJSONFromFencedReply(t *testing.T) {
	p := plannerWithReply("Sure, here is the plan:\n```json\n{\"task\": \"enrichment\", \"response\": \"Enriching now.\"}\n```")

	descriptor, err := p.ParseIntent(context.Background(), domain.Session{ID: "s"}, "enrich my leads")
	require.NoError(t, err)
	assert.Equal(t, []domain.TaskKind{domain.TaskKindEnrichment}, descriptor.Kinds)
}

func TestParseIntent_RepairsSloppyJSON(t *testing.T) {
	// Trailing comma and single quotes, as models sometimes emit.
	p := plannerWithReply(`{'task': 'qualify', 'response': 'Scoring your leads.',}`)

	descriptor, err := p.ParseIntent(context.Background(), domain.Session{ID: "s"}, "qualify")
	require.NoError(t, err)
	assert.Equal(t, []domain.TaskKind{domain.TaskKindQualify}, descriptor.Kinds)
}

func TestParseIntent_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no JSON at all", "I cannot help with that."},
		{"unknown task kind", `{"task": "world_domination", "response": "..."}`},
		{"task is a number", `{"task": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := plannerWithReply(tt.reply).ParseIntent(context.Background(), domain.Session{ID: "s"}, "do something")
			require.ErrorIs(t, err, domain.ErrParseFailure)
		})
	}
}

func TestParseIntent_ModelError(t *testing.T) {
	p := &Planner{client: &fakeChatClient{err: fmt.Errorf("connection refused")}, model: openai.GPT4oMini}

	_, err := p.ParseIntent(context.Background(), domain.Session{ID: "s"}, "prospect")
	require.ErrorIs(t, err, domain.ErrParseFailure)
}
