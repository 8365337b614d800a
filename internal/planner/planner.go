package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/leadflow/leadflow/pkg/domain"
)

const taskParsingPrompt = `You are an AI agent managing a sales automation workflow. Extract structured information from the user's request, then return a response confirming their request.

Examples:
- "Find 2 healthtech companies in Toronto with over 50 employees."
  -> {"task": "prospecting", "industry": "HealthTech", "location": "Toronto", "min_employees": 50, "num_companies": 2, "response": "I'll help you find 2 healthtech companies in Toronto with over 50 employees."}
- "Qualify and personalize outreach to my top leads, and send the emails."
  -> {"task": ["qualify", "personalize"], "send_emails": true, "response": "I'll qualify your leads against your ICP, create personalized outreach and send it."}
- "What can you do?"
  -> {"task": null, "response": "I can prospect for new leads, enrich them, qualify them against your ICP and personalize outreach."}

Rules:
- Extract industry, location, employee size, lead count and the send flag when present
- If multiple tasks are requested, return a task array in execution order
- If the message is conversational, set "task" to null and answer in "response"
- Only return JSON output
- Always include a helpful "response" field confirming what you'll do`

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Planner turns free-text user messages into task descriptors using an OpenAI
// chat model. The session id keys the model conversation so follow-up messages
// keep their context.
type Planner struct {
	client chatClient
	model  string
}

var _ domain.IntentParser = (*Planner)(nil)

type PlannerDependencies struct {
	Client *openai.Client
	Model  string
}

func NewPlanner(deps PlannerDependencies) *Planner {
	model := deps.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &Planner{
		client: deps.Client,
		model:  model,
	}
}

// parsedIntent mirrors the JSON contract of the task-parsing prompt. Task is
// either a string, an array of strings, or null for conversational replies.
type parsedIntent struct {
	Task         json.RawMessage `json:"task"`
	Industry     string          `json:"industry"`
	Location     string          `json:"location"`
	MinEmployees int             `json:"min_employees"`
	NumCompanies int             `json:"num_companies"`
	NumLeads     int             `json:"num_leads"`
	SendEmails   bool            `json:"send_emails"`
	Response     string          `json:"response"`
}

func (p *Planner) ParseIntent(ctx context.Context, session domain.Session, message string) (domain.TaskDescriptor, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		User:  session.ID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: taskParsingPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return domain.TaskDescriptor{}, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}

	if len(resp.Choices) == 0 {
		return domain.TaskDescriptor{}, fmt.Errorf("%w: model returned no choices", domain.ErrParseFailure)
	}

	descriptor, err := descriptorFromReply(resp.Choices[0].Message.Content)
	if err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("Unusable planner output")
		return domain.TaskDescriptor{}, err
	}

	return descriptor, nil
}

func descriptorFromReply(reply string) (domain.TaskDescriptor, error) {
	raw, err := extractJSON(reply)
	if err != nil {
		return domain.TaskDescriptor{}, err
	}

	var intent parsedIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return domain.TaskDescriptor{}, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}

	kinds, err := parseTaskField(intent.Task)
	if err != nil {
		return domain.TaskDescriptor{}, err
	}

	return domain.TaskDescriptor{
		Kinds:        kinds,
		Industry:     intent.Industry,
		Location:     intent.Location,
		MinEmployees: intent.MinEmployees,
		NumCompanies: intent.NumCompanies,
		SendEmails:   intent.SendEmails,
		Response:     intent.Response,
		Confirmation: intent.Response,
	}, nil
}

// parseTaskField accepts "task" as a single kind, an ordered array of kinds,
// null, or the literal "N/A" the model sometimes produces for small talk.
func parseTaskField(raw json.RawMessage) ([]domain.TaskKind, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" || strings.EqualFold(single, "N/A") {
			return nil, nil
		}

		kind, err := domain.ParseTaskKind(single)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
		}

		return []domain.TaskKind{kind}, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("%w: task field is neither a string nor an array", domain.ErrParseFailure)
	}

	kinds := make([]domain.TaskKind, 0, len(many))
	for _, s := range many {
		kind, err := domain.ParseTaskKind(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
		}
		kinds = append(kinds, kind)
	}

	return kinds, nil
}

// extractJSON pulls the first JSON object out of a model reply, tolerating
// markdown fences and minor syntax damage.
func extractJSON(reply string) (string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in model reply", domain.ErrParseFailure)
	}

	candidate := reply[start : end+1]

	if json.Valid([]byte(candidate)) {
		return candidate, nil
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}

	return repaired, nil
}
