package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/myokr/okr-api/internal/constants"
	"github.com/myokr/okr-api/internal/metrics"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// SuggestionField is the OKR form field being completed.
type SuggestionField string

const (
	FieldTitle          SuggestionField = "title"
	FieldDescription    SuggestionField = "description"
	FieldKeyResultTitle SuggestionField = "keyResultTitle"
)

// SuggestionKeyResult is a key result already typed into the form.
type SuggestionKeyResult struct {
	Title        string
	TargetValue  float64
	CurrentValue float64
}

// SuggestionContext is the rest of the form.
type SuggestionContext struct {
	Title        string
	Description  string
	KeyResults   []SuggestionKeyResult
	CurrentIndex *int
}

// SuggestionRequest asks for a completion of Text in Field.
type SuggestionRequest struct {
	Field   SuggestionField
	Text    string
	Context SuggestionContext
}

// ChatCompleter is the part of the OpenAI client the service needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService completes OKR text through an OpenAI compatible chat API.
type AIService struct {
	client ChatCompleter
	model  string
	log    *zap.Logger
}

// NewAIService creates an AIService. baseURL points at any OpenAI compatible
// endpoint; an empty apiKey leaves the service unconfigured.
func NewAIService(apiKey, baseURL, model string, log *zap.Logger) *AIService {
	if apiKey == "" {
		return &AIService{model: model, log: log}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewAIServiceWithClient(openai.NewClientWithConfig(cfg), model, log)
}

// NewAIServiceWithClient creates an AIService over an existing client.
func NewAIServiceWithClient(client ChatCompleter, model string, log *zap.Logger) *AIService {
	return &AIService{
		client: client,
		model:  model,
		log:    log,
	}
}

// Suggest completes the user's text. The suggestion always starts with what
// the user typed.
func (s *AIService) Suggest(ctx context.Context, req SuggestionRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}
	if len(req.Text) > constants.MaxSuggestionInputChars {
		return "", validationError("Text is too long")
	}

	system, prompt, err := buildPrompt(req)
	if err != nil {
		return "", err
	}
	if s.client == nil {
		metrics.AISuggestions.WithLabelValues(string(req.Field), "unconfigured").Inc()
		return "", ErrAINotConfigured
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: constants.MaxSuggestionTokens,
	})
	if err != nil {
		metrics.AISuggestions.WithLabelValues(string(req.Field), "error").Inc()
		s.log.Error("ai suggestion failed", zap.String("field", string(req.Field)), zap.Error(err))
		return "", wrap(ErrAIUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		metrics.AISuggestions.WithLabelValues(string(req.Field), "error").Inc()
		return "", wrap(ErrAIUnavailable, errors.New("no choices returned"))
	}
	metrics.AISuggestions.WithLabelValues(string(req.Field), "ok").Inc()

	suggestion := strings.TrimSpace(resp.Choices[0].Message.Content)
	if !strings.HasPrefix(strings.ToLower(suggestion), strings.ToLower(req.Text)) {
		suggestion = req.Text + suggestion
	}
	return suggestion, nil
}

func buildPrompt(req SuggestionRequest) (system string, prompt string, err error) {
	c := req.Context
	var b strings.Builder

	switch req.Field {
	case FieldTitle:
		system = "You are an AI assistant that helps users write effective OKR (Objectives and Key Results) titles. " +
			"Your suggestions should be concise, clear, and follow best practices for OKRs. " +
			"Complete the user's title in a way that makes it specific, measurable, and inspiring. " +
			"Only provide the completed title text, nothing else."
		fmt.Fprintf(&b, "I'm writing an OKR title and have started with: %q\nContext:\n", req.Text)
		b.WriteString(orDefault(c.Description, "Description so far: ", "No description yet"))
		b.WriteString(keyResultLine(c.KeyResults, nil, "Key Results so far: ", "No key results yet"))
		b.WriteString("\nPlease complete my title in a way that makes it a strong OKR objective.")
	case FieldDescription:
		system = "You are an AI assistant that helps users write effective OKR (Objectives and Key Results) descriptions. " +
			"Your suggestions should be detailed, clear, and explain why this objective matters. " +
			"Complete the user's description in a way that provides context and rationale for the objective. " +
			"Only provide the completed description text, nothing else."
		fmt.Fprintf(&b, "I'm writing an OKR description and have started with: %q\nContext:\n", req.Text)
		b.WriteString(orDefault(c.Title, "Objective title: ", "No title yet"))
		b.WriteString(keyResultLine(c.KeyResults, nil, "Key Results so far: ", "No key results yet"))
		b.WriteString("\nPlease complete my description in a way that makes it clear and compelling.")
	case FieldKeyResultTitle:
		system = "You are an AI assistant that helps users write effective Key Results for OKRs. " +
			"Your suggestions should be specific, measurable, and aligned with the objective. " +
			"Complete the user's key result title in a way that makes it quantifiable and time-bound. " +
			"Only provide the completed key result text, nothing else."
		fmt.Fprintf(&b, "I'm writing a Key Result title and have started with: %q\nContext:\n", req.Text)
		b.WriteString(orDefault(c.Title, "Objective title: ", "No objective title yet"))
		b.WriteString(orDefault(c.Description, "Objective description: ", "No description yet"))
		b.WriteString(keyResultLine(c.KeyResults, c.CurrentIndex, "Other Key Results: ", "No other key results yet"))
		b.WriteString("\nPlease complete my key result in a way that makes it specific, measurable, and aligned with the objective.")
	default:
		return "", "", validationError("Field must be title, description, or keyResultTitle")
	}

	return system, b.String(), nil
}

func orDefault(value, label, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback + "\n"
	}
	return label + value + "\n"
}

// keyResultLine lists key result titles, skipping the one being edited.
func keyResultLine(krs []SuggestionKeyResult, skip *int, label, fallback string) string {
	titles := make([]string, 0, len(krs))
	for i, kr := range krs {
		if skip != nil && i == *skip {
			continue
		}
		if t := strings.TrimSpace(kr.Title); t != "" {
			titles = append(titles, t)
		}
	}
	if len(titles) == 0 {
		return fallback + "\n"
	}
	return label + strings.Join(titles, ", ") + "\n"
}
