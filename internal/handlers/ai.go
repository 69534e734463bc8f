package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/response"
	"github.com/myokr/okr-api/internal/services"
	"go.uber.org/zap"
)

// AIHandler serves OKR text suggestions.
type AIHandler struct {
	aiService *services.AIService
	log       *zap.Logger
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(aiService *services.AIService, log *zap.Logger) *AIHandler {
	return &AIHandler{aiService: aiService, log: log}
}

// Suggest completes the text a user is typing into an OKR form field.
func (h *AIHandler) Suggest(c *gin.Context) {
	type SuggestionKeyResult struct {
		Title        string  `json:"title"`
		TargetValue  float64 `json:"targetValue"`
		CurrentValue float64 `json:"currentValue"`
	}
	type SuggestionContext struct {
		Title        string                `json:"title"`
		Description  string                `json:"description"`
		KeyResults   []SuggestionKeyResult `json:"keyResults"`
		CurrentIndex *int                  `json:"currentKeyResultIndex"`
	}
	type SuggestionRequest struct {
		Field   string            `json:"field" binding:"required,oneof=title description keyResultTitle"`
		Text    string            `json:"text"`
		Context SuggestionContext `json:"context"`
	}

	var req SuggestionRequest
	if !bindJSON(c, &req) {
		return
	}

	krs := make([]services.SuggestionKeyResult, len(req.Context.KeyResults))
	for i, kr := range req.Context.KeyResults {
		krs[i] = services.SuggestionKeyResult{
			Title:        kr.Title,
			TargetValue:  kr.TargetValue,
			CurrentValue: kr.CurrentValue,
		}
	}

	suggestion, err := h.aiService.Suggest(c.Request.Context(), services.SuggestionRequest{
		Field: services.SuggestionField(req.Field),
		Text:  req.Text,
		Context: services.SuggestionContext{
			Title:        req.Context.Title,
			Description:  req.Context.Description,
			KeyResults:   krs,
			CurrentIndex: req.Context.CurrentIndex,
		},
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Suggestion generated successfully", gin.H{"suggestion": suggestion})
}
