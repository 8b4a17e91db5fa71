package public

import (
	"errors"

	"github.com/boxmart-next/internal/ai"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/i18n"

	"github.com/gin-gonic/gin"
)

// RecipeRequest 食谱生成请求
type RecipeRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
	Servings    int      `json:"servings"`
	BoxName     string   `json:"box_name"`
}

// GreetingRequest 祝福语生成请求
type GreetingRequest struct {
	Occasion  string `json:"occasion" binding:"required"`
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
	Tone      string `json:"tone"`
}

// GenerateRecipe 按盒内食材生成食谱，结果带 parsed / fallback / failed 标记
func (h *Handler) GenerateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.AIService.GenerateRecipe(c.Request.Context(), ai.RecipeRequest{
		Ingredients: req.Ingredients,
		Servings:    req.Servings,
		BoxName:     req.BoxName,
		Locale:      i18n.ResolveLocale(c),
	})
	if err != nil {
		respondAIError(c, err)
		return
	}
	response.Success(c, result)
}

// GenerateGreeting 生成礼盒祝福语
func (h *Handler) GenerateGreeting(c *gin.Context) {
	var req GreetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.AIService.GenerateGreeting(c.Request.Context(), ai.GreetingRequest{
		Occasion:  req.Occasion,
		Recipient: req.Recipient,
		Sender:    req.Sender,
		Tone:      req.Tone,
		Locale:    i18n.ResolveLocale(c),
	})
	if err != nil {
		respondAIError(c, err)
		return
	}
	response.Success(c, result)
}

func respondAIError(c *gin.Context, err error) {
	if errors.Is(err, ai.ErrInvalidInput) {
		respondError(c, response.CodeBadRequest, "error.ai_invalid_input", nil)
		return
	}
	respondError(c, response.CodeBadGateway, "error.ai_unavailable", err)
}
