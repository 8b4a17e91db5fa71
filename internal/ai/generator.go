package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boxmart-next/internal/cache"
	"github.com/boxmart-next/internal/logger"

	"github.com/samber/lo"
)

// ErrInvalidInput 生成请求缺少必要信息
var ErrInvalidInput = errors.New("ai input invalid")

// Kind 生成结果类型
type Kind string

const (
	KindParsed   Kind = "parsed"   // 模型输出通过校验
	KindFallback Kind = "fallback" // 使用内置模板
	KindFailed   Kind = "failed"   // 无可用结果
)

const (
	maxIngredients   = 20
	maxServings      = 20
	defaultServings  = 2
	defaultCacheTTL  = 24 * time.Hour
	recipeCachePre   = "ai:recipe:"
	greetingCachePre = "ai:greeting:"
)

// Recipe 食谱
type Recipe struct {
	Title       string   `json:"title"`
	Servings    int      `json:"servings"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Tips        string   `json:"tips,omitempty"`
}

// Greeting 祝福语
type Greeting struct {
	Occasion string `json:"occasion"`
	Message  string `json:"message"`
}

// Result 带类型标记的生成结果
type Result[T any] struct {
	Kind   Kind   `json:"kind"`
	Value  T      `json:"value"`
	Reason string `json:"reason,omitempty"`
}

// RecipeRequest 食谱生成请求
type RecipeRequest struct {
	Ingredients []string
	Servings    int
	BoxName     string
	Locale      string
}

// GreetingRequest 祝福语生成请求
type GreetingRequest struct {
	Occasion  string
	Recipient string
	Sender    string
	Tone      string
	Locale    string
}

// Generator 食谱与祝福语生成
type Generator interface {
	GenerateRecipe(ctx context.Context, req RecipeRequest) (Result[Recipe], error)
	GenerateGreeting(ctx context.Context, req GreetingRequest) (Result[Greeting], error)
}

// Service 基于 Completer 的生成服务，未配置时直接使用模板
type Service struct {
	completer Completer
	store     cache.Store
	cacheTTL  time.Duration
}

// NewService 创建生成服务，completer 为 nil 表示禁用远程生成
func NewService(completer Completer, store cache.Store, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Service{completer: completer, store: store, cacheTTL: cacheTTL}
}

// GenerateRecipe 生成食谱
func (s *Service) GenerateRecipe(ctx context.Context, req RecipeRequest) (Result[Recipe], error) {
	req = normalizeRecipeRequest(req)
	if len(req.Ingredients) == 0 {
		return Result[Recipe]{Kind: KindFailed}, ErrInvalidInput
	}
	key := recipeCachePre + cacheKey(req)
	var cached Recipe
	if ok, err := cache.GetJSON(ctx, s.store, key, &cached); err == nil && ok {
		return Result[Recipe]{Kind: KindParsed, Value: cached}, nil
	}

	if s.completer == nil {
		return Result[Recipe]{Kind: KindFallback, Value: FallbackRecipe(req), Reason: "disabled"}, nil
	}
	raw, err := s.completer.Complete(ctx, recipeSystemPrompt, recipePrompt(req))
	if err != nil {
		if ctx.Err() != nil {
			return Result[Recipe]{Kind: KindFailed, Reason: "cancelled"}, nil
		}
		logger.Warnw("ai_recipe_upstream_failed", "error", err)
		return Result[Recipe]{Kind: KindFallback, Value: FallbackRecipe(req), Reason: "upstream_error"}, nil
	}
	recipe, err := ParseRecipe(raw)
	if err != nil {
		logger.Warnw("ai_recipe_parse_failed", "error", err)
		return Result[Recipe]{Kind: KindFallback, Value: FallbackRecipe(req), Reason: "invalid_payload"}, nil
	}
	if err := cache.SetJSON(ctx, s.store, key, recipe, s.cacheTTL); err != nil {
		logger.Debugw("ai_recipe_cache_set_failed", "error", err)
	}
	return Result[Recipe]{Kind: KindParsed, Value: recipe}, nil
}

// GenerateGreeting 生成祝福语
func (s *Service) GenerateGreeting(ctx context.Context, req GreetingRequest) (Result[Greeting], error) {
	req = normalizeGreetingRequest(req)
	if req.Occasion == "" {
		return Result[Greeting]{Kind: KindFailed}, ErrInvalidInput
	}
	key := greetingCachePre + cacheKey(req)
	var cached Greeting
	if ok, err := cache.GetJSON(ctx, s.store, key, &cached); err == nil && ok {
		return Result[Greeting]{Kind: KindParsed, Value: cached}, nil
	}

	if s.completer == nil {
		return Result[Greeting]{Kind: KindFallback, Value: FallbackGreeting(req), Reason: "disabled"}, nil
	}
	raw, err := s.completer.Complete(ctx, greetingSystemPrompt, greetingPrompt(req))
	if err != nil {
		if ctx.Err() != nil {
			return Result[Greeting]{Kind: KindFailed, Reason: "cancelled"}, nil
		}
		logger.Warnw("ai_greeting_upstream_failed", "error", err)
		return Result[Greeting]{Kind: KindFallback, Value: FallbackGreeting(req), Reason: "upstream_error"}, nil
	}
	greeting, err := ParseGreeting(raw)
	if err != nil {
		logger.Warnw("ai_greeting_parse_failed", "error", err)
		return Result[Greeting]{Kind: KindFallback, Value: FallbackGreeting(req), Reason: "invalid_payload"}, nil
	}
	if greeting.Occasion == "" {
		greeting.Occasion = req.Occasion
	}
	if err := cache.SetJSON(ctx, s.store, key, greeting, s.cacheTTL); err != nil {
		logger.Debugw("ai_greeting_cache_set_failed", "error", err)
	}
	return Result[Greeting]{Kind: KindParsed, Value: greeting}, nil
}

// ParseRecipe 严格解析模型输出的食谱 JSON
func ParseRecipe(raw string) (Recipe, error) {
	var recipe Recipe
	if err := decodeStrict(raw, &recipe); err != nil {
		return Recipe{}, err
	}
	recipe.Title = strings.TrimSpace(recipe.Title)
	recipe.Ingredients = cleanList(recipe.Ingredients)
	recipe.Steps = cleanList(recipe.Steps)
	recipe.Tips = strings.TrimSpace(recipe.Tips)
	switch {
	case recipe.Title == "":
		return Recipe{}, fmt.Errorf("%w: title is required", ErrResponseInvalid)
	case len(recipe.Ingredients) == 0:
		return Recipe{}, fmt.Errorf("%w: ingredients are required", ErrResponseInvalid)
	case len(recipe.Steps) == 0:
		return Recipe{}, fmt.Errorf("%w: steps are required", ErrResponseInvalid)
	case recipe.Servings < 1 || recipe.Servings > maxServings:
		return Recipe{}, fmt.Errorf("%w: servings out of range", ErrResponseInvalid)
	}
	return recipe, nil
}

// ParseGreeting 严格解析模型输出的祝福语 JSON
func ParseGreeting(raw string) (Greeting, error) {
	var greeting Greeting
	if err := decodeStrict(raw, &greeting); err != nil {
		return Greeting{}, err
	}
	greeting.Message = strings.TrimSpace(greeting.Message)
	greeting.Occasion = strings.TrimSpace(greeting.Occasion)
	if greeting.Message == "" {
		return Greeting{}, fmt.Errorf("%w: message is required", ErrResponseInvalid)
	}
	return greeting, nil
}

// FallbackRecipe 内置模板食谱
func FallbackRecipe(req RecipeRequest) Recipe {
	req = normalizeRecipeRequest(req)
	title := "Simple " + strings.Join(lo.Slice(req.Ingredients, 0, 2), " & ") + " bowl"
	if req.BoxName != "" {
		title = req.BoxName + ": " + title
	}
	return Recipe{
		Title:       title,
		Servings:    req.Servings,
		Ingredients: req.Ingredients,
		Steps: []string{
			"Wash and prepare all ingredients.",
			"Cook the ingredients over medium heat until tender, seasoning to taste.",
			"Plate and serve warm.",
		},
	}
}

// FallbackGreeting 内置模板祝福语
func FallbackGreeting(req GreetingRequest) Greeting {
	req = normalizeGreetingRequest(req)
	recipient := lo.Ternary(req.Recipient == "", "friend", req.Recipient)
	message := fmt.Sprintf("Dear %s, wishing you a wonderful %s filled with joy.", recipient, req.Occasion)
	if req.Sender != "" {
		message += " With love, " + req.Sender + "."
	}
	return Greeting{Occasion: req.Occasion, Message: message}
}

func decodeStrict(raw string, dest interface{}) error {
	payload := extractJSONObject(raw)
	if payload == "" {
		return fmt.Errorf("%w: no json object", ErrResponseInvalid)
	}
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return nil
}

// extractJSONObject 去掉代码块围栏等包裹，取第一个对象
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func normalizeRecipeRequest(req RecipeRequest) RecipeRequest {
	req.Ingredients = cleanList(lo.Map(req.Ingredients, func(item string, _ int) string {
		return strings.ToLower(item)
	}))
	if len(req.Ingredients) > maxIngredients {
		req.Ingredients = req.Ingredients[:maxIngredients]
	}
	if req.Servings <= 0 {
		req.Servings = defaultServings
	}
	if req.Servings > maxServings {
		req.Servings = maxServings
	}
	req.BoxName = strings.TrimSpace(req.BoxName)
	req.Locale = strings.TrimSpace(req.Locale)
	return req
}

func normalizeGreetingRequest(req GreetingRequest) GreetingRequest {
	req.Occasion = strings.TrimSpace(req.Occasion)
	req.Recipient = strings.TrimSpace(req.Recipient)
	req.Sender = strings.TrimSpace(req.Sender)
	req.Tone = strings.TrimSpace(req.Tone)
	req.Locale = strings.TrimSpace(req.Locale)
	return req
}

func cleanList(items []string) []string {
	return lo.Uniq(lo.Compact(lo.Map(items, func(item string, _ int) string {
		return strings.TrimSpace(item)
	})))
}

func cacheKey(v interface{}) string {
	payload, _ := json.Marshal(v)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
