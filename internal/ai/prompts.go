package ai

import (
	"fmt"
	"strings"
)

const recipeSystemPrompt = `You are a home cooking assistant for a food gift box shop.
Reply with a single JSON object and nothing else, using exactly these fields:
{"title": string, "servings": integer, "ingredients": [string], "steps": [string], "tips": string}`

const greetingSystemPrompt = `You write short greeting card messages for gift boxes.
Reply with a single JSON object and nothing else, using exactly these fields:
{"occasion": string, "message": string}`

func recipePrompt(req RecipeRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a recipe for %d servings using: %s.", req.Servings, strings.Join(req.Ingredients, ", "))
	if req.BoxName != "" {
		fmt.Fprintf(&b, " The ingredients come from the %q box.", req.BoxName)
	}
	if req.Locale != "" {
		fmt.Fprintf(&b, " Write in language %s.", req.Locale)
	}
	return b.String()
}

func greetingPrompt(req GreetingRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a greeting for %s.", req.Occasion)
	if req.Recipient != "" {
		fmt.Fprintf(&b, " Recipient: %s.", req.Recipient)
	}
	if req.Sender != "" {
		fmt.Fprintf(&b, " Sender: %s.", req.Sender)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, " Tone: %s.", req.Tone)
	}
	if req.Locale != "" {
		fmt.Fprintf(&b, " Write in language %s.", req.Locale)
	}
	return b.String()
}
