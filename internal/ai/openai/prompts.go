package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DukeRupert/mindpilot/internal/ai"
)

const chatSystemPrompt = `You are MindPilot AI, a friendly and intelligent personal life assistant. You help users manage their tasks, finances, wellness, and personal goals.

Your personality:
- Warm, supportive, and encouraging
- Concise but thorough
- Action-oriented: always suggest next steps
- Personalized: reference the user's context when available

Current context: %s
%s
Respond in a helpful, human-like manner. Keep responses focused and actionable.`

const (
	suggestSystemPrompt  = "You are a productivity assistant that suggests actionable tasks. Respond only with valid JSON."
	spendingSystemPrompt = "You are a friendly financial advisor providing spending insights."
	wellnessSystemPrompt = "You are a supportive wellness coach. Be warm and encouraging."
	planSystemPrompt     = "You are a goal-setting coach. Create realistic, actionable plans. Respond only with valid JSON."
)

// maxSpendingItems bounds the transactions sent for analysis.
const maxSpendingItems = 20

func buildChatSystemPrompt(params ai.ChatParams) string {
	context := params.Context
	if context == "" {
		context = "general"
	}
	history := ""
	if params.History != "" {
		history = "Recent user activity: " + params.History + "\n"
	}
	return fmt.Sprintf(chatSystemPrompt, context, history)
}

func buildSuggestTasksPrompt(params ai.SuggestTasksParams) string {
	return fmt.Sprintf(`Based on the user's existing tasks and goals, suggest 3 new tasks that would help them be more productive today.

Existing tasks: %s
User goals: %s
Time of day: %s

Respond with a JSON object {"tasks": [...]} holding exactly 3 task objects, each with:
- title: short task title
- description: brief description
- priority: "high", "medium", or "low"`,
		joinOrNone(params.Tasks), joinOrNone(params.Goals), params.TimeOfDay)
}

func buildSpendingPrompt(params ai.SpendingParams) (string, error) {
	items := params.Transactions
	if len(items) > maxSpendingItems {
		items = items[:maxSpendingItems]
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`Analyze these spending transactions and provide brief insights:

%s

Provide:
1. Top spending categories
2. Any concerning patterns
3. One actionable tip to save money

Keep the response under 150 words.`, data), nil
}

func buildWellnessPrompt(params ai.WellnessParams) (string, error) {
	data, err := json.Marshal(params.Entries)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`Based on these recent wellness check-ins, provide a brief personalized insight:

%s

Include:
1. A pattern you noticed
2. One specific wellness tip
3. An encouraging note

Keep it warm and under 100 words.`, data), nil
}

func buildGoalPlanPrompt(params ai.GoalPlanParams) string {
	return fmt.Sprintf(`Create a 4-week action plan for this goal:

Goal: %s
Description: %s

Respond with a JSON object {"plan": [...]} holding 4 week objects, each with:
- week: week number (1-4)
- action: specific action to take that week
- milestone: what success looks like`, params.Title, params.Description)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
