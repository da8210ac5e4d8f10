package service

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestRenderPlanPrompt(t *testing.T) {
	prompt, err := DefaultPrompts().RenderPlan(PlanInput{
		Subjects:             []string{"Math", "History"},
		AvailableTimeMinutes: 60,
	})
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "plan_prompt", []byte(prompt))
}

func TestCustomChatPrompt(t *testing.T) {
	prompts, err := NewPrompts("", "Q: {{.Query}}")
	require.NoError(t, err)

	prompt, err := prompts.RenderChat(ChatInput{Query: "What is osmosis?"})
	require.NoError(t, err)
	require.Equal(t, "Q: What is osmosis?", prompt)
}

func TestInvalidPromptTemplate(t *testing.T) {
	_, err := NewPrompts("{{.Subjects", "")
	require.ErrorContains(t, err, "parse plan prompt")
}
