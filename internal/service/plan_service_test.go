package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apperrors "studyflow/backend/internal/errors"
	"studyflow/backend/internal/llm"
	"studyflow/backend/internal/llm/llmmock"
	"studyflow/backend/internal/model"
)

func newPlanService(t *testing.T) (*PlanService, *llmmock.MockModel) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := llmmock.NewMockModel(ctrl)
	return NewPlanService(m, nil), m
}

func TestGeneratePlanStructured(t *testing.T) {
	svc, m := newPlanService(t)

	m.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Reply, error) {
			require.NotNil(t, req.Output)
			assert.Equal(t, planOutputToolName, req.Output.Name)
			assert.Contains(t, req.Prompt, "Subjects: Math, History")
			assert.Contains(t, req.Prompt, "(minutes): 60")
			return &llm.Reply{Structured: map[string]any{
				"plan": []any{
					map[string]any{"subject": "Math", "durationMinutes": 35, "note": "Practice integrals"},
					map[string]any{"subject": "History", "durationMinutes": 25.0},
				},
			}}, nil
		})

	plan, apiErr := svc.Generate(context.Background(), PlanInput{
		Subjects:             []string{"Math", " History ", ""},
		AvailableTimeMinutes: 60,
	})
	require.Nil(t, apiErr)

	want := []model.PlanItem{
		{Subject: "Math", DurationMinutes: 35, Note: "Practice integrals"},
		{Subject: "History", DurationMinutes: 25},
	}
	assert.Equal(t, want, plan.Plan)
}

func TestGeneratePlanFromFencedText(t *testing.T) {
	svc, m := newPlanService(t)

	text := "```json\n{\"plan\":[{\"subject\":\"Biology\",\"durationMinutes\":29.6}]}\n```"
	m.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(&llm.Reply{Text: text}, nil)

	plan, apiErr := svc.Generate(context.Background(), PlanInput{
		Subjects:             []string{"Biology"},
		AvailableTimeMinutes: 30,
	})
	require.Nil(t, apiErr)
	require.Len(t, plan.Plan, 1)
	assert.Equal(t, 30, plan.Plan[0].DurationMinutes)
}

func TestGeneratePlanValidation(t *testing.T) {
	testCases := []struct {
		name    string
		input   PlanInput
		message string
	}{
		{
			name:    "no subjects",
			input:   PlanInput{Subjects: []string{" ", ""}, AvailableTimeMinutes: 60},
			message: "At least one subject is required.",
		},
		{
			name:    "no time",
			input:   PlanInput{Subjects: []string{"Math"}, AvailableTimeMinutes: 0},
			message: "Available time must be at least 1 minute.",
		},
		{
			name:    "both",
			input:   PlanInput{AvailableTimeMinutes: -5},
			message: "At least one subject is required. Available time must be at least 1 minute.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// no EXPECT: any model call fails the test
			svc, _ := newPlanService(t)

			plan, apiErr := svc.Generate(context.Background(), tc.input)
			require.Nil(t, plan)
			require.NotNil(t, apiErr)
			assert.True(t, apiErr.HasCode(apperrors.CodeValidation))
			assert.Equal(t, tc.message, apiErr.Message)
		})
	}
}

func TestGeneratePlanRejectsBadOutput(t *testing.T) {
	replies := map[string]*llm.Reply{
		"empty plan":        {Structured: map[string]any{"plan": []any{}}},
		"zero duration":     {Structured: map[string]any{"plan": []any{map[string]any{"subject": "Math", "durationMinutes": 0}}}},
		"blank subject":     {Structured: map[string]any{"plan": []any{map[string]any{"subject": "", "durationMinutes": 10}}}},
		"spaces subject":    {Structured: map[string]any{"plan": []any{map[string]any{"subject": "   ", "durationMinutes": 30}}}},
		"missing plan":      {Structured: map[string]any{"items": []any{}}},
		"not json":          {Text: "Here is your plan: study hard."},
		"nothing":           {},
		"duration as words": {Text: `{"plan":[{"subject":"Math","durationMinutes":"thirty"}]}`},
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			svc, m := newPlanService(t)
			m.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(reply, nil)

			plan, apiErr := svc.Generate(context.Background(), PlanInput{
				Subjects:             []string{"Math"},
				AvailableTimeMinutes: 30,
			})
			require.Nil(t, plan)
			require.NotNil(t, apiErr)
			assert.True(t, apiErr.HasCode(apperrors.CodeGeneration))
			assert.Equal(t, "AI could not generate a plan. Try different inputs.", apiErr.Message)
		})
	}
}

func TestGeneratePlanTransportFailure(t *testing.T) {
	svc, m := newPlanService(t)
	m.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	plan, apiErr := svc.Generate(context.Background(), PlanInput{
		Subjects:             []string{"Math"},
		AvailableTimeMinutes: 30,
	})
	require.Nil(t, plan)
	require.NotNil(t, apiErr)
	assert.True(t, apiErr.HasCode(apperrors.CodeServiceUnavailable))
	assert.Equal(t, "An unexpected error occurred while communicating with the AI. Please try again later.", apiErr.Message)
}

func TestSplitSubjects(t *testing.T) {
	assert.Equal(t, []string{"Math", "History", "Art"}, SplitSubjects("Math, History", " ,Art,"))
	assert.Empty(t, SplitSubjects(" , "))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1} "))
}
