package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	apperrors "studyflow/backend/internal/errors"
	"studyflow/backend/internal/llm"
	"studyflow/backend/internal/model"
)

const (
	msgSubjectsRequired   = "At least one subject is required."
	msgTimeRequired       = "Available time must be at least 1 minute."
	msgPlanNotGenerated   = "AI could not generate a plan. Try different inputs."
	msgAIUnavailable      = "An unexpected error occurred while communicating with the AI. Please try again later."
	planOutputToolName    = "submit_study_plan"
	planOutputDescription = "Submit the generated daily study plan."
)

type PlanInput struct {
	Subjects             []string `json:"subjects"`
	AvailableTimeMinutes int      `json:"availableTimeMinutes"`
}

// rawPlan mirrors the output schema; durations may come back fractional.
type rawPlan struct {
	Plan []struct {
		Subject         string  `mapstructure:"subject"`
		DurationMinutes float64 `mapstructure:"durationMinutes"`
		Note            string  `mapstructure:"note"`
	} `mapstructure:"plan"`
}

type PlanService struct {
	model   llm.Model
	prompts *Prompts
}

func NewPlanService(m llm.Model, prompts *Prompts) *PlanService {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &PlanService{model: m, prompts: prompts}
}

// Generate asks the model for a plan. It makes at most one model call and has
// no side effects; the caller decides what to do with the plan.
func (s *PlanService) Generate(ctx context.Context, input PlanInput) (*model.StudyPlan, *apperrors.APIError) {
	input.Subjects = cleanSubjects(input.Subjects)

	var problems []string
	if len(input.Subjects) == 0 {
		problems = append(problems, msgSubjectsRequired)
	}
	if input.AvailableTimeMinutes < 1 {
		problems = append(problems, msgTimeRequired)
	}
	if len(problems) > 0 {
		return nil, apperrors.Validation(strings.Join(problems, " "), nil)
	}

	prompt, err := s.prompts.RenderPlan(input)
	if err != nil {
		slog.ErrorContext(ctx, "render plan prompt", "error", err)
		return nil, apperrors.Internal("failed to build plan prompt")
	}

	reply, err := s.model.Generate(ctx, llm.Request{
		System: planSystemPrompt,
		Prompt: prompt,
		Output: &llm.OutputSpec{
			Name:        planOutputToolName,
			Description: planOutputDescription,
			Schema:      planOutputSchema,
		},
	})
	if err != nil {
		slog.WarnContext(ctx, "plan generation failed", "error", err)
		return nil, apperrors.ServiceUnavailable(msgAIUnavailable)
	}
	if reply == nil {
		return nil, apperrors.Generation(msgPlanNotGenerated, nil)
	}

	var raw rawPlan
	if err := decodeOutput(planSchema, reply.Structured, reply.Text, &raw); err != nil {
		slog.WarnContext(ctx, "plan output rejected", "error", err)
		return nil, apperrors.Generation(msgPlanNotGenerated, nil)
	}

	plan := &model.StudyPlan{Plan: make([]model.PlanItem, 0, len(raw.Plan))}
	for i, item := range raw.Plan {
		subject := strings.TrimSpace(item.Subject)
		if subject == "" {
			slog.WarnContext(ctx, "plan output rejected", "error", "blank subject", "item", i)
			return nil, apperrors.Generation(msgPlanNotGenerated, nil)
		}
		plan.Plan = append(plan.Plan, model.PlanItem{
			Subject:         subject,
			DurationMinutes: wholeMinutes(item.DurationMinutes),
			Note:            strings.TrimSpace(item.Note),
		})
	}
	return plan, nil
}

// SplitSubjects turns "Math, History" into ["Math", "History"].
func SplitSubjects(values ...string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return cleanSubjects(out)
}

func cleanSubjects(subjects []string) []string {
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func wholeMinutes(minutes float64) int {
	rounded := int(math.Round(minutes))
	if rounded < 1 {
		return 1
	}
	return rounded
}
