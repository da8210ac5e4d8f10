package service

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const planSystemPrompt = `You are an AI study plan generator. You take a list of subjects and the time a student has available today and produce a daily study plan that maximizes learning effectiveness. Use the Pomodoro technique and spaced practice: prefer focused blocks of 20 to 50 minutes and break each subject down into smaller concrete tasks.

The plan must be a JSON object of this shape:
{
  "plan": [
    {"subject": "Math", "durationMinutes": 30, "note": "Solve exercises 1-10 of chapter 3"}
  ]
}

Rules:
- Every item needs a non-empty subject and a durationMinutes greater than zero.
- note is optional and names one concrete activity.
- The durations should add up to the available time.`

const defaultPlanPrompt = `Subjects: {{join .Subjects ", "}}
Available study time (minutes): {{.AvailableTimeMinutes}}

Write the study plan.`

const chatSystemPrompt = `You are a helpful study assistant. A student asks a question about a subject they are studying. Give a concise and accurate answer and include short examples where they help understanding.`

const defaultChatPrompt = `Question: {{.Query}}

Your concise answer with examples:`

var promptFuncs = template.FuncMap{
	"join": strings.Join,
}

// Prompts holds the compiled user prompt templates. The system prompts are
// fixed; the user-facing part can be replaced from configuration.
type Prompts struct {
	plan *template.Template
	chat *template.Template
}

// NewPrompts compiles the plan and chat templates. Blank text selects the
// built-in default.
func NewPrompts(planText, chatText string) (*Prompts, error) {
	if strings.TrimSpace(planText) == "" {
		planText = defaultPlanPrompt
	}
	if strings.TrimSpace(chatText) == "" {
		chatText = defaultChatPrompt
	}

	plan, err := template.New("plan").Funcs(promptFuncs).Option("missingkey=error").Parse(planText)
	if err != nil {
		return nil, fmt.Errorf("parse plan prompt: %w", err)
	}
	chat, err := template.New("chat").Funcs(promptFuncs).Option("missingkey=error").Parse(chatText)
	if err != nil {
		return nil, fmt.Errorf("parse chat prompt: %w", err)
	}
	return &Prompts{plan: plan, chat: chat}, nil
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() *Prompts {
	p, err := NewPrompts("", "")
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Prompts) RenderPlan(input PlanInput) (string, error) {
	return render(p.plan, input)
}

func (p *Prompts) RenderChat(input ChatInput) (string, error) {
	return render(p.chat, input)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
