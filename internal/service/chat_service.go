package service

import (
	"context"
	"log/slog"
	"strings"

	apperrors "studyflow/backend/internal/errors"
	"studyflow/backend/internal/llm"
	"studyflow/backend/internal/model"
	"studyflow/backend/internal/session"
)

const (
	msgQueryRequired   = "Please enter a question."
	msgAnswerMissing   = "AI could not answer that question. Try rephrasing it."
	chatOutputToolName = "submit_answer"
)

type ChatInput struct {
	Query string `json:"query"`
}

type ChatAnswer struct {
	Answer string `json:"answer" mapstructure:"answer"`
}

// ChatService answers study questions. When it has a transcript, the question
// is recorded before the model call and dropped again if the call fails.
type ChatService struct {
	model      llm.Model
	prompts    *Prompts
	transcript *session.Transcript
}

func NewChatService(m llm.Model, prompts *Prompts, transcript *session.Transcript) *ChatService {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &ChatService{model: m, prompts: prompts, transcript: transcript}
}

func (s *ChatService) Ask(ctx context.Context, input ChatInput) (*ChatAnswer, *apperrors.APIError) {
	input.Query = strings.TrimSpace(input.Query)
	if input.Query == "" {
		return nil, apperrors.Validation(msgQueryRequired, nil)
	}

	var pending *model.ChatMessage
	if s.transcript != nil {
		msg := s.transcript.Append(model.RoleUser, input.Query)
		pending = &msg
	}

	answer, apiErr := s.ask(ctx, input)
	if apiErr != nil {
		if pending != nil {
			s.transcript.Remove(pending.ID)
		}
		return nil, apiErr
	}

	if s.transcript != nil {
		s.transcript.Append(model.RoleAssistant, answer.Answer)
	}
	return answer, nil
}

// Messages returns the transcript, oldest first.
func (s *ChatService) Messages() []model.ChatMessage {
	if s.transcript == nil {
		return []model.ChatMessage{}
	}
	return s.transcript.Messages()
}

func (s *ChatService) ask(ctx context.Context, input ChatInput) (*ChatAnswer, *apperrors.APIError) {
	prompt, err := s.prompts.RenderChat(input)
	if err != nil {
		slog.ErrorContext(ctx, "render chat prompt", "error", err)
		return nil, apperrors.Internal("failed to build chat prompt")
	}

	reply, err := s.model.Generate(ctx, llm.Request{
		System: chatSystemPrompt,
		Prompt: prompt,
		Output: &llm.OutputSpec{
			Name:        chatOutputToolName,
			Description: "Submit the answer to the student's question.",
			Schema:      chatOutputSchema,
		},
	})
	if err != nil {
		slog.WarnContext(ctx, "chat request failed", "error", err)
		return nil, apperrors.ServiceUnavailable(msgAIUnavailable)
	}
	if reply == nil {
		return nil, apperrors.Generation(msgAnswerMissing, nil)
	}

	if reply.Structured != nil {
		var answer ChatAnswer
		if err := decodeOutput(chatSchema, reply.Structured, "", &answer); err == nil {
			answer.Answer = strings.TrimSpace(answer.Answer)
			if answer.Answer != "" {
				return &answer, nil
			}
		} else {
			slog.DebugContext(ctx, "structured chat answer rejected", "error", err)
		}
	}

	text := strings.TrimSpace(reply.Text)
	if text == "" {
		return nil, apperrors.Generation(msgAnswerMissing, nil)
	}
	return &ChatAnswer{Answer: text}, nil
}
