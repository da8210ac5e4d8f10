package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"studyflow/backend/internal/clock"
	apperrors "studyflow/backend/internal/errors"
	"studyflow/backend/internal/llm"
	"studyflow/backend/internal/llm/llmmock"
	"studyflow/backend/internal/model"
	"studyflow/backend/internal/session"
)

func newChatService(t *testing.T) (*ChatService, *llmmock.MockModel) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := llmmock.NewMockModel(ctrl)
	transcript := session.NewTranscript(clock.NewFake(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)))
	return NewChatService(m, nil, transcript), m
}

func TestAskStructuredAnswer(t *testing.T) {
	svc, m := newChatService(t)
	m.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Reply, error) {
			assert.Contains(t, req.Prompt, "What is osmosis?")
			return &llm.Reply{
				Structured: map[string]any{"answer": "Diffusion of water across a membrane."},
				Text:       "ignored",
			}, nil
		})

	answer, apiErr := svc.Ask(context.Background(), ChatInput{Query: " What is osmosis? "})
	require.Nil(t, apiErr)
	assert.Equal(t, "Diffusion of water across a membrane.", answer.Answer)

	messages := svc.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "What is osmosis?", messages[0].Content)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)
}

func TestAskFallsBackToText(t *testing.T) {
	svc, m := newChatService(t)
	m.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(&llm.Reply{Structured: map[string]any{"answer": ""}, Text: "Plain answer."}, nil)

	answer, apiErr := svc.Ask(context.Background(), ChatInput{Query: "Why?"})
	require.Nil(t, apiErr)
	assert.Equal(t, "Plain answer.", answer.Answer)
}

func TestAskRejectsBlankQuery(t *testing.T) {
	svc, _ := newChatService(t)

	answer, apiErr := svc.Ask(context.Background(), ChatInput{Query: "   "})
	require.Nil(t, answer)
	require.NotNil(t, apiErr)
	assert.True(t, apiErr.HasCode(apperrors.CodeValidation))
	assert.Equal(t, "Please enter a question.", apiErr.Message)
	assert.Empty(t, svc.Messages())
}

func TestAskRollsBackOnFailure(t *testing.T) {
	svc, m := newChatService(t)
	gomock.InOrder(
		m.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(&llm.Reply{Text: "First answer."}, nil),
		m.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout")),
		m.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(&llm.Reply{Text: "  "}, nil),
	)

	_, apiErr := svc.Ask(context.Background(), ChatInput{Query: "First?"})
	require.Nil(t, apiErr)
	before := svc.Messages()

	_, apiErr = svc.Ask(context.Background(), ChatInput{Query: "Second?"})
	require.NotNil(t, apiErr)
	assert.True(t, apiErr.HasCode(apperrors.CodeServiceUnavailable))
	assert.Equal(t, before, svc.Messages())

	_, apiErr = svc.Ask(context.Background(), ChatInput{Query: "Third?"})
	require.NotNil(t, apiErr)
	assert.True(t, apiErr.HasCode(apperrors.CodeGeneration))
	assert.Equal(t, "AI could not answer that question. Try rephrasing it.", apiErr.Message)
	assert.Equal(t, before, svc.Messages())
}

func TestAskWithoutTranscript(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := llmmock.NewMockModel(ctrl)
	svc := NewChatService(m, nil, nil)
	m.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(&llm.Reply{Text: "Yes."}, nil)

	answer, apiErr := svc.Ask(context.Background(), ChatInput{Query: "Is it?"})
	require.Nil(t, apiErr)
	assert.Equal(t, "Yes.", answer.Answer)
	assert.Empty(t, svc.Messages())
}
