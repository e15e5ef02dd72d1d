package api

import (
	"context"
	"strings"
	"sync"

	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/models"
)

// ChatSession keeps the multi-turn history for the direct backend
type ChatSession struct {
	client            *GeminiClient
	mu                sync.RWMutex // Protects history
	systemInstruction string
	history           []Content
}

// StartChat creates a new chat session with a fixed system instruction
func (c *GeminiClient) StartChat(systemInstruction string) *ChatSession {
	return &ChatSession{
		client:            c,
		systemInstruction: systemInstruction,
	}
}

// copyHistory creates a copy of the history slice to avoid races
func copyHistory(h []Content) []Content {
	if h == nil {
		return nil
	}
	result := make([]Content, len(h))
	copy(result, h)
	return result
}

func (s *ChatSession) options() *GenerateOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &GenerateOptions{
		SystemInstruction: s.systemInstruction,
		History:           copyHistory(s.history),
	}
}

// Send sends a message in the chat session and records the exchange
func (s *ChatSession) Send(ctx context.Context, message string) (string, error) {
	return s.exchange(ctx, message, nil)
}

// SendStream sends a message and forwards reply text as it arrives
func (s *ChatSession) SendStream(ctx context.Context, message string, onChunk func(string)) (string, error) {
	return s.exchange(ctx, message, onChunk)
}

// exchange records the reply unless ctx ended before it arrived
func (s *ChatSession) exchange(ctx context.Context, message string, onChunk func(string)) (string, error) {
	reply, err := s.Reply(ctx, message, onChunk)
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", apierrors.NewTimeoutError(ctx.Err())
	}
	s.Record(message, reply)
	return reply, nil
}

// Reply generates a reply with the recorded history as context and leaves
// the history untouched. onChunk may be nil.
func (s *ChatSession) Reply(ctx context.Context, message string, onChunk func(string)) (string, error) {
	var (
		output *models.GenerateOutput
		err    error
	)
	if onChunk != nil {
		output, err = s.client.StreamContent(ctx, message, s.options(), onChunk)
	} else {
		output, err = s.client.GenerateContent(ctx, message, s.options())
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(output.Text) == "" {
		return "", apierrors.NewEmptyReplyError("")
	}
	return output.Text, nil
}

// Record appends a completed exchange to the history
func (s *ChatSession) Record(message, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		Content{Role: string(models.RoleUser), Parts: []Part{{Text: message}}},
		Content{Role: string(models.RoleModel), Parts: []Part{{Text: reply}}},
	)
}

// History returns a copy of the recorded exchanges
func (s *ChatSession) History() []Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyHistory(s.history)
}

// Reset clears the recorded exchanges
func (s *ChatSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
