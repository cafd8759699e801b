package chat

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/clipcoach/backend/internal/models"
)

func TestStreamRejectsEmptyConversation(t *testing.T) {
	coach := NewCoach("test-key", "test-model", 256, 0.7, "persona", zap.NewNop())

	if _, err := coach.Stream(context.Background(), nil); err == nil {
		t.Error("Stream(nil) expected error")
	}
	if _, err := coach.Stream(context.Background(), []models.ChatMessage{}); err == nil {
		t.Error("Stream(empty) expected error")
	}
}
