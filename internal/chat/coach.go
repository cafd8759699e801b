package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/clipcoach/backend/internal/models"
)

// Event is one unit of a streamed model response. Exactly one terminal event
// is emitted per stream: either Done, or Err followed by Done.
type Event struct {
	Content string
	Err     error
	Done    bool
}

// Coach streams coaching replies from the hosted model with the process-wide
// system instruction prepended to every conversation.
type Coach struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	instruction string
	logger      *zap.Logger
}

func NewCoach(apiKey, model string, maxTokens int, temperature float64, instruction string, logger *zap.Logger) *Coach {
	return &Coach{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		instruction: instruction,
		logger:      logger,
	}
}

// Stream opens a streaming completion and relays text deltas in model order.
// The returned channel is closed after the terminal event.
func (c *Coach) Stream(ctx context.Context, messages []models.ChatMessage) (<-chan Event, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: c.instruction,
	})
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		MaxTokens:   c.maxTokens,
		Temperature: float32(c.temperature),
		Stream:      true,
	}

	events := make(chan Event)
	go func() {
		defer close(events)

		// send never blocks past the caller going away
		send := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		stream, err := c.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			c.logger.Error("Failed to open completion stream", zap.Error(err))
			send(Event{Err: err})
			send(Event{Done: true})
			return
		}
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				send(Event{Done: true})
				return
			}
			if err != nil {
				if ctx.Err() == nil {
					c.logger.Error("Stream receive failed", zap.Error(err))
				}
				send(Event{Err: err})
				send(Event{Done: true})
				return
			}

			if len(response.Choices) > 0 {
				if content := response.Choices[0].Delta.Content; content != "" {
					if !send(Event{Content: content}) {
						return
					}
				}
			}
		}
	}()

	return events, nil
}
