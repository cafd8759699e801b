package analyzer

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUserMessageClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "private video",
			err:  errors.New("yt-dlp failed: exit status 1: ERROR: Private video. Sign in if you've been granted access"),
			want: "private",
		},
		{
			name: "duration filter",
			err:  errors.New("no video file was produced: video does not pass filter (duration <= 1200), skipping"),
			want: "too long",
		},
		{
			name: "file size cap",
			err:  errors.New("yt-dlp failed: File is larger than max-filesize (200000000 bytes > 157286400 bytes)"),
			want: "too long",
		},
		{
			name: "unavailable video",
			err:  errors.New("yt-dlp failed: ERROR: Video unavailable"),
			want: "unavailable",
		},
		{
			name: "anything else",
			err:  errors.New("ffmpeg failed: exit status 1"),
			want: "Could not analyze",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserMessage(tt.err)
			if !strings.Contains(got, tt.want) {
				t.Errorf("UserMessage(%v) = %q, want it to contain %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestUserMessagePassesThroughClientErrors(t *testing.T) {
	clientErr := &ClientError{Message: "A video URL is required."}
	wrapped := fmt.Errorf("validate: %w", clientErr)

	if got := UserMessage(wrapped); got != clientErr.Message {
		t.Errorf("UserMessage = %q, want %q", got, clientErr.Message)
	}
}

func TestUserMessageNoFrames(t *testing.T) {
	got := UserMessage(fmt.Errorf("extract: %w", ErrNoFrames))
	if !strings.Contains(got, "extract frames") {
		t.Errorf("UserMessage(ErrNoFrames) = %q, want a frame extraction message", got)
	}
}
