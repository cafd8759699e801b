package analyzer

import (
	"errors"
	"strings"
)

// ClientError marks a failure caused by the caller's input. The server maps
// these to 400 responses; everything else becomes a classified 500.
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ErrNoFrames is returned when not a single frame could be extracted.
var ErrNoFrames = errors.New("could not extract frames from video")

// UserMessage classifies a pipeline error into one of a small set of
// user-facing messages. Technical detail stays in the server log.
func UserMessage(err error) string {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Message
	}
	if errors.Is(err, ErrNoFrames) {
		return "Could not extract frames from this video."
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "private"):
		return "This video is private and cannot be analyzed."
	case strings.Contains(msg, "duration"), strings.Contains(msg, "max-filesize"):
		return "This video is too long to analyze. Please submit a clip under 20 minutes."
	case strings.Contains(msg, "unavailable"):
		return "This video is unavailable. It may have been removed or restricted."
	default:
		return "Could not analyze this video. Please check the URL and try again."
	}
}
