package knowledge

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// persona is the fixed behavioral preamble sent to the model on every turn.
const persona = `You are ClipCoach, an experienced short-form video coach who has helped
hundreds of creators grow on YouTube Shorts, TikTok and Instagram Reels.

You give direct, practical advice about hooks, pacing, retention, storytelling
and platform algorithms. Keep answers concise and actionable. When you are not
sure about something, say so instead of guessing. Stay on the topic of content
creation; politely steer unrelated conversations back to it.`

// Load builds the full system instruction: the persona plus the contents of
// the knowledge document at path, if it can be read. A missing or unreadable
// document is not an error; the persona alone is returned.
func Load(path string, logger *zap.Logger) string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Knowledge base not loaded, using persona only",
			zap.Error(err),
			zap.String("path", path))
		return persona
	}

	logger.Info("Knowledge base loaded",
		zap.String("path", path),
		zap.Int("bytes", len(data)))
	return fmt.Sprintf("%s\n\n## Knowledge base\n\n%s", persona, string(data))
}
