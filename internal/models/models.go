package models

import "time"

// ChatMessage represents a single conversation turn supplied by the client
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// EmailRequest is the body of POST /api/save-email
type EmailRequest struct {
	Email string `json:"email"`
}

// Lead represents a captured email address
type Lead struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Platform identifies the source of a submitted video URL
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
)

// AnalysisRequest is the body of POST /api/analyze-video
type AnalysisRequest struct {
	URL string `json:"url"`
}

// AnalysisResult is the outcome of a full video analysis run
type AnalysisResult struct {
	Analysis      string   `json:"analysis"`
	Platform      Platform `json:"platform"`
	HasTranscript bool     `json:"hasTranscript"`
	FrameCount    int      `json:"frameCount"`
}
