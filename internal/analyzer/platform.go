package analyzer

import (
	"net/url"
	"strings"

	"github.com/clipcoach/backend/internal/models"
)

const unsupportedPlatformMessage = "Unsupported video URL. Please submit a YouTube Shorts, TikTok, or Instagram Reels link."

// DetectPlatform classifies a video URL by its host domain.
func DetectPlatform(rawURL string) (models.Platform, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", &ClientError{Message: unsupportedPlatformMessage}
	}

	host := strings.ToLower(u.Host)
	switch {
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtu.be"):
		return models.PlatformYouTube, nil
	case strings.Contains(host, "tiktok.com"):
		return models.PlatformTikTok, nil
	case strings.Contains(host, "instagram.com"):
		return models.PlatformInstagram, nil
	}
	return "", &ClientError{Message: unsupportedPlatformMessage}
}
