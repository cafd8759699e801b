package analyzer

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/clipcoach/backend/internal/models"
	"github.com/clipcoach/backend/pkg/config"
)

// visionClient is the one method of the OpenAI client the analyzer needs.
type visionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Analyzer runs the download -> transcript -> probe -> frames -> vision
// pipeline for a single video URL per call.
type Analyzer struct {
	client visionClient
	model  string
	cfg    config.AnalyzerConfig
	run    commandRunner
	logger *zap.Logger
}

func NewAnalyzer(apiKey, visionModel string, cfg config.AnalyzerConfig, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client: openai.NewClient(apiKey),
		model:  visionModel,
		cfg:    cfg,
		run:    runCommand,
		logger: logger,
	}
}

// Analyze executes the full pipeline. The workspace is removed on every
// return path, success or failure.
func (a *Analyzer) Analyze(ctx context.Context, videoURL string) (*models.AnalysisResult, error) {
	if videoURL == "" {
		return nil, &ClientError{Message: "A video URL is required."}
	}
	platform, err := DetectPlatform(videoURL)
	if err != nil {
		return nil, err
	}

	ws, err := newWorkspace()
	if err != nil {
		return nil, err
	}
	defer ws.cleanup(a.logger)

	a.logger.Info("Starting video analysis",
		zap.String("session", ws.id),
		zap.String("platform", string(platform)),
		zap.String("url", videoURL))

	videoPath, err := a.download(ctx, ws, videoURL)
	if err != nil {
		return nil, err
	}

	transcript := a.fetchTranscript(ctx, ws, videoURL)

	duration := a.probeDuration(ctx, videoPath)

	frames, err := a.extractFrames(ctx, ws, videoPath, duration)
	if err != nil {
		return nil, err
	}

	analysis, err := a.critique(ctx, frames, transcript, platform)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Video analysis complete",
		zap.String("session", ws.id),
		zap.Int("frames", len(frames)),
		zap.Bool("transcript", transcript != ""))

	return &models.AnalysisResult{
		Analysis:      analysis,
		Platform:      platform,
		HasTranscript: transcript != "",
		FrameCount:    len(frames),
	}, nil
}

func (a *Analyzer) download(ctx context.Context, ws *workspace, videoURL string) (string, error) {
	format := fmt.Sprintf("best[height<=%d][ext=mp4]/best[height<=%d]/best",
		a.cfg.MaxHeight, a.cfg.MaxHeight)

	output, err := a.run(ctx, a.cfg.DownloadTimeout, a.cfg.YTDLPPath,
		"--no-playlist",
		"--no-warnings",
		"--max-filesize", a.cfg.MaxFileSize,
		"--match-filter", fmt.Sprintf("duration <= %d", a.cfg.MaxDuration),
		"-f", format,
		"-o", filepath.Join(ws.dir, "video.%(ext)s"),
		videoURL,
	)
	if err != nil {
		return "", err
	}

	path, err := ws.videoFile()
	if err != nil {
		// yt-dlp exits 0 when a filter skips the video, so the reason
		// only shows up in its output.
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(output))
	}
	return path, nil
}

// fetchTranscript tries to pull auto-generated English subtitles. Any
// failure leaves the transcript empty; the critique works without one.
func (a *Analyzer) fetchTranscript(ctx context.Context, ws *workspace, videoURL string) string {
	_, err := a.run(ctx, a.cfg.SubtitleTimeout, a.cfg.YTDLPPath,
		"--skip-download",
		"--write-auto-subs",
		"--sub-langs", "en.*",
		"--sub-format", "vtt",
		"-o", filepath.Join(ws.dir, "subs"),
		videoURL,
	)
	if err != nil {
		a.logger.Warn("Transcript fetch failed, continuing without one",
			zap.Error(err),
			zap.String("session", ws.id))
		return ""
	}

	matches, _ := filepath.Glob(filepath.Join(ws.dir, "*.vtt"))
	if len(matches) == 0 {
		return ""
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		a.logger.Warn("Failed to read subtitle file", zap.Error(err))
		return ""
	}
	return parseVTT(string(data), a.cfg.TranscriptMax)
}

// probeDuration reads the container duration, falling back to a default so
// a probe failure never blocks the pipeline.
func (a *Analyzer) probeDuration(ctx context.Context, videoPath string) float64 {
	fallback := float64(a.cfg.DefaultSeconds)

	output, err := a.run(ctx, a.cfg.FrameTimeout, a.cfg.FFprobePath,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if err != nil {
		a.logger.Warn("Duration probe failed, using default",
			zap.Error(err),
			zap.Float64("default", fallback))
		return fallback
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil || duration <= 0 {
		a.logger.Warn("Could not parse probed duration, using default",
			zap.String("output", strings.TrimSpace(output)),
			zap.Float64("default", fallback))
		return fallback
	}
	return duration
}

// frameTimestamps spreads count sample points evenly across the duration.
// The first is raised to 0.5s so the sample is never the literal first frame.
func frameTimestamps(duration float64, count int) []float64 {
	timestamps := make([]float64, count)
	slot := duration / float64(count)
	for i := range timestamps {
		ts := slot * float64(i)
		if i == 0 && ts < 0.5 {
			ts = 0.5
		}
		timestamps[i] = ts
	}
	return timestamps
}

// extractFrames grabs one scaled still per timestamp, all in parallel.
// Individual failures are tolerated; only zero usable frames is fatal.
func (a *Analyzer) extractFrames(ctx context.Context, ws *workspace, videoPath string, duration float64) ([]string, error) {
	timestamps := frameTimestamps(duration, a.cfg.FrameCount)

	var wg sync.WaitGroup
	for i, ts := range timestamps {
		wg.Add(1)
		go func(index int, seek float64) {
			defer wg.Done()

			outPath := filepath.Join(ws.framesDir, fmt.Sprintf("frame_%02d.jpg", index))
			_, err := a.run(ctx, a.cfg.FrameTimeout, a.cfg.FFmpegPath,
				"-ss", fmt.Sprintf("%.2f", seek),
				"-i", videoPath,
				"-frames:v", "1",
				"-vf", fmt.Sprintf("scale=%d:-2", a.cfg.FrameWidth),
				"-q:v", "2",
				"-y",
				outPath,
			)
			if err != nil {
				a.logger.Warn("Frame extraction failed",
					zap.Error(err),
					zap.Int("frame", index),
					zap.Float64("timestamp", seek))
			}
		}(i, ts)
	}
	wg.Wait()

	entries, err := os.ReadDir(ws.framesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frames directory: %w", err)
	}

	var frames []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".jpg") {
			frames = append(frames, filepath.Join(ws.framesDir, entry.Name()))
		}
	}
	// Name order keeps the prompt deterministic regardless of which
	// extraction finished first.
	sort.Strings(frames)

	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	return frames, nil
}

func (a *Analyzer) critique(ctx context.Context, frames []string, transcript string, platform models.Platform) (string, error) {
	content := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: buildCritiquePrompt(transcript, platform),
		},
	}

	for _, frame := range frames {
		data, err := os.ReadFile(frame)
		if err != nil {
			return "", fmt.Errorf("failed to read frame %s: %w", filepath.Base(frame), err)
		}
		content = append(content, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: content,
			},
		},
		MaxTokens: 1500,
	})
	if err != nil {
		return "", fmt.Errorf("vision model request failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("vision model returned an empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildCritiquePrompt(transcript string, platform models.Platform) string {
	transcriptSection := "No transcript was available for this video, so base your feedback on the frames alone."
	if transcript != "" {
		transcriptSection = fmt.Sprintf("Auto-generated transcript of the video:\n%s", transcript)
	}

	return fmt.Sprintf(`You are a short-form video coach. The attached images are still frames
sampled evenly from a %s video, in chronological order.

%s

Give the creator structured feedback with these sections:
1. Hook (first 2 seconds): does the opening frame stop the scroll?
2. Visuals: framing, lighting, text overlays, visual variety.
3. Structure and pacing: how the video progresses across the frames.
4. Strengths: what is already working.
5. Improvements: the three highest-impact changes to make.
6. Score: a single number out of 10.

Be specific and reference what you actually see in the frames.`, platform, transcriptSection)
}
