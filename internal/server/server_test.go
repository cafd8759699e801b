package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/clipcoach/backend/internal/analyzer"
	"github.com/clipcoach/backend/internal/chat"
	"github.com/clipcoach/backend/internal/models"
	"github.com/clipcoach/backend/internal/storage"
)

type fakeStreamer struct {
	events []chat.Event
	err    error
}

func (f *fakeStreamer) Stream(ctx context.Context, messages []models.ChatMessage) (<-chan chat.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan chat.Event, len(f.events))
	for _, e := range f.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

type fakeAnalyzer struct {
	result *models.AnalysisResult
	err    error
	gotURL string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, url string) (*models.AnalysisResult, error) {
	f.gotURL = url
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type failingLeads struct{}

func (failingLeads) SaveLead(ctx context.Context, lead *models.Lead) error {
	return errors.New("disk full")
}

func (failingLeads) Close() error { return nil }

func newTestServer(streamer Streamer, va VideoAnalyzer, leads storage.LeadStorage) *Server {
	if streamer == nil {
		streamer = &fakeStreamer{}
	}
	if va == nil {
		va = &fakeAnalyzer{}
	}
	if leads == nil {
		leads = storage.NewMemoryStorage()
	}
	return New(streamer, va, leads, zap.NewNop())
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSaveEmailRejectsInvalidAddresses(t *testing.T) {
	invalid := []string{
		"not-an-email",
		"missing-at.example.com",
		"user@nodomain",
		"user@ spaces.com",
		"",
	}

	for _, email := range invalid {
		t.Run(email, func(t *testing.T) {
			leads := storage.NewMemoryStorage()
			srv := newTestServer(nil, nil, leads)

			body, _ := json.Marshal(models.EmailRequest{Email: email})
			rec := postJSON(t, srv.Handler(), "/api/save-email", string(body))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if n := len(leads.Leads()); n != 0 {
				t.Errorf("%d leads stored for invalid email", n)
			}
		})
	}
}

func TestSaveEmailStoresValidAddress(t *testing.T) {
	leads := storage.NewMemoryStorage()
	srv := newTestServer(nil, nil, leads)

	rec := postJSON(t, srv.Handler(), "/api/save-email", `{"email":"creator@example.com"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["success"] {
		t.Errorf("success = false, want true")
	}

	stored := leads.Leads()
	if len(stored) != 1 {
		t.Fatalf("stored %d leads, want 1", len(stored))
	}
	if stored[0].Email != "creator@example.com" {
		t.Errorf("stored email = %q", stored[0].Email)
	}
	if stored[0].CreatedAt.IsZero() {
		t.Errorf("stored lead has no timestamp")
	}
}

func TestSaveEmailStorageFailureStillReportsSuccess(t *testing.T) {
	srv := newTestServer(nil, nil, failingLeads{})

	rec := postJSON(t, srv.Handler(), "/api/save-email", `{"email":"creator@example.com"}`)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite storage failure", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "true") {
		t.Errorf("body = %q, want success true", rec.Body.String())
	}
}

func TestChatRejectsEmptyMessages(t *testing.T) {
	for _, body := range []string{`{}`, `{"messages":[]}`, `not json`} {
		rec := postJSON(t, newTestServer(nil, nil, nil).Handler(), "/api/chat", body)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); strings.Contains(ct, "event-stream") {
			t.Errorf("body %q: stream opened for invalid input", body)
		}
	}
}

func TestChatStreamsFragmentsInOrder(t *testing.T) {
	streamer := &fakeStreamer{events: []chat.Event{
		{Content: "Hello"},
		{Content: " there"},
		{Done: true},
	}}
	srv := newTestServer(streamer, nil, nil)

	rec := postJSON(t, srv.Handler(), "/api/chat", `{"messages":[{"role":"user","content":"hi"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := rec.Body.String()
	frames := []string{
		`data: {"text":"Hello"}`,
		`data: {"text":" there"}`,
		`data: [DONE]`,
	}
	last := -1
	for _, frame := range frames {
		idx := strings.Index(body, frame)
		if idx == -1 {
			t.Fatalf("frame %q missing from body %q", frame, body)
		}
		if idx < last {
			t.Errorf("frame %q out of order in body %q", frame, body)
		}
		last = idx
	}
	if !strings.HasSuffix(strings.TrimSpace(body), "[DONE]") {
		t.Errorf("stream not terminated by [DONE]: %q", body)
	}
}

func TestChatUpstreamErrorDeliveredInBand(t *testing.T) {
	streamer := &fakeStreamer{events: []chat.Event{
		{Err: errors.New("model exploded")},
		{Done: true},
	}}
	srv := newTestServer(streamer, nil, nil)

	rec := postJSON(t, srv.Handler(), "/api/chat", `{"messages":[{"role":"user","content":"hi"}]}`)

	// The stream is already committed, so the status stays 200.
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"error"`) {
		t.Errorf("no in-band error event in %q", body)
	}
	if strings.Contains(body, "model exploded") {
		t.Errorf("internal error detail leaked to client: %q", body)
	}
	if !strings.Contains(body, "data: [DONE]") {
		t.Errorf("error stream not terminated by [DONE]: %q", body)
	}
}

func TestAnalyzeVideoRejectsClientErrors(t *testing.T) {
	fa := &fakeAnalyzer{err: &analyzer.ClientError{Message: "Unsupported video URL. Please submit a YouTube Shorts, TikTok, or Instagram Reels link."}}
	srv := newTestServer(nil, fa, nil)

	rec := postJSON(t, srv.Handler(), "/api/analyze-video", `{"url":"https://vimeo.com/1"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	for _, platform := range []string{"YouTube", "TikTok", "Instagram"} {
		if !strings.Contains(rec.Body.String(), platform) {
			t.Errorf("guidance message should name %s: %q", platform, rec.Body.String())
		}
	}
}

func TestAnalyzeVideoClassifiesPipelineErrors(t *testing.T) {
	fa := &fakeAnalyzer{err: fmt.Errorf("download: %w", errors.New("yt-dlp failed: ERROR: Video unavailable"))}
	srv := newTestServer(nil, fa, nil)

	rec := postJSON(t, srv.Handler(), "/api/analyze-video", `{"url":"https://youtu.be/abc"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unavailable") {
		t.Errorf("body = %q, want classified unavailable message", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "yt-dlp") {
		t.Errorf("internal detail leaked: %q", rec.Body.String())
	}
}

func TestAnalyzeVideoZeroFramesIsServerError(t *testing.T) {
	fa := &fakeAnalyzer{err: analyzer.ErrNoFrames}
	srv := newTestServer(nil, fa, nil)

	rec := postJSON(t, srv.Handler(), "/api/analyze-video", `{"url":"https://youtu.be/abc"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "extract frames") {
		t.Errorf("body = %q, want frame extraction message", rec.Body.String())
	}
}

func TestAnalyzeVideoSuccess(t *testing.T) {
	fa := &fakeAnalyzer{result: &models.AnalysisResult{
		Analysis:      "Score: 8/10",
		Platform:      models.PlatformYouTube,
		HasTranscript: true,
		FrameCount:    6,
	}}
	srv := newTestServer(nil, fa, nil)

	rec := postJSON(t, srv.Handler(), "/api/analyze-video", `{"url":"https://youtu.be/abc"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fa.gotURL != "https://youtu.be/abc" {
		t.Errorf("analyzer got url %q", fa.gotURL)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.FrameCount != 6 || !result.HasTranscript || result.Platform != models.PlatformYouTube {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestEndpointsRejectNonPost(t *testing.T) {
	srv := newTestServer(nil, nil, nil)

	for _, path := range []string{"/api/save-email", "/api/chat", "/api/analyze-video"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s status = %d, want 405", path, rec.Code)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
