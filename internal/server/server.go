package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/clipcoach/backend/internal/analyzer"
	"github.com/clipcoach/backend/internal/chat"
	"github.com/clipcoach/backend/internal/models"
	"github.com/clipcoach/backend/internal/storage"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Streamer produces an ordered stream of chat events for a conversation.
type Streamer interface {
	Stream(ctx context.Context, messages []models.ChatMessage) (<-chan chat.Event, error)
}

// VideoAnalyzer runs the full video analysis pipeline for one URL.
type VideoAnalyzer interface {
	Analyze(ctx context.Context, url string) (*models.AnalysisResult, error)
}

type Server struct {
	streamer Streamer
	analyzer VideoAnalyzer
	leads    storage.LeadStorage
	logger   *zap.Logger
	mux      *http.ServeMux
}

func New(streamer Streamer, videoAnalyzer VideoAnalyzer, leads storage.LeadStorage, logger *zap.Logger) *Server {
	s := &Server{
		streamer: streamer,
		analyzer: videoAnalyzer,
		leads:    leads,
		logger:   logger,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/save-email", s.handleSaveEmail)
	s.mux.HandleFunc("/api/chat", s.handleChat)
	s.mux.HandleFunc("/api/analyze-video", s.handleAnalyzeVideo)
	s.mux.HandleFunc("/health", s.handleHealth)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) handleSaveEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req models.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !emailPattern.MatchString(req.Email) {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Please enter a valid email address."})
		return
	}

	lead := &models.Lead{Email: req.Email, CreatedAt: time.Now().UTC()}
	if err := s.leads.SaveLead(r.Context(), lead); err != nil {
		// Losing a lead is not worth blocking the user flow over.
		s.logger.Error("Failed to save lead",
			zap.Error(err),
			zap.String("email", req.Email))
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "messages must be a non-empty array"})
		return
	}

	events, err := s.streamer.Stream(r.Context(), req.Messages)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "messages must be a non-empty array"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("Response writer does not support flushing")
		return
	}

	for event := range events {
		select {
		case <-r.Context().Done():
			// Client went away; stop writing and let the stream drain.
			return
		default:
		}

		switch {
		case event.Done:
			fmt.Fprint(w, "data: [DONE]\n\n")
			flusher.Flush()
			return
		case event.Err != nil:
			s.writeStreamEvent(w, map[string]string{"error": "The coach is unavailable right now. Please try again."})
			flusher.Flush()
		case event.Content != "":
			s.writeStreamEvent(w, map[string]string{"text": event.Content})
			flusher.Flush()
		}
	}
}

func (s *Server) writeStreamEvent(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal stream event", zap.Error(err))
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Server) handleAnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "A video URL is required."})
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req.URL)
	if err != nil {
		var clientErr *analyzer.ClientError
		if errors.As(err, &clientErr) {
			s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": clientErr.Message})
			return
		}

		s.logger.Error("Video analysis failed",
			zap.Error(err),
			zap.String("url", req.URL))
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": analyzer.UserMessage(err)})
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
