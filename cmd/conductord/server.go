package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tailored-agentic-units/conductor/conductor"
	"github.com/tailored-agentic-units/conductor/core/response"
)

// maxRequestBodySize bounds chat request bodies (1MB).
const maxRequestBodySize = 1 << 20

type server struct {
	conductor *conductor.Conductor

	// The conductor supports one in-flight request per session; HTTP is
	// concurrent, so requests are serialized here.
	mu sync.Mutex
}

func newServer(c *conductor.Conductor) *server {
	return &server{conductor: c}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/chat/ws", s.handleChatWS)
		r.Get("/history", s.handleGetHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Put("/system-prompt", s.handleSetSystemPrompt)
	})

	return r
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response     string         `json:"response"`
	Model        string         `json:"model,omitempty"`
	FinishReason string         `json:"finish_reason,omitempty"`
	Usage        response.Usage `json:"usage"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	s.mu.Lock()
	result, err := s.conductor.Run(r.Context(), req.Message)
	s.mu.Unlock()
	if err != nil {
		slog.Error("Chat request failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:     result.Response,
		Model:        result.Model,
		FinishReason: result.FinishReason,
		Usage:        result.Usage,
	})
}

func (s *server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.conductor.History())
}

func (s *server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.conductor.ClearHistory(r.Context())
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type systemPromptRequest struct {
	Prompt string `json:"prompt"`
}

func (s *server) handleSetSystemPrompt(w http.ResponseWriter, r *http.Request) {
	var req systemPromptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.conductor.SetSystemPrompt(req.Prompt)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// wsEvent is one frame of the websocket chat stream.
type wsEvent struct {
	Type     string          `json:"type"` // "chunk", "done", or "error"
	Content  string          `json:"content,omitempty"`
	Usage    *response.Usage `json:"usage,omitempty"`
	ErrorMsg string          `json:"error,omitempty"`
}

// handleChatWS streams completions over a websocket. Each client text frame
// is a chatRequest; the server answers with zero or more "chunk" frames
// followed by one "done" (or "error") frame.
func (s *server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Error("Websocket accept failed", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil &&
			websocket.CloseStatus(closeErr) == -1 {
			slog.Debug("Websocket close", "error", closeErr)
		}
	}()

	ctx := r.Context()
	for {
		var req chatRequest
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				slog.Debug("Websocket read failed", "error", err)
			}
			return
		}
		if err := json.Unmarshal(data, &req); err != nil || req.Message == "" {
			s.writeWS(ctx, ws, wsEvent{Type: "error", ErrorMsg: "expected {\"message\": ...}"})
			continue
		}

		onChunk := func(partial string) {
			s.writeWS(ctx, ws, wsEvent{Type: "chunk", Content: partial})
		}

		s.mu.Lock()
		result, err := s.conductor.RunStream(ctx, req.Message, onChunk)
		s.mu.Unlock()
		if err != nil {
			slog.Error("Streaming chat request failed", "error", err)
			s.writeWS(ctx, ws, wsEvent{Type: "error", ErrorMsg: err.Error()})
			continue
		}

		s.writeWS(ctx, ws, wsEvent{
			Type:    "done",
			Content: result.Response,
			Usage:   &result.Usage,
		})
	}
}

func (s *server) writeWS(ctx context.Context, ws *websocket.Conn, event wsEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal websocket event", "error", err)
		return
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("Websocket write failed", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
