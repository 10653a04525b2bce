// Package httpapi implements the external HTTP surface described in
// spec §6: POST /analyze and GET /health. It is the only place apierr.Kind
// values are translated into status codes; the pipeline and its stages do
// not import net/http.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeatlas-dev/codeatlas/internal/apierr"
	"github.com/codeatlas-dev/codeatlas/internal/config"
	"github.com/codeatlas-dev/codeatlas/internal/pipeline"
)

// Server wires the analysis pipeline to an HTTP handler.
type Server struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewServer builds a Server bound to cfg, logging through logger.
func NewServer(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, logger: logger}
}

// Handler builds the CORS-wrapped mux serving /analyze and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleAnalyze(w, r)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleHealth(w, r)
	})
	return withCORS(mux)
}

type analyzeRequest struct {
	RepoURL string `json:"repoUrl"`
	Branch  string `json:"branch,omitempty"`
}

type errorBody struct {
	Code              string   `json:"code"`
	Message           string   `json:"message"`
	DetectedLanguages []string `json:"detectedLanguages,omitempty"`
	FoundFiles        []string `json:"foundFiles,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.New(apierr.BadRequest, "malformed request body"))
		return
	}
	if strings.TrimSpace(req.RepoURL) == "" {
		writeError(w, apierr.New(apierr.BadRequest, "repoUrl is required"))
		return
	}

	rep, err := pipeline.Run(r.Context(), s.cfg, pipeline.Request{RepoURL: req.RepoURL, Branch: req.Branch})
	if err != nil {
		s.logger.Error("analysis failed", "repoUrl", req.RepoURL, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "codeatlas",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"message":   "codeatlas is running",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	apiErr, ok := apierr.As(err)
	if !ok {
		apiErr = apierr.Wrap(apierr.InternalError, "unclassified failure", err)
	}
	writeJSON(w, apierr.StatusCode(apiErr.Kind), errorBody{
		Code:              string(apiErr.Kind),
		Message:           apiErr.Message,
		DetectedLanguages: apiErr.DetectedLanguages,
		FoundFiles:        apiErr.FoundFiles,
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
