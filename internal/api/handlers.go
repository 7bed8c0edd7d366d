package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/FocuswithJustin/hindilts/core/cache"
	"github.com/FocuswithJustin/hindilts/internal/logging"
)

const (
	// maxWordsPerRequest bounds /phonemise and /jobs request bodies.
	maxWordsPerRequest = 10000
	maxBodyBytes       = 1 << 20
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Transcription is the result for one word.
type Transcription struct {
	Word   string `json:"word"`
	Phones string `json:"phones,omitempty"`
	Error  string `json:"error,omitempty"`
}

// WordsRequest is the body of POST /phonemise and POST /jobs.
type WordsRequest struct {
	Words []string `json:"words"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string       `json:"status"`
	Version string       `json:"version"`
	Uptime  string       `json:"uptime"`
	Lexicon LexiconInfo  `json:"lexicon"`
	Cache   *CacheHealth `json:"cache,omitempty"`
	Jobs    int          `json:"jobs"`
	Clients int          `json:"websocket_clients"`
}

// CacheHealth is the transcription cache section of HealthInfo.
type CacheHealth struct {
	cache.Stats
	HitRate float64 `json:"hit_rate"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"name":    "hindilts",
		"version": s.cfg.Version,
		"endpoints": []string{
			"GET /health",
			"GET /phonemise?word=...",
			"POST /phonemise",
			"GET /jobs",
			"POST /jobs",
			"GET /jobs/{id}",
			"DELETE /jobs/{id}",
			"GET /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := HealthInfo{
		Status:  "ok",
		Version: s.cfg.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Lexicon: s.lexicon,
		Jobs:    s.jobs.Len(),
		Clients: s.hub.ClientCount(),
	}
	if sp, ok := s.phonemiser.(statsProvider); ok {
		stats := sp.Stats()
		info.Cache = &CacheHealth{Stats: stats, HitRate: stats.HitRate()}
	}
	respond(w, http.StatusOK, info)
}

func (s *Server) handlePhonemise(w http.ResponseWriter, r *http.Request) {
	var words []string
	switch r.Method {
	case http.MethodGet:
		words = r.URL.Query()["word"]
	case http.MethodPost:
		var ok bool
		if words, ok = decodeWords(w, r); !ok {
			return
		}
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are allowed")
		return
	}

	if !validWords(w, words) {
		return
	}
	logging.DebugContext(r.Context(), "phonemise request", "words", len(words))

	results := make([]Transcription, len(words))
	for i, word := range words {
		results[i] = s.transcribe(r, word)
	}
	respondList(w, http.StatusOK, results, len(results))
}

func (s *Server) transcribe(r *http.Request, word string) Transcription {
	phones, err := s.phonemiser.Phonemise(word)
	if err != nil {
		logging.PhonemiseFailed(r.Context(), word, err)
		return Transcription{Word: word, Error: err.Error()}
	}
	return Transcription{Word: word, Phones: phones}
}

// decodeWords reads a WordsRequest body, responding with an error itself
// when it returns false.
func decodeWords(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req WordsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body too large")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return nil, false
	}
	return req.Words, true
}

func validWords(w http.ResponseWriter, words []string) bool {
	if len(words) == 0 {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "at least one word is required")
		return false
	}
	if len(words) > maxWordsPerRequest {
		respondError(w, http.StatusBadRequest, "TOO_MANY_WORDS", "too many words in one request")
		return false
	}
	for _, word := range words {
		if strings.TrimSpace(word) == "" {
			respondError(w, http.StatusBadRequest, "INVALID_WORD", "words must not be blank")
			return false
		}
	}
	return true
}

func respond(w http.ResponseWriter, status int, data any) {
	writeResponse(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondList(w http.ResponseWriter, status int, data any, total int) {
	writeResponse(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Total: total, Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeResponse(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeResponse(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}
