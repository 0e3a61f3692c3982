package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HelloWorldHandler)

	r.HandleFunc("/api/rooms", s.PublicRoomsHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/words", s.WordsHandler).Methods(http.MethodPost, http.MethodOptions)

	r.Handle("/ws", s.ws)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"message": "Hello World"}); err != nil {
		log.Error().Err(err).Msg("[HelloWorldHandler] error encoding response")
	}
}

// PublicRoomsHandler lists the public rooms a player could drop into.
func (s *Server) PublicRoomsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	writeResponse(w, start, http.StatusOK, s.rooms.PublicRooms())
}

type wordsRequest struct {
	NumberOfWords int `json:"numberOfWords"`
}

// WordsHandler draws distinct words from the corpus.
func (s *Server) WordsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req wordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, start, http.StatusBadRequest, "request body must be {\"numberOfWords\": n}")
		return
	}

	words, err := s.words.DrawDistinctWords(r.Context(), req.NumberOfWords)
	switch {
	case errors.Is(err, internal.ErrInvalidRequest):
		writeResponse(w, start, http.StatusBadRequest, err.Error())
	case err != nil:
		log.Error().Err(err).Int("n", req.NumberOfWords).Msg("[WordsHandler] word draw failed")
		writeResponse(w, start, http.StatusInternalServerError, "could not draw words")
	default:
		writeResponse(w, start, http.StatusOK, words)
	}
}

func writeResponse(w http.ResponseWriter, start time.Time, status int, data any) {
	end := time.Now()
	resp := internal.Response{
		StatusCode:    status,
		RespStartTime: start.UnixMilli(),
		RespEndTime:   end.UnixMilli(),
		NetRespTime:   end.Sub(start).Milliseconds(),
		Data:          data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("[writeResponse] error encoding response")
	}
}
