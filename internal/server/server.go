package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal/game"
)

type Server struct {
	allowedOrigin string

	rooms *game.Directory
	words game.WordSource
	ws    http.Handler
}

func New(allowedOrigin string, rooms *game.Directory, words game.WordSource, ws http.Handler) *Server {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &Server{
		allowedOrigin: allowedOrigin,
		rooms:         rooms,
		words:         words,
		ws:            ws,
	}
}

// NewHTTPServer wires the routes into an http.Server listening on addr.
// A panicking handler answers 500 instead of killing the process.
func NewHTTPServer(addr string, s *Server) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handlers.RecoveryHandler(handlers.RecoveryLogger(panicLogger{}))(s.RegisterRoutes()),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

type panicLogger struct{}

func (panicLogger) Println(v ...interface{}) {
	log.Error().Msg("[RecoveryHandler] " + fmt.Sprint(v...))
}
