package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/scythe504/sketchroom/internal"
)

type Config struct {
	Port          int    `env:"PORT,default=8080"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN,default=*"`
	LogLevel      string `env:"LOG_LEVEL,default=info"`
	LogPretty     bool   `env:"LOG_PRETTY,default=true"`

	// Word corpus. DATABASE_URL wins over WORDS_FILE; with neither set the
	// embedded word list is used.
	DatabaseURL string `env:"DATABASE_URL"`
	WordsFile   string `env:"WORDS_FILE"`

	Rounds          int           `env:"ROUNDS,default=3"`
	TurnSeconds     int           `env:"TURN_SECONDS,default=80"`
	MaxPlayers      int           `env:"MAX_PLAYERS,default=8"`
	WordOptions     int           `env:"WORD_OPTIONS,default=3"`
	Hints           int           `env:"HINTS,default=2"`
	SelectionTime   time.Duration `env:"SELECTION_TIME,default=15s"`
	TurnEndTime     time.Duration `env:"TURN_END_TIME,default=10s"`
	SessionEndTime  time.Duration `env:"SESSION_END_TIME,default=30s"`
	ChatRate        float64       `env:"CHAT_RATE,default=4"`
	ChatBurst       int           `env:"CHAT_BURST,default=8"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// Load reads an optional .env file and decodes the environment into Config.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decoding environment: %w", err)
	}

	if err := cfg.RoomSettings().Validate(); err != nil {
		return Config{}, fmt.Errorf("room defaults: %w", err)
	}
	return cfg, nil
}

// RoomSettings returns the defaults every new room starts with.
func (c Config) RoomSettings() internal.RoomSettings {
	return internal.RoomSettings{
		Rounds:          c.Rounds,
		TurnTime:        c.TurnSeconds,
		MaxPlayers:      c.MaxPlayers,
		WordOptionCount: c.WordOptions,
		NumberOfHints:   c.Hints,
		SelectionTime:   c.SelectionTime,
		TurnEndTime:     c.TurnEndTime,
		SessionEndTime:  c.SessionEndTime,
	}
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
