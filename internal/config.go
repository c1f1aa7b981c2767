package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host            string `env:"HOST,default=0.0.0.0"`
	Port            int    `env:"PORT,default=8000"`
	LogLevel        string `env:"LOG_LEVEL,default=info"`
	WsAllowedOrigin string `env:"WS_ALLOWED_ORIGIN"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	EventBufferSize int `env:"EVENT_BUFFER_SIZE,default=256"`
	SendBufferSize  int `env:"SEND_BUFFER_SIZE,default=256"`
	TailSize        int `env:"TAIL_SIZE,default=50"`

	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	JwtSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	StatsInterval time.Duration `env:"STATS_INTERVAL,default=15s"`
	DebugPort     int           `env:"DEBUG_PORT,default=8099"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
