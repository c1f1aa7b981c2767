package internal

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("*")
	req.NoError(err)
	req.Equal('*', r)

	_, err = CharacterRune("")
	req.Error(err)

	_, err = CharacterRune("**")
	req.Error(err)
}

func TestGetLoggerFromString(t *testing.T) {
	req := require.New(t)

	ctx := context.Background()

	debug := GetLoggerFromString("debug")
	req.True(debug.Enabled(ctx, slog.LevelDebug))

	warn := GetLoggerFromString("WARN")
	req.False(warn.Enabled(ctx, slog.LevelInfo))
	req.True(warn.Enabled(ctx, slog.LevelWarn))

	// Unknown levels fall back to info
	fallback := GetLoggerFromString("verbose")
	req.False(fallback.Enabled(ctx, slog.LevelDebug))
	req.True(fallback.Enabled(ctx, slog.LevelInfo))
}
