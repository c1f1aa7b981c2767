package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newModerator(t *testing.T, words ...string) Moderator {
	t.Helper()
	moderator, err := NewModerator(words, '*')
	require.NoError(t, err)
	return moderator
}

func TestModerator_Censor(t *testing.T) {
	moderator := newModerator(t, "badger", "weasel")

	cases := []struct {
		name     string
		input    string
		expected string
		matches  int
	}{
		{"clean text untouched", "The fox is here", "The fox is here", 0},
		{"simple match", "The badger is here", "The ****** is here", 1},
		{"case insensitive", "The BaDgEr is here", "The ****** is here", 1},
		{"accent folding", "The bàdgér is here", "The ****** is here", 1},
		{"separator evasion", "The b-a-d-g-e-r is here", "The *********** is here", 1},
		{"multiple words", "badger meets weasel", "****** meets ******", 2},
		{"empty input", "", "", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			censored, found := moderator.Censor(tc.input)
			req.Equal(tc.expected, censored)
			req.Len(found, tc.matches)
		})
	}
}

func TestModerator_CensorPreservesSurroundingText(t *testing.T) {
	req := require.New(t)
	moderator := newModerator(t, "badger")

	censored, found := moderator.Censor("badger at start, badger at end badger")
	req.Equal("****** at start, ****** at end ******", censored)
	req.Len(found, 3)
}

func TestLoadCensoredWords(t *testing.T) {
	req := require.New(t)

	data, err := LoadCensoredWords()
	req.NoError(err)
	req.NotEmpty(data.Words)
	req.NotEmpty(data.Languages)

	// A loaded list must build a working moderator
	moderator, err := NewModerator(data.Words, '*')
	req.NoError(err)
	censored, _ := moderator.Censor("a perfectly polite sentence")
	req.Equal("a perfectly polite sentence", censored)
}
