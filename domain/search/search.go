package search

import (
	"strconv"
	"strings"

	"snappy/domain"
)

// Query represents the structured parameters of a history search.
// It decouples the raw user input from the index engine requirements.
type Query struct {
	RawInput     string // the original query string
	Terms        string // the actual text to match against message content
	Conversation string // canonical pair filter, empty means all conversations
	Author       string // sender filter, empty means any sender
	Limit        int    // number of results
}

const defaultLimit = 10

// NewSearchQuery parses a raw string to extract command-line style
// arguments. Example: invoice --with bob --from alice --limit 5
// The --with flag is resolved against the caller's own id to build the
// canonical conversation filter.
func NewSearchQuery(input, callerID string) *Query {
	query := &Query{
		RawInput: input,
		Limit:    defaultLimit,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "with":
				query.Conversation = domain.NewPair(callerID, val).String()
			case "from":
				query.Author = val
			case "limit":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = n
				}
			}
			i++ // skip the value part in the next iteration
			continue
		}

		textTerms = append(textTerms, part)
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
