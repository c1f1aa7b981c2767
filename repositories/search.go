package repositories

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"snappy/domain/search"
)

type ISearchIndex interface {
	IndexMessage(message DiskMessage) error
	Search(ctx context.Context, query *search.Query) ([]SearchHit, error)
}

// SearchHit is one full-text match, rebuilt from the stored index fields.
type SearchHit struct {
	ID           string `json:"id"`
	Conversation string `json:"conversation"`
	Author       string `json:"author"`
	Content      string `json:"content"`
}

// SearchIndex maintains the Bluge full-text index over persisted messages.
// Indexing is fed asynchronously by the event fanout, so the index is a
// best-effort view and never the source of truth for history.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(writer *bluge.Writer, log *slog.Logger) *SearchIndex {
	return &SearchIndex{writer: writer, log: log}
}

func (s *SearchIndex) IndexMessage(message DiskMessage) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewKeywordField("conversation", message.Participants.String()).StoreValue()).
		AddField(bluge.NewKeywordField("author", message.Author).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.UpdatedAt))

	return s.writer.Update(doc.ID(), doc)
}

// Search runs a parsed query against the index. The conversation and
// author filters are exact terms; the text is a match query over content.
func (s *SearchIndex) Search(ctx context.Context, query *search.Query) ([]SearchHit, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	boolQuery := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query.Terms).SetField("content"))
	if query.Conversation != "" {
		boolQuery.AddMust(bluge.NewTermQuery(query.Conversation).SetField("conversation"))
	}
	if query.Author != "" {
		boolQuery.AddMust(bluge.NewTermQuery(query.Author).SetField("author"))
	}

	request := bluge.NewTopNSearch(query.Limit, boolQuery)
	iter, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for {
		match, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var hit SearchHit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID = string(value)
			case "conversation":
				hit.Conversation = string(value)
			case "author":
				hit.Author = string(value)
			case "content":
				hit.Content = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
