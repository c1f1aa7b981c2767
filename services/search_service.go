package services

import (
	"context"
	"fmt"
	"log/slog"

	"snappy/domain"
	"snappy/domain/search"
	"snappy/errors"
	"snappy/repositories"
)

type ISearchService interface {
	Search(ctx context.Context, callerID, rawQuery string) ([]repositories.SearchHit, error)
}

// SearchService parses a raw query string and runs it against the
// full-text index.
type SearchService struct {
	index repositories.ISearchIndex
	log   *slog.Logger
}

func NewSearchService(index repositories.ISearchIndex, log *slog.Logger) *SearchService {
	return &SearchService{index: index, log: log}
}

func (s *SearchService) Search(ctx context.Context, callerID, rawQuery string) ([]repositories.SearchHit, error) {
	if domain.Blank(rawQuery) {
		return nil, fmt.Errorf("%w: search query is required", errors.ErrValidation)
	}

	query := search.NewSearchQuery(rawQuery, callerID)
	hits, err := s.index.Search(ctx, query)
	if err != nil {
		s.log.Error("Index search failed", "err", err)
		return nil, fmt.Errorf("%w: index search failed", errors.ErrStorage)
	}
	return hits, nil
}
