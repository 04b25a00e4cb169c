package service

import (
	"context"
	"fmt"
	"strings"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// SearchResult is the service-level DTO for a name search.
type SearchResult struct {
	Files   []model.File   `json:"files"`
	Folders []model.Folder `json:"folders"`
}

// SearchService matches file and folder names by case-insensitive literal
// substring, scoped to the actor's own resources. Shared files never appear
// in another user's search.
type SearchService interface {
	Search(ctx context.Context, actorID, query string) (*SearchResult, error)
}

type searchService struct {
	files   repository.FileRepository
	folders repository.FolderRepository
}

// NewSearchService constructs a new SearchService.
func NewSearchService(files repository.FileRepository, folders repository.FolderRepository) SearchService {
	return &searchService{files: files, folders: folders}
}

// likeEscaper neutralizes LIKE metacharacters so the query matches as a
// literal substring.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *searchService) Search(ctx context.Context, actorID, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	pattern := "%" + likeEscaper.Replace(query) + "%"

	files, err := s.files.SearchByName(ctx, actorID, pattern)
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}
	folders, err := s.folders.SearchByName(ctx, actorID, pattern)
	if err != nil {
		return nil, fmt.Errorf("search folders: %w", err)
	}
	return &SearchResult{Files: files, Folders: folders}, nil
}
