package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/rs/zerolog/log"
)

// ImportResult counts what an ingredient import did with each row.
type ImportResult struct {
	Created  int
	Existing int
	Skipped  int
}

type CatalogService struct {
	catalog repository.CatalogRepository
}

func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.catalog.ListTags(ctx)
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, err := s.catalog.GetTag(ctx, id)
	return tag, mapRepoErr(err)
}

func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	return s.catalog.ListIngredients(ctx, strings.TrimSpace(namePrefix))
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	ingredient, err := s.catalog.GetIngredient(ctx, id)
	return ingredient, mapRepoErr(err)
}

// ImportIngredients reads "name,unit" rows. Rows without exactly two
// non-empty columns are skipped; existing (name, unit) pairs are kept.
func (s *CatalogService) ImportIngredients(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &ImportResult{}
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Warn().Err(err).Int("line", line).Msg("skipping malformed ingredient row")
				result.Skipped++
				continue
			}
			return result, err
		}
		if len(record) != 2 {
			result.Skipped++
			continue
		}
		name, unit := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if name == "" || unit == "" {
			result.Skipped++
			continue
		}

		created, err := s.catalog.EnsureIngredient(ctx, name, unit)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Existing++
		}
	}
	return result, nil
}

// EnsureTag is used by seeding to create tags idempotently.
func (s *CatalogService) EnsureTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	return s.catalog.EnsureTag(ctx, name, slug)
}
