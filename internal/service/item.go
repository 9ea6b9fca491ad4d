package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/Skotchmaster/freelance_market/internal/transport"
	"github.com/Skotchmaster/freelance_market/internal/util"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
	"github.com/google/uuid"
)

// Indexer is the full-text side of the catalog. It is optional.
type Indexer interface {
	IndexItem(ctx context.Context, item *models.Item) error
	BulkIndex(ctx context.Context, items []models.Item) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Item, error)
}

type ItemService struct {
	Repo            *repo.GormRepo
	Index           Indexer
	DefaultCurrency string
}

func (s *ItemService) CreateItem(ctx context.Context, actor Actor, req transport.CreateItemRequest) (*models.Item, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", apperr.ErrValidation)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be > 0", apperr.ErrValidation)
	}
	kind := req.Kind
	if kind == "" {
		kind = models.ItemKindProduct
	}
	if kind != models.ItemKindProduct && kind != models.ItemKindProject {
		return nil, fmt.Errorf("%w: unknown kind %q", apperr.ErrValidation, kind)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", apperr.ErrValidation)
	}

	item := &models.Item{
		AuthorID:    actor.ID,
		Kind:        kind,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Currency:    currency,
	}
	if err := s.Repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.IndexItem(ctx, item); err != nil {
			logging.FromContext(ctx).Warn("item_index_failed", "item_id", item.ID.String(), "error", err)
		}
	}
	return item, nil
}

func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.Repo.GetItem(ctx, id)
}

func (s *ItemService) ListItems(ctx context.Context, page, limit int) (util.Page, []models.Item, error) {
	offset, limit := util.Calculate(page, limit)
	total, items, err := s.Repo.ListItems(ctx, offset, limit)
	if err != nil {
		return util.Page{}, nil, err
	}
	return util.NewPage(page, limit, total), items, nil
}

// SearchItems asks the index first and falls back to the database when the
// index is missing or failing.
func (s *ItemService) SearchItems(ctx context.Context, q string, page, limit int) (util.Page, []models.Item, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return util.Page{}, nil, fmt.Errorf("%w: query required", apperr.ErrValidation)
	}
	offset, limit := util.Calculate(page, limit)

	if s.Index != nil {
		total, hits, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.hydrate(ctx, hits)
			if err != nil {
				return util.Page{}, nil, err
			}
			return util.NewPage(page, limit, total), items, nil
		}
		logging.FromContext(ctx).Warn("item_search_index_failed", "error", err)
	}

	total, items, err := s.Repo.SearchItems(ctx, q, offset, limit)
	if err != nil {
		return util.Page{}, nil, err
	}
	return util.NewPage(page, limit, total), items, nil
}

// hydrate swaps index documents for the stored rows, keeping the index
// ranking. Hits whose row no longer exists are dropped.
func (s *ItemService) hydrate(ctx context.Context, hits []models.Item) ([]models.Item, error) {
	ids := make([]uuid.UUID, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	rows, err := s.Repo.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load search hits: %w", err)
	}
	byID := make(map[uuid.UUID]models.Item, len(rows))
	for _, it := range rows {
		byID[it.ID] = it
	}
	items := make([]models.Item, 0, len(hits))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			items = append(items, it)
		}
	}
	if len(items) < len(hits) {
		logging.FromContext(ctx).Debug("item_search_stale_hits", "dropped", len(hits)-len(items))
	}
	return items, nil
}

// Reindex pushes the whole catalog into the index.
func (s *ItemService) Reindex(ctx context.Context, batch int) (int, error) {
	if s.Index == nil {
		return 0, fmt.Errorf("search index not configured")
	}
	if batch <= 0 {
		batch = 500
	}
	n := 0
	err := s.Repo.EachItemBatch(ctx, batch, func(items []models.Item) error {
		if err := s.Index.BulkIndex(ctx, items); err != nil {
			return err
		}
		n += len(items)
		return nil
	})
	return n, err
}
