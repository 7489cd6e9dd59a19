// Package catalog overlays the locally managed products on top of the
// bundled catalog. Local products win on id collision; the bundle is never
// modified.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/store"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

//go:embed bundle.json
var bundleJSON []byte

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

// Indexer mirrors local product changes into a search index.
type Indexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type CatalogService struct {
	Store   *store.Store
	Static  []models.Product
	Indexer Indexer

	NewID func() string
	Now   func() time.Time
}

// LoadBundle decodes the catalog compiled into the binary.
func LoadBundle() ([]models.Product, error) {
	var products []models.Product
	if err := json.Unmarshal(bundleJSON, &products); err != nil {
		return nil, fmt.Errorf("catalog: decode bundle: %w", err)
	}
	return products, nil
}

func New(st *store.Store) (*CatalogService, error) {
	static, err := LoadBundle()
	if err != nil {
		return nil, err
	}
	return &CatalogService{Store: st, Static: static}, nil
}

func (s *CatalogService) ListLocal(ctx context.Context) ([]models.Product, error) {
	return store.ReadList[models.Product](ctx, s.Store, store.KeyProducts)
}

// ListAll returns the bundle followed by the local products.
func (s *CatalogService) ListAll(ctx context.Context) ([]models.Product, error) {
	local, err := s.ListLocal(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(s.Static)+len(local))
	out = append(out, s.Static...)
	return append(out, local...), nil
}

func (s *CatalogService) FindByID(ctx context.Context, id string) (*models.Product, error) {
	local, err := s.ListLocal(ctx)
	if err != nil {
		return nil, err
	}
	for i := range local {
		if local[i].ID == id {
			return &local[i], nil
		}
	}
	for i := range s.Static {
		if s.Static[i].ID == id {
			p := s.Static[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", id, ErrNotFound)
}

// UpsertLocal inserts p into the local collection, or replaces the local
// product with the same id in place. An empty id gets a fresh one.
func (s *CatalogService) UpsertLocal(ctx context.Context, p models.Product) (models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.upsert")

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return p, fmt.Errorf("name required: %w", ErrValidation)
	}
	if p.Price.IsNegative() || (p.SalePrice != nil && p.SalePrice.IsNegative()) {
		return p, fmt.Errorf("price must be >= 0: %w", ErrValidation)
	}
	if p.Stock != nil && *p.Stock < 0 {
		return p, fmt.Errorf("stock must be >= 0: %w", ErrValidation)
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return p, fmt.Errorf("rating must be within 0..5: %w", ErrValidation)
	}

	if p.ID == "" {
		p.ID = s.newID()
	}
	_, err := store.UpdateList(ctx, s.Store, store.KeyProducts, func(local []models.Product) ([]models.Product, bool, error) {
		for i := range local {
			if local[i].ID == p.ID {
				if p.CreatedAt == nil {
					p.CreatedAt = local[i].CreatedAt
				}
				local[i] = p
				return local, true, nil
			}
		}
		if p.CreatedAt == nil {
			now := s.now()
			p.CreatedAt = &now
		}
		return append(local, p), true, nil
	})
	if err != nil {
		l.Error("upsert_product_error", "id", p.ID, "error", err)
		return p, err
	}
	if s.Indexer != nil {
		if err := s.Indexer.IndexProduct(ctx, p); err != nil {
			l.Warn("index_product_error", "id", p.ID, "error", err)
		}
	}
	return p, nil
}

// DeleteLocal removes id from the local collection and reports whether it
// was there. Bundled products cannot be deleted.
func (s *CatalogService) DeleteLocal(ctx context.Context, id string) (bool, error) {
	found := false
	_, err := store.UpdateList(ctx, s.Store, store.KeyProducts, func(local []models.Product) ([]models.Product, bool, error) {
		out := local[:0]
		for _, p := range local {
			if p.ID != id {
				out = append(out, p)
			}
		}
		found = len(out) < len(local)
		return out, found, nil
	})
	if err != nil || !found {
		return false, err
	}

	if s.Indexer != nil {
		if err := s.Indexer.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).With("svc", "catalog.delete").
				Warn("unindex_product_error", "id", id, "error", err)
		}
	}
	return true, nil
}

func (s *CatalogService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
