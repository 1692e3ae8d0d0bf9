package orders

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/database/models"
)

const (
	catalogCacheKey = "pos:menu"
	catalogCacheTTL = 5 * time.Minute
)

type Catalog struct {
	Categories []models.Category `json:"categories"`
	MenuItems  []models.MenuItem `json:"menu_items"`
}

// Catalog returns the sellable menu for the POS screen. The menu store is
// read-only to this core, so a short redis cache is safe.
func (s *Service) Catalog(ctx context.Context) (*Catalog, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, catalogCacheKey).Bytes(); err == nil {
			var c Catalog
			if json.Unmarshal(cached, &c) == nil {
				return &c, nil
			}
		}
	}

	var c Catalog
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("sort_order").Find(&c.Categories).Error; err != nil {
		return nil, apperr.Persistence("load categories", err)
	}
	if err := s.db.WithContext(ctx).Where("is_available = ?", true).Order("name").Find(&c.MenuItems).Error; err != nil {
		return nil, apperr.Persistence("load menu items", err)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(&c); err == nil {
			if err := s.redis.Set(ctx, catalogCacheKey, payload, catalogCacheTTL).Err(); err != nil {
				s.log.Warn("failed to cache catalog", zap.Error(err))
			}
		}
	}
	return &c, nil
}

// InvalidateCatalog drops the cached menu, for callers that edit it.
func (s *Service) InvalidateCatalog(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, catalogCacheKey)
}
