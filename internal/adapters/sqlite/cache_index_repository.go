package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
	"gorm.io/gorm/clause"
)

type cacheEntryModel struct {
	CacheKey  string    `gorm:"column:cache_key;primaryKey"`
	URL       string    `gorm:"column:url;not null"`
	SizeBytes int64     `gorm:"column:size_bytes;not null"`
	FetchedAt time.Time `gorm:"column:fetched_at;not null"`
}

func (cacheEntryModel) TableName() string {
	return "schema_cache_entries"
}

type CacheIndexRepository struct {
	db *gormsqlite.DB
}

func NewCacheIndexRepository(db *gormsqlite.DB) *CacheIndexRepository {
	return &CacheIndexRepository{db: db}
}

func (r *CacheIndexRepository) Record(ctx context.Context, entry domain.CacheEntry) error {
	model := cacheEntryModel{
		CacheKey:  string(entry.Key),
		URL:       entry.URL,
		SizeBytes: entry.SizeBytes,
		FetchedAt: entry.FetchedAt,
	}
	if model.FetchedAt.IsZero() {
		model.FetchedAt = time.Now().UTC()
	}

	return r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"url", "size_bytes", "fetched_at"}),
		}).Create(&model).Error
		if err != nil {
			return fmt.Errorf("upsert cache entry: %w", err)
		}
		return nil
	})
}

func (r *CacheIndexRepository) List(ctx context.Context) ([]domain.CacheEntry, error) {
	var models []cacheEntryModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("url ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}

	out := make([]domain.CacheEntry, 0, len(models))
	for _, m := range models {
		out = append(out, domain.CacheEntry{
			Key:       domain.CacheKey(m.CacheKey),
			URL:       m.URL,
			SizeBytes: m.SizeBytes,
			FetchedAt: m.FetchedAt,
		})
	}
	return out, nil
}

func (r *CacheIndexRepository) Clear(ctx context.Context) (int64, error) {
	var affected int64
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("1 = 1").Delete(&cacheEntryModel{})
		if res.Error != nil {
			return fmt.Errorf("clear cache entries: %w", res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
