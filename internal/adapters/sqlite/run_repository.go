package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
)

type runModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	DocumentPath string    `gorm:"column:document_path;not null"`
	SchemaInput  string    `gorm:"column:schema_input;not null"`
	SchemaSource string    `gorm:"column:schema_source;not null"`
	Format       string    `gorm:"column:format;not null"`
	FormatOrigin string    `gorm:"column:format_origin;not null"`
	Valid        bool      `gorm:"column:valid;not null"`
	ErrorKind    string    `gorm:"column:error_kind;not null"`
	ErrorCount   int       `gorm:"column:error_count;not null"`
	Message      string    `gorm:"column:message;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (runModel) TableName() string {
	return "validation_runs"
}

type RunRepository struct {
	db *gormsqlite.DB
}

func NewRunRepository(db *gormsqlite.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Log(ctx context.Context, run domain.ValidationRun) error {
	model := runModel{
		ID:           run.ID,
		DocumentPath: run.DocumentPath,
		SchemaInput:  run.SchemaInput,
		SchemaSource: string(run.SchemaSource),
		Format:       string(run.Format),
		FormatOrigin: string(run.FormatOrigin),
		Valid:        run.Valid,
		ErrorKind:    string(run.ErrorKind),
		ErrorCount:   run.ErrorCount,
		Message:      run.Message,
		CreatedAt:    run.CreatedAt,
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}

	return r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert validation run: %w", err)
		}
		return nil
	})
}

func (r *RunRepository) List(ctx context.Context, filter domain.RunFilter) ([]domain.ValidationRun, error) {
	var models []runModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		q := tx.Order("created_at DESC").Order("id DESC")
		if filter.OnlyFailed {
			q = q.Where("valid = ?", false)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		return q.Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list validation runs: %w", err)
	}

	out := make([]domain.ValidationRun, 0, len(models))
	for _, m := range models {
		out = append(out, toRunDomain(m))
	}
	return out, nil
}

func toRunDomain(m runModel) domain.ValidationRun {
	return domain.ValidationRun{
		ID:           m.ID,
		DocumentPath: m.DocumentPath,
		SchemaInput:  m.SchemaInput,
		SchemaSource: domain.SchemaSource(m.SchemaSource),
		Format:       domain.Format(m.Format),
		FormatOrigin: domain.FormatOrigin(m.FormatOrigin),
		Valid:        m.Valid,
		ErrorKind:    domain.ErrorKind(m.ErrorKind),
		ErrorCount:   m.ErrorCount,
		Message:      m.Message,
		CreatedAt:    m.CreatedAt,
	}
}
