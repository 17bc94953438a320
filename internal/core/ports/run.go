package ports

import (
	"context"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
)

type RunRepository interface {
	Log(ctx context.Context, run domain.ValidationRun) error
	List(ctx context.Context, filter domain.RunFilter) ([]domain.ValidationRun, error)
}
