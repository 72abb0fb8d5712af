package gamemap

import (
	"context"

	"github.com/riskibarqy/overmind/internal/domain/digest"
)

type Repository interface {
	GetByHash(ctx context.Context, hash digest.Digest) (Record, bool, error)
	Insert(ctx context.Context, item Record) (Record, bool, error)
}
