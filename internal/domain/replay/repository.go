package replay

import (
	"context"

	"github.com/riskibarqy/overmind/internal/domain/digest"
)

type Repository interface {
	GetByHash(ctx context.Context, hash digest.Digest) (Record, bool, error)
	ExistsByHash(ctx context.Context, hash digest.Digest) (bool, error)
	Insert(ctx context.Context, item Record) (Record, bool, error)
	InsertLinks(ctx context.Context, links []IdentityLink) error
	ListLinks(ctx context.Context, replayID int64) ([]IdentityLink, error)
}
