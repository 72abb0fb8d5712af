package identity

import "context"

// Repository describes identity persistence needs inside one unit of work.
type Repository interface {
	GetByLocator(ctx context.Context, locator Locator) (Identity, bool, error)
	// Insert stores item unless its locator already exists. On conflict it returns the stored row and false.
	Insert(ctx context.Context, item Identity) (Identity, bool, error)
}
