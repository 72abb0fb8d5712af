package gamemap

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/overmind/internal/domain/digest"
)

// Record is a map asset, keyed by the digest of its file.
type Record struct {
	ID           int64
	Hash         digest.Digest
	Name         string
	Width        int
	Height       int
	TileSet      string
	CameraTop    int
	CameraLeft   int
	CameraBottom int
	CameraRight  int
}

func (r Record) Validate() error {
	if r.Hash.IsZero() {
		return fmt.Errorf("map hash is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("map name is required")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("map dimensions must be > 0")
	}
	return nil
}
