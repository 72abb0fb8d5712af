package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Digest is the sha256 of an asset's bytes. Replays and maps are keyed by it.
type Digest [sha256.Size]byte

func Sum(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

func FromHex(raw string) (Digest, error) {
	var out Digest
	decoded, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return out, fmt.Errorf("decode digest hex: %w", err)
	}
	if len(decoded) != len(out) {
		return out, fmt.Errorf("digest must be %d bytes, got %d", len(out), len(decoded))
	}
	copy(out[:], decoded)
	return out, nil
}

func FromBytes(raw []byte) (Digest, error) {
	var out Digest
	if len(raw) != len(out) {
		return out, fmt.Errorf("digest must be %d bytes, got %d", len(out), len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) String() string {
	return d.Hex()
}

func (d Digest) Bytes() []byte {
	out := make([]byte, len(d))
	copy(out, d[:])
	return out
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}
