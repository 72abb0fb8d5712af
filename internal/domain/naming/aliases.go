package naming

import (
	"fmt"
	"os"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// AliasTable maps alternate spellings to one canonical name per player.
// It is immutable after construction and safe to share between workers.
type AliasTable struct {
	players map[string]struct{}
	inverse map[string]string
}

// NewAliasTable builds a table from canonical name -> aliases.
func NewAliasTable(players map[string][]string) *AliasTable {
	table := &AliasTable{
		players: make(map[string]struct{}, len(players)),
		inverse: make(map[string]string, len(players)*2),
	}
	for player, aliases := range players {
		canonical := strings.ToLower(strings.TrimSpace(player))
		if canonical == "" {
			continue
		}
		table.players[canonical] = struct{}{}
		for _, alias := range aliases {
			key := strings.ToLower(strings.TrimSpace(alias))
			if key == "" {
				continue
			}
			table.inverse[key] = canonical
		}
	}
	return table
}

// LoadAliasTable reads a JSON object of the form {"canonical": ["alias", ...]}.
func LoadAliasTable(path string) (*AliasTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias table: %w", err)
	}

	var players map[string][]string
	if err := sonic.Unmarshal(raw, &players); err != nil {
		return nil, fmt.Errorf("decode alias table %s: %w", path, err)
	}

	return NewAliasTable(players), nil
}

// Resolve strips a leading "?" placeholder, lower-cases and maps known aliases.
func (t *AliasTable) Resolve(name string) string {
	lowered := strings.ToLower(strings.TrimLeft(name, "?"))
	if t == nil {
		return lowered
	}
	if canonical, ok := t.inverse[lowered]; ok {
		return canonical
	}
	return lowered
}

// Len is the number of canonical players in the table.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.players)
}
