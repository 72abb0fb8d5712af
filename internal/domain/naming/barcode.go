package naming

import (
	"regexp"
	"strings"
	"sync"
)

// Barcode names are six or more of the visually identical glyphs I, l, 1 (and i).
var barcodePattern = regexp.MustCompile(`(?:\[(\w+)\])?([Iil1]{6,})`)

// ReplaceBarcodes swaps each barcode for its resolved clan tag, or drops it when
// there is no tag. It returns the rewritten text and the barcode -> tag pairs seen.
func ReplaceBarcodes(text string, resolve func(string) string) (string, map[string]string) {
	matches := barcodePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	found := make(map[string]string, len(matches))
	var out strings.Builder
	out.Grow(len(text))
	last := 0
	for _, m := range matches {
		barcode := text[m[4]:m[5]]
		tag := ""
		if m[2] >= 0 {
			tag = strings.ToLower(strings.TrimRight(text[m[2]:m[3]], "0123456789"))
			if resolve != nil {
				tag = resolve(tag)
			}
		}
		found[barcode] = tag

		out.WriteString(text[last:m[0]])
		out.WriteString(tag)
		last = m[1]
	}
	out.WriteString(text[last:])

	return out.String(), found
}

// BarcodeLog accumulates barcode -> tag pairs across a run for auditing.
type BarcodeLog struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewBarcodeLog() *BarcodeLog {
	return &BarcodeLog{entries: make(map[string]string)}
}

func (l *BarcodeLog) Record(entries map[string]string) {
	if l == nil || len(entries) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for barcode, tag := range entries {
		l.entries[barcode] = tag
	}
}

func (l *BarcodeLog) Snapshot() map[string]string {
	if l == nil {
		return map[string]string{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]string, len(l.entries))
	for barcode, tag := range l.entries {
		out[barcode] = tag
	}
	return out
}

func (l *BarcodeLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
