package naming

import (
	"path/filepath"
	"regexp"
	"strings"
)

var playersPattern = regexp.MustCompile(
	`(?i)(?:\([PTZ]\))?(?:\[(?:\w|\?)*\])?` +
		`(?P<first>[0-9A-Za-z?]{2,}(?: \([PTZ]\))?)` +
		`(?:[ _]+vs?\.?|,)[ _]+` +
		`(?:\([PTZ]\))?(?:\[(?:\w|\?)*\])?` +
		`(?P<second>[0-9A-Za-z?]{2,}(?: \([PTZ]\))?)`,
)

var (
	firstGroup  = playersPattern.SubexpIndex("first")
	secondGroup = playersPattern.SubexpIndex("second")
)

type Segment string

const (
	SegmentFilename  Segment = "filename"
	SegmentDirectory Segment = "directory"
)

// Candidate is one player name pulled from a replay path.
type Candidate struct {
	Raw       string
	Canonical string
	Segment   Segment
}

type Extraction struct {
	Candidates []Candidate
	Barcodes   map[string]string
}

// Labeled reports whether the path carried a recognizable "A vs B" label.
func (e Extraction) Labeled() bool {
	return len(e.Candidates) == 2
}

// Extractor turns replay paths into name candidates.
type Extractor struct {
	aliases *AliasTable
}

func NewExtractor(aliases *AliasTable) *Extractor {
	return &Extractor{aliases: aliases}
}

// Extract tries the file name first and then the parent directory name.
func (e *Extractor) Extract(path string) Extraction {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Base(filepath.Dir(path))

	out := Extraction{}
	for _, part := range []struct {
		text    string
		segment Segment
	}{
		{text: name, segment: SegmentFilename},
		{text: dir, segment: SegmentDirectory},
	} {
		if part.text == "" || part.text == "." || part.text == string(filepath.Separator) {
			continue
		}

		transformed, barcodes := ReplaceBarcodes(Normalize(part.text), e.aliases.Resolve)
		out.Barcodes = mergeBarcodes(out.Barcodes, barcodes)

		match := playersPattern.FindStringSubmatch(transformed)
		if match == nil {
			continue
		}

		first, second := match[firstGroup], match[secondGroup]
		out.Candidates = []Candidate{
			{Raw: first, Canonical: e.aliases.Resolve(first), Segment: part.segment},
			{Raw: second, Canonical: e.aliases.Resolve(second), Segment: part.segment},
		}
		return out
	}

	return out
}

func mergeBarcodes(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for barcode, tag := range src {
		dst[barcode] = tag
	}
	return dst
}
