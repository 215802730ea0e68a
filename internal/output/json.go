package output

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/rgmatch/rgmatch/internal/region"
)

// JSONRow is one annotated region, the JSONWriter's wire shape.
type JSONRow struct {
	Chrom      string             `json:"chrom"`
	Start      int64              `json:"start"`
	End        int64              `json:"end"`
	Metadata   []string           `json:"metadata,omitempty"`
	Candidates []region.Candidate `json:"candidates"`
}

// JSONWriter writes one JSON object per line (JSON Lines), one per region,
// for callers that want structured output instead of the tab format.
type JSONWriter struct {
	enc *json.Encoder
}

// NewJSONWriter creates a JSON Lines writer over w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{enc: json.NewEncoder(w)}
}

// Write emits one region and its candidates as a single JSON line.
func (jw *JSONWriter) Write(rgn *region.Region, cands []region.Candidate) error {
	row := JSONRow{
		Chrom:      rgn.Chrom,
		Start:      rgn.Start - 1,
		End:        rgn.End,
		Metadata:   rgn.Metadata,
		Candidates: cands,
	}
	return jw.enc.Encode(row)
}
