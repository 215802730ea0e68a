package region

import (
	"fmt"
	"strings"
)

// Area labels the relation between a Region and a transcript feature
// (spec.md §3/§GLOSSARY).
type Area int

const (
	AreaTSS Area = iota
	AreaPromoter
	AreaUpstream
	AreaFirstExon
	AreaExon
	AreaIntron
	AreaGeneBody
	AreaTTS
	AreaDownstream
)

var areaNames = map[Area]string{
	AreaTSS:        "TSS",
	AreaPromoter:   "PROMOTER",
	AreaUpstream:   "UPSTREAM",
	AreaFirstExon:  "1st_EXON",
	AreaExon:       "EXON",
	AreaIntron:     "INTRON",
	AreaGeneBody:   "GENE_BODY",
	AreaTTS:        "TTS",
	AreaDownstream: "DOWNSTREAM",
}

// String renders the output-column spelling of the Area.
func (a Area) String() string {
	if s, ok := areaNames[a]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsExonLike reports whether a is Exon or FirstExon: the two areas treated
// as equivalent for rule-priority purposes (spec.md §4.4) while keeping
// their distinct output label.
func (a Area) IsExonLike() bool {
	return a == AreaExon || a == AreaFirstExon
}

// IsProximity reports whether a is one of the non-overlap proximity areas.
func (a Area) IsProximity() bool {
	switch a {
	case AreaTSS, AreaPromoter, AreaUpstream, AreaTTS, AreaDownstream:
		return true
	default:
		return false
	}
}

var areaByName = map[string]Area{
	"TSS":        AreaTSS,
	"PROMOTER":   AreaPromoter,
	"UPSTREAM":   AreaUpstream,
	"1ST_EXON":   AreaFirstExon,
	"EXON":       AreaExon,
	"INTRON":     AreaIntron,
	"GENE_BODY":  AreaGeneBody,
	"TTS":        AreaTTS,
	"DOWNSTREAM": AreaDownstream,
}

// ParseArea parses the output-column spelling of an Area (case-insensitive).
func ParseArea(s string) (Area, error) {
	if a, ok := areaByName[strings.ToUpper(s)]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("invalid area %q (want one of TSS, PROMOTER, UPSTREAM, 1st_EXON, EXON, INTRON, GENE_BODY, TTS, DOWNSTREAM)", s)
}

// ParseAreaList parses a comma-separated list of Area names into a priority
// order for Config.Rules (spec.md §4.4), rejecting an empty or invalid list.
func ParseAreaList(s string) ([]Area, error) {
	parts := strings.Split(s, ",")
	areas := make([]Area, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		a, err := ParseArea(p)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	if len(areas) == 0 {
		return nil, fmt.Errorf("rules priority list must not be empty")
	}
	return areas, nil
}
