package genemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExon_Len(t *testing.T) {
	e := Exon{Start: 1000, End: 1200}
	assert.Equal(t, int64(201), e.Len())
}

func TestExon_Contains(t *testing.T) {
	e := Exon{Start: 1000, End: 1200}
	assert.True(t, e.Contains(1000))
	assert.True(t, e.Contains(1200))
	assert.True(t, e.Contains(1100))
	assert.False(t, e.Contains(999))
	assert.False(t, e.Contains(1201))
}

func TestExon_Overlaps(t *testing.T) {
	e := Exon{Start: 1000, End: 1200}
	assert.True(t, e.Overlaps(1100, 1300))
	assert.True(t, e.Overlaps(900, 1000))
	assert.False(t, e.Overlaps(1201, 1300))
	assert.False(t, e.Overlaps(800, 999))
}
