package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"identical ranges", 0, 60, 0, 60, true},
		{"partial overlap tail", 0, 60, 30, 90, true},
		{"partial overlap head", 30, 90, 0, 60, true},
		{"contained", 0, 120, 30, 60, true},
		{"containing", 30, 60, 0, 120, true},
		{"touching boundary after", 0, 60, 60, 120, false},
		{"touching boundary before", 60, 120, 0, 60, false},
		{"disjoint", 0, 30, 90, 120, false},
		{"one minute overlap", 0, 61, 60, 120, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(at(tc.aStart), at(tc.aEnd), at(tc.bStart), at(tc.bEnd))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOverlapsIsSymmetric(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a1, a2 := base, base.Add(time.Hour)
	b1, b2 := base.Add(30*time.Minute), base.Add(90*time.Minute)
	assert.Equal(t, Overlaps(a1, a2, b1, b2), Overlaps(b1, b2, a1, a2))
}
