package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tilecast/internal/core/domain"
)

func TestPlanLayout_ColumnTable(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		narrow int
		wide   int
	}{
		{"single tile", 1, 1, 1},
		{"two tiles", 2, 1, 2},
		{"three tiles", 3, 2, 2},
		{"four tiles", 4, 2, 2},
		{"five tiles", 5, 2, 3},
		{"six tiles", 6, 2, 3},
		{"seven tiles", 7, 3, 3},
		{"nine tiles", 9, 3, 3},
		{"ten tiles", 10, 3, 4},
		{"sixteen tiles", 16, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := PlanLayout(tt.count, "", false)
			assert.Equal(t, domain.LayoutGrid, spec.Mode)
			assert.Equal(t, tt.narrow, spec.ColumnsNarrow)
			assert.Equal(t, tt.wide, spec.ColumnsWide)
			assert.Empty(t, spec.PrimaryUID)
		})
	}
}

func TestPlanLayout_SoloBroadcastIsFullscreen(t *testing.T) {
	spec := PlanLayout(1, "", true)
	assert.Equal(t, domain.LayoutFullscreen, spec.Mode)

	// The fullscreen case applies only to an actually solo grid.
	spec = PlanLayout(3, "", true)
	assert.Equal(t, domain.LayoutGrid, spec.Mode)
}

func TestPlanLayout_PinnedSwitchesToFocus(t *testing.T) {
	for _, count := range []int{2, 4, 12} {
		spec := PlanLayout(count, "user-b", false)
		assert.Equal(t, domain.LayoutFocus, spec.Mode)
		assert.Equal(t, domain.UID("user-b"), spec.PrimaryUID)
	}
}
