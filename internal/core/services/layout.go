package services

import "tilecast/internal/core/domain"

// PlanLayout maps the displayed tile count (not the overflowed one) to a
// tiling description. It is a pure function.
//
// Special cases come before the column table: a solo broadcast renders one
// full-screen tile, and a pinned participant switches the grid into focus
// mode regardless of count.
func PlanLayout(count int, pinned domain.UID, soloBroadcast bool) domain.LayoutSpec {
	if soloBroadcast && count == 1 {
		return domain.LayoutSpec{
			Mode:          domain.LayoutFullscreen,
			ColumnsNarrow: 1,
			ColumnsWide:   1,
		}
	}

	if pinned != "" {
		return domain.LayoutSpec{
			Mode:          domain.LayoutFocus,
			ColumnsNarrow: 1,
			ColumnsWide:   1,
			PrimaryUID:    pinned,
		}
	}

	var narrow, wide int
	switch {
	case count <= 1:
		narrow, wide = 1, 1
	case count == 2:
		narrow, wide = 1, 2
	case count <= 4:
		narrow, wide = 2, 2
	case count <= 6:
		narrow, wide = 2, 3
	case count <= 9:
		narrow, wide = 3, 3
	default:
		narrow, wide = 3, 4
	}

	return domain.LayoutSpec{
		Mode:          domain.LayoutGrid,
		ColumnsNarrow: narrow,
		ColumnsWide:   wide,
	}
}
