package pagination

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rpattn/contentql/internal/domain"
)

func TestCalculateDocumentedExample(t *testing.T) {
	got := Calculate(33, 0, 4)
	want := domain.PaginationInfo{
		Total:       33,
		PageSize:    4,
		CurrentPage: 1,
		TotalPages:  9,
		HasNext:     true,
		HasPrev:     false,
		Cursor:      0,
		NextSkip:    4,
		PrevSkip:    0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Calculate(33, 0, 4) (-want +got):\n%s", diff)
	}
}

func TestCalculatePages(t *testing.T) {
	tests := []struct {
		name                 string
		total, skip, limit   int
		wantCurrent, wantMax int
		wantNext, wantPrev   int
	}{
		{name: "second page", total: 33, skip: 4, limit: 4, wantCurrent: 2, wantMax: 9, wantNext: 8, wantPrev: 0},
		{name: "last partial page", total: 33, skip: 32, limit: 4, wantCurrent: 9, wantMax: 9, wantNext: 32, wantPrev: 28},
		{name: "unaligned skip", total: 33, skip: 3, limit: 4, wantCurrent: 2, wantMax: 9, wantNext: 7, wantPrev: -1},
		{name: "exact multiple first page", total: 32, skip: 0, limit: 4, wantCurrent: 1, wantMax: 8, wantNext: 4, wantPrev: 0},
		{name: "exact multiple last page", total: 32, skip: 28, limit: 4, wantCurrent: 8, wantMax: 8, wantNext: 28, wantPrev: 24},
		{name: "skip at end", total: 32, skip: 32, limit: 4, wantCurrent: 8, wantMax: 8, wantNext: 32, wantPrev: 28},
		{name: "single page", total: 3, skip: 0, limit: 10, wantCurrent: 1, wantMax: 1, wantNext: 0, wantPrev: 0},
		{name: "empty collection", total: 0, skip: 0, limit: 10, wantCurrent: 1, wantMax: 0, wantNext: 0, wantPrev: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.total, tt.skip, tt.limit)
			if got.CurrentPage != tt.wantCurrent {
				t.Fatalf("expected current page %d, got %d", tt.wantCurrent, got.CurrentPage)
			}
			if got.TotalPages != tt.wantMax {
				t.Fatalf("expected %d total pages, got %d", tt.wantMax, got.TotalPages)
			}
			if got.NextSkip != tt.wantNext {
				t.Fatalf("expected next skip %d, got %d", tt.wantNext, got.NextSkip)
			}
			if got.PrevSkip != tt.wantPrev {
				t.Fatalf("expected prev skip %d, got %d", tt.wantPrev, got.PrevSkip)
			}
			if got.Cursor != tt.skip {
				t.Fatalf("expected cursor %d, got %d", tt.skip, got.Cursor)
			}
		})
	}
}

func TestCalculateCurrentPageInRange(t *testing.T) {
	for limit := 1; limit <= 7; limit++ {
		for total := 1; total <= 40; total++ {
			for skip := 0; skip <= total; skip++ {
				info := Calculate(total, skip, limit)
				if info.CurrentPage < 1 || info.CurrentPage > info.TotalPages {
					t.Fatalf("total=%d skip=%d limit=%d: current page %d outside [1, %d]",
						total, skip, limit, info.CurrentPage, info.TotalPages)
				}
				if info.HasNext != (info.TotalPages > info.CurrentPage) {
					t.Fatalf("total=%d skip=%d limit=%d: hasNext=%v inconsistent", total, skip, limit, info.HasNext)
				}
				if info.HasPrev != (info.CurrentPage > 1) {
					t.Fatalf("total=%d skip=%d limit=%d: hasPrev=%v inconsistent", total, skip, limit, info.HasPrev)
				}
			}
		}
	}
}

func TestCalculatePanicsOnZeroLimit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for zero limit")
		}
	}()
	Calculate(10, 0, 0)
}

func TestCountOnly(t *testing.T) {
	got := CountOnly(12, 0)
	if got.Total != 12 || got.PageSize != 0 || got.TotalPages != 0 || got.HasNext || got.HasPrev {
		t.Fatalf("unexpected count-only info: %+v", got)
	}
}
