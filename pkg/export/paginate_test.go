package export

import (
	"testing"
)

func TestPaginateCoversEveryRowOnce(t *testing.T) {
	tests := []struct {
		name      string
		w, h      int
		page      PageSpec
		wantPages int
	}{
		{"short", 794, 300, A4, 1},
		{"exactly one page", 190, 277, A4, 1},
		{"just over one page", 190, 278, A4, 2},
		{"long", 794, 5000, A4, 5},
		{"tiny width", 3, 1000, A4, 229},
		{"wide margins", 800, 2400, PageSpec{WidthMM: 210, HeightMM: 297, MarginMM: 40}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Paginate(tt.w, tt.h, tt.page)
			if err != nil {
				t.Fatalf("Paginate: %v", err)
			}
			if len(l.Pages) != tt.wantPages {
				t.Errorf("pages = %d, want %d", len(l.Pages), tt.wantPages)
			}

			seen := make([]int, tt.h)
			for i, p := range l.Pages {
				if p.Bottom <= p.Top {
					t.Errorf("page %d is empty: %+v", i, p)
				}
				for y := p.Top; y < p.Bottom; y++ {
					seen[y]++
				}
				if i > 0 && p.OffsetMM >= l.Pages[i-1].OffsetMM {
					t.Errorf("offset did not decrease on page %d", i)
				}
			}
			for y, n := range seen {
				if n != 1 {
					t.Fatalf("row %d appears %d times", y, n)
				}
			}
		})
	}
}

func TestPaginateScalesToContentWidth(t *testing.T) {
	l, err := Paginate(380, 1000, A4)
	if err != nil {
		t.Fatal(err)
	}
	if l.ImageWidthMM != 190 || l.ImageHeightMM != 500 {
		t.Errorf("scaled size = %vx%v mm", l.ImageWidthMM, l.ImageHeightMM)
	}
	if l.Pages[0].OffsetMM != 10 || l.Pages[1].OffsetMM != 10-277 {
		t.Errorf("offsets = %v, %v", l.Pages[0].OffsetMM, l.Pages[1].OffsetMM)
	}
}

func TestPaginateRejectsEmpty(t *testing.T) {
	if _, err := Paginate(0, 10, A4); err != ErrEmptyImage {
		t.Errorf("err = %v", err)
	}
	if _, err := Paginate(10, 10, PageSpec{WidthMM: 10, HeightMM: 10, MarginMM: 5}); err == nil {
		t.Error("want error for page without content area")
	}
}
