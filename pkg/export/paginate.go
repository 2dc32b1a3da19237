package export

import (
	"errors"
	"math"
)

// PageSpec is a page size in millimetres with a uniform margin.
type PageSpec struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
}

var A4 = PageSpec{WidthMM: 210, HeightMM: 297, MarginMM: 10}

func (p PageSpec) ContentWidth() float64  { return p.WidthMM - 2*p.MarginMM }
func (p PageSpec) ContentHeight() float64 { return p.HeightMM - 2*p.MarginMM }

// Placement puts the rendered image on one page. OffsetMM is where the
// image's top edge lands (it moves up by one content height per page);
// rows [Top, Bottom) of the image are the ones inside the page's content area.
type Placement struct {
	OffsetMM float64
	Top      int
	Bottom   int
}

// Layout is the result of Paginate.
type Layout struct {
	ImageWidthMM  float64
	ImageHeightMM float64
	Pages         []Placement
}

var ErrEmptyImage = errors.New("export: nothing to paginate")

// Paginate scales an imgW×imgH image to the page's content width and slices
// it across as many pages as needed. Consecutive placements share their
// boundary row, so every pixel row falls on exactly one page.
func Paginate(imgW, imgH int, page PageSpec) (Layout, error) {
	if imgW <= 0 || imgH <= 0 {
		return Layout{}, ErrEmptyImage
	}
	contentW, contentH := page.ContentWidth(), page.ContentHeight()
	if contentW <= 0 || contentH <= 0 {
		return Layout{}, errors.New("export: page margins leave no content area")
	}

	l := Layout{
		ImageWidthMM:  contentW,
		ImageHeightMM: float64(imgH) * contentW / float64(imgW),
	}
	rowsPerMM := float64(imgW) / contentW

	top := 0
	for k := 0; top < imgH; k++ {
		bottom := imgH
		if end := math.Round(float64(k+1) * contentH * rowsPerMM); end < float64(imgH) {
			bottom = int(end)
		}
		if bottom <= top {
			bottom = top + 1
		}
		l.Pages = append(l.Pages, Placement{
			OffsetMM: page.MarginMM - float64(k)*contentH,
			Top:      top,
			Bottom:   bottom,
		})
		top = bottom
	}
	return l, nil
}
