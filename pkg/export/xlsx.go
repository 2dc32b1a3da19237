package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ego5g/turizm/pkg/planner"
)

const (
	mmPerInch   = 25.4
	excelDPI    = 96.0
	paperSizeA4 = 9
)

// PageImages crops img into one PNG per placement.
func PageImages(img image.Image, l Layout) ([][]byte, error) {
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("export: %T cannot be cropped", img)
	}

	b := img.Bounds()
	out := make([][]byte, 0, len(l.Pages))
	for _, p := range l.Pages {
		var buf bytes.Buffer
		part := si.SubImage(image.Rect(b.Min.X, b.Min.Y+p.Top, b.Max.X, b.Min.Y+p.Bottom))
		if err := png.Encode(&buf, part); err != nil {
			return nil, fmt.Errorf("export: encode page: %w", err)
		}
		out = append(out, buf.Bytes())
	}
	return out, nil
}

// WriteXLSX renders the detail view of p and writes a workbook with one
// printable A4 sheet per page slice.
func WriteXLSX(w io.Writer, p planner.Plan, opts Options) error {
	opts = opts.withDefaults()

	img, err := Render(DetailLines(p, opts.Location), RenderOptions{Width: opts.Width})
	if err != nil {
		return err
	}
	layout, err := Paginate(img.Bounds().Dx(), img.Bounds().Dy(), opts.Page)
	if err != nil {
		return err
	}
	pages, err := PageImages(img, layout)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       p.Destination,
		Subject:     "Travel itinerary",
		Creator:     "turizm",
		Description: p.Duration,
		Created:     opts.Now.UTC().Format("2006-01-02T15:04:05Z"),
	}); err != nil {
		return fmt.Errorf("export: doc props: %w", err)
	}

	// Pixels of the rendered image per pixel of the printed content width.
	scale := layout.ImageWidthMM / mmPerInch * excelDPI / float64(img.Bounds().Dx())
	size, orientation := paperSizeA4, "portrait"
	margin := opts.Page.MarginMM / mmPerInch

	for i, pic := range pages {
		sheet := fmt.Sprintf("Page %d", i+1)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("export: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("export: new sheet: %w", err)
		}

		if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{Size: &size, Orientation: &orientation}); err != nil {
			return fmt.Errorf("export: page layout: %w", err)
		}
		if err := f.SetPageMargins(sheet, &excelize.PageLayoutMarginsOptions{
			Top: &margin, Bottom: &margin, Left: &margin, Right: &margin,
		}); err != nil {
			return fmt.Errorf("export: page margins: %w", err)
		}
		if err := f.AddPictureFromBytes(sheet, "A1", &excelize.Picture{
			Extension: ".png",
			File:      pic,
			Format: &excelize.GraphicOptions{
				AltText: fmt.Sprintf("%s, page %d of %d", p.Destination, i+1, len(pages)),
				ScaleX:  scale,
				ScaleY:  scale,
			},
		}); err != nil {
			return fmt.Errorf("export: add page image: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}
