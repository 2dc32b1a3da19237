package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// RenderOptions controls the detail-view image. Width is in pixels; the
// default matches an A4 page at 96 dpi.
type RenderOptions struct {
	Width   int
	Padding int
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width <= 0 {
		o.Width = 794
	}
	if o.Padding <= 0 {
		o.Padding = 32
	}
	return o
}

type styleSpec struct {
	bold   bool
	size   float64
	color  color.Color
	indent int
	prefix string
	space  int // extra pixels above the line
}

var (
	ink   = color.RGBA{0x11, 0x18, 0x27, 0xff}
	muted = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	red   = color.RGBA{0xdc, 0x26, 0x26, 0xff}
)

var styles = map[Style]styleSpec{
	StyleTitle:   {bold: true, size: 28, color: ink},
	StyleHeading: {bold: true, size: 20, color: ink, space: 10},
	StyleStrong:  {bold: true, size: 16, color: ink, space: 6},
	StyleBody:    {size: 15, color: ink},
	StyleBullet:  {size: 15, color: ink, indent: 16, prefix: "• "},
	StyleMeta:    {size: 12, color: muted, space: 4},
	StyleError:   {size: 15, color: red},
	StyleBlank:   {size: 8, color: ink},
}

type row struct {
	spec     styleSpec
	faces    *faceSet
	text     string
	x        int
	baseline int
}

// Render draws lines onto a white image of the given width; the height grows
// with the content.
func Render(lines []Line, opts RenderOptions) (*image.RGBA, error) {
	opts = opts.withDefaults()
	maxW := opts.Width - 2*opts.Padding
	if maxW <= 0 {
		return nil, fmt.Errorf("export: width %d too small", opts.Width)
	}

	var rows []row
	faces := faceCache{}
	y := opts.Padding
	for _, ln := range lines {
		spec := styles[ln.Style]
		fs, err := faces.get(spec)
		if err != nil {
			return nil, err
		}
		m := fs.primary().Metrics()
		lineH := m.Height.Ceil() + m.Height.Ceil()/3

		y += spec.space
		if ln.Style == StyleBlank {
			y += lineH
			continue
		}

		prefixW := fs.measure(spec.prefix).Ceil()
		first := true
		for _, part := range wrap(fs, fs.cover(ln.Text), maxW-spec.indent-prefixW) {
			x := opts.Padding + spec.indent
			text := part
			if first && spec.prefix != "" {
				text = spec.prefix + part
			} else if spec.prefix != "" {
				x += prefixW
			}
			rows = append(rows, row{spec: spec, faces: fs, text: text, x: x, baseline: y + m.Ascent.Ceil()})
			y += lineH
			first = false
		}
	}
	y += opts.Padding

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, y))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, r := range rows {
		d := font.Drawer{
			Dst: img,
			Src: image.NewUniform(r.spec.color),
			Dot: fixed.P(r.x, r.baseline),
		}
		r.faces.draw(&d, r.text)
	}
	return img, nil
}

// wrap breaks text into lines no wider than maxW pixels. Words wider than
// maxW are split by rune.
func wrap(fs *faceSet, text string, maxW int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	width := func(s string) int { return fs.measure(s).Ceil() }

	var out []string
	cur := ""
	for _, w := range words {
		cand := w
		if cur != "" {
			cand = cur + " " + w
		}
		if width(cand) <= maxW {
			cur = cand
			continue
		}
		if cur != "" {
			out = append(out, cur)
			cur = ""
		}
		for width(w) > maxW {
			r := []rune(w)
			n := max(len(r)-1, 1)
			for n > 1 && width(string(r[:n])) > maxW {
				n--
			}
			out = append(out, string(r[:n]))
			w = string(r[n:])
		}
		cur = w
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
