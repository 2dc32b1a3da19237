package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ego5g/turizm/pkg/planner"
)

type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatICS      Format = "ics"
	FormatMarkdown Format = "md"
)

var (
	ErrUnknownFormat = errors.New("export: unknown format")
	ErrNotCompleted  = errors.New("export: only completed plans can be exported")
)

// ParseFormat accepts xlsx (the default), ics and md with a few aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "ics", "ical", "calendar":
		return FormatICS, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Options tune an export. Zero values pick sensible defaults.
type Options struct {
	Start    time.Time // first itinerary day for ics; default is the day after Now
	Now      time.Time
	Location *time.Location
	Page     PageSpec
	Width    int
}

func (o Options) withDefaults() Options {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Page == (PageSpec{}) {
		o.Page = A4
	}
	return o
}

func (o Options) startDate() time.Time {
	d := o.Start
	if d.IsZero() {
		d = o.Now.In(o.Location).AddDate(0, 0, 1)
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, o.Location)
}

// Write exports p in format f.
func Write(w io.Writer, p planner.Plan, f Format, opts Options) error {
	if p.Status != planner.StatusCompleted {
		return ErrNotCompleted
	}
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, p, opts)
	case FormatICS:
		return WriteICS(w, p, opts)
	case FormatMarkdown:
		return WriteMarkdown(w, p, opts)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// FileName suggests a download name such as "tbilisi-itinerary.xlsx".
func FileName(p planner.Plan, f Format) string {
	slug := Slug(p.Destination)
	if slug == "" {
		slug = "travel"
	}
	return slug + "-itinerary." + string(f)
}

// Slug lower-cases s, folds accents and keeps ASCII letters and digits
// separated by single dashes.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
