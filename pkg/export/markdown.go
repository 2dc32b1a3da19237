package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/ego5g/turizm/pkg/planner"
)

// WriteMarkdown writes the plan as a standalone Markdown document.
func WriteMarkdown(w io.Writer, p planner.Plan, opts Options) error {
	opts = opts.withDefaults()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Destination)
	meta := []string{p.Time().In(opts.Location).Format(timeLayout)}
	if p.Duration != "" {
		meta = append(meta, p.Duration)
	}
	if p.Interests != "" {
		meta = append(meta, p.Interests)
	}
	fmt.Fprintf(&b, "_%s_\n\n", strings.Join(meta, " · "))
	b.WriteString(strings.TrimRight(p.Result, "\n"))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
