// Package export turns a Plan into downloadable documents: a paged
// spreadsheet of the rendered detail view, a calendar, or plain Markdown.
package export

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ego5g/turizm/pkg/planner"
)

type Style int

const (
	StyleBody Style = iota
	StyleTitle
	StyleHeading
	StyleStrong
	StyleBullet
	StyleMeta
	StyleError
	StyleBlank
)

// Line is one logical line of the detail view before wrapping.
type Line struct {
	Style Style
	Text  string
}

const timeLayout = "Jan 2, 2006 - 3:04 PM"

// DetailLines lays out the detail view of p: destination heading, a meta line,
// then the body for the plan's status.
func DetailLines(p planner.Plan, loc *time.Location) []Line {
	if loc == nil {
		loc = time.Local
	}
	meta := []string{p.Time().In(loc).Format(timeLayout)}
	if p.Duration != "" {
		meta = append(meta, p.Duration)
	}
	if p.Interests != "" {
		meta = append(meta, p.Interests)
	}

	lines := []Line{
		{Style: StyleTitle, Text: p.Destination},
		{Style: StyleMeta, Text: strings.Join(meta, "  ·  ")},
		{Style: StyleBlank},
	}
	switch p.Status {
	case planner.StatusCompleted:
		lines = append(lines, MarkdownLines(p.Result)...)
	case planner.StatusGenerating:
		lines = append(lines, Line{Style: StyleBody, Text: "Dato is working on this plan..."})
	default:
		msg := p.Result
		if msg == "" {
			msg = "An unknown error occurred."
		}
		lines = append(lines, Line{Style: StyleError, Text: "Error: " + msg})
	}
	return lines
}

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletRe  = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	orderedRe = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)
	linkRe    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphRe    = regexp.MustCompile("(\\*\\*|__|\\*|_|`)")
	ruleRe    = regexp.MustCompile(`^(\*\s*){3,}$|^(-\s*){3,}$|^(_\s*){3,}$`)
)

// MarkdownLines flattens Markdown to styled lines. Inline HTML is stripped.
func MarkdownLines(md string) []Line {
	var out []Line
	blank := true
	for _, raw := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		s := strings.TrimSpace(raw)
		if s == "" || ruleRe.MatchString(s) {
			if !blank {
				out = append(out, Line{Style: StyleBlank})
				blank = true
			}
			continue
		}
		blank = false

		switch {
		case headingRe.MatchString(s):
			m := headingRe.FindStringSubmatch(s)
			style := StyleHeading
			if len(m[1]) >= 3 {
				style = StyleStrong
			}
			out = append(out, Line{Style: style, Text: InlineText(m[2])})
		case bulletRe.MatchString(s):
			out = append(out, Line{Style: StyleBullet, Text: InlineText(bulletRe.FindStringSubmatch(s)[1])})
		case orderedRe.MatchString(s):
			m := orderedRe.FindStringSubmatch(s)
			out = append(out, Line{Style: StyleBody, Text: m[1] + ". " + InlineText(m[2])})
		default:
			out = append(out, Line{Style: StyleBody, Text: InlineText(s)})
		}
	}
	for len(out) > 0 && out[len(out)-1].Style == StyleBlank {
		out = out[:len(out)-1]
	}
	return out
}

// InlineText drops inline Markdown markers and HTML tags, keeping the text.
func InlineText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	s = linkRe.ReplaceAllString(s, "$1")
	s = emphRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
