package export

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/ego5g/turizm/pkg/planner"
)

// DaySection is one "Day N" block of an itinerary.
type DaySection struct {
	Day   int
	Title string
	Body  []string
}

var dayRe = regexp.MustCompile(`(?i)^(?:day|день|დღე)\s+(\d{1,2})\b[\s:.,\-–—]*(.*)$`)

// DaySections finds the "Day N" headings in a Markdown itinerary. Text before
// the first heading is ignored.
func DaySections(md string) []DaySection {
	var out []DaySection
	for _, ln := range MarkdownLines(md) {
		if ln.Style == StyleBlank {
			continue
		}
		if m := dayRe.FindStringSubmatch(ln.Text); m != nil && ln.Style != StyleBullet {
			n, _ := strconv.Atoi(m[1])
			out = append(out, DaySection{Day: n, Title: strings.TrimSpace(m[2])})
			continue
		}
		if len(out) > 0 {
			text := ln.Text
			if ln.Style == StyleBullet {
				text = "- " + text
			}
			out[len(out)-1].Body = append(out[len(out)-1].Body, text)
		}
	}
	return out
}

// WriteICS writes one all-day event per day section starting at opts.Start,
// or a single event covering the plan when it has no day sections.
func WriteICS(w io.Writer, p planner.Plan, opts Options) error {
	opts = opts.withDefaults()
	start := opts.startDate()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//turizm//itinerary//EN")
	cal.SetName(p.Destination)

	sections := DaySections(p.Result)
	if len(sections) == 0 {
		var body []string
		for _, ln := range MarkdownLines(p.Result) {
			if ln.Style != StyleBlank {
				body = append(body, ln.Text)
			}
		}
		addEvent(cal, fmt.Sprintf("%s@turizm", p.ID), p.Destination, p.Destination, strings.Join(body, "\n"), start, opts.Now)
	}
	// A repeated day heading gets its own event and a numbered UID.
	seen := map[int]int{}
	for _, s := range sections {
		summary := fmt.Sprintf("%s: Day %d", p.Destination, s.Day)
		if s.Title != "" {
			summary += " - " + s.Title
		}
		uid := fmt.Sprintf("%s-day-%d@turizm", p.ID, s.Day)
		if seen[s.Day]++; seen[s.Day] > 1 {
			uid = fmt.Sprintf("%s-day-%d-%d@turizm", p.ID, s.Day, seen[s.Day])
		}
		addEvent(cal, uid, summary, p.Destination,
			strings.Join(s.Body, "\n"), start.AddDate(0, 0, s.Day-1), opts.Now)
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func addEvent(cal *ics.Calendar, id, summary, location, desc string, day, now time.Time) {
	ev := cal.AddEvent(id)
	ev.SetDtStampTime(now)
	ev.SetCreatedTime(now)
	ev.SetAllDayStartAt(day)
	ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
	ev.SetSummary(summary)
	ev.SetLocation(location)
	if desc != "" {
		ev.SetDescription(desc)
	}
}
