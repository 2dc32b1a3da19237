package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ego5g/turizm/pkg/export"
	"github.com/ego5g/turizm/pkg/planner"
)

func (a *app) generateCmd() *cobra.Command {
	var form planner.Form
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask for a new itinerary and add it to the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(form)
		},
	}
	cmd.Flags().StringVar(&form.Destination, "destination", "", "where to go, e.g. Kazbegi")
	cmd.Flags().StringVar(&form.Duration, "duration", "", `how long, e.g. "3 days"`)
	cmd.Flags().StringVar(&form.Interests, "interests", "", "what you enjoy (default general sightseeing)")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

// generate blocks until the plan settles; the request does not outlive the
// process.
func (a *app) generate(form planner.Form) error {
	p, task := a.store.GeneratePlan(form)
	if err := task.Wait(); err != nil {
		return fmt.Errorf("plan %s: %w", p.ID, err)
	}
	p, _ = a.store.Plan(p.ID)
	a.printPlan(p)
	return nil
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved plans, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans := a.panel.Plans()
			if len(plans) == 0 {
				fmt.Fprintln(a.out, "No saved plans yet.")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tDESTINATION\tDURATION")
			for _, p := range plans {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(p.ID), p.Status, p.Time().Format("2006-01-02 15:04"), p.Destination, p.Duration)
			}
			return w.Flush()
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a plan; without an id, the newest completed one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.panel.Open()
			defer a.panel.Close()
			if len(args) == 1 {
				id, err := a.resolve(args[0])
				if err != nil {
					return err
				}
				if err := a.panel.Select(id); err != nil {
					return err
				}
			}
			p, ok := a.panel.Selected()
			if !ok {
				fmt.Fprintln(a.out, "No completed plans to show.")
				return nil
			}
			a.printPlan(p)
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete one plan",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if err := a.panel.RequestDelete(id); err != nil {
				return err
			}
			pending, _ := a.panel.PendingDelete()
			p, _ := a.store.Plan(pending)
			if !yes && !a.confirm(fmt.Sprintf("Delete the plan for %s?", p.Destination)) {
				a.panel.CancelDelete()
				fmt.Fprintln(a.out, "Kept.")
				return nil
			}
			_, err = a.panel.ConfirmDelete()
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.panel.RequestClear()
			if !yes && !a.confirm("Delete your whole travel history?") {
				a.panel.CancelClear()
				fmt.Fprintln(a.out, "Kept.")
				return nil
			}
			return a.panel.ConfirmClear()
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var destination, duration, interests string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Generate a new plan from a completed plan's inputs",
		Long: `edit copies the destination, duration and interests of a completed plan,
applies any flags given, and generates a new plan. The original is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			form, err := a.panel.Edit(id)
			if err != nil {
				return err
			}
			defer a.store.ClearPlanToEdit()

			if cmd.Flags().Changed("destination") {
				form.Destination = destination
			}
			if cmd.Flags().Changed("duration") {
				form.Duration = duration
			}
			if cmd.Flags().Changed("interests") {
				form.Interests = interests
			}
			return a.generate(form)
		},
	}
	cmd.Flags().StringVar(&destination, "destination", "", "new destination")
	cmd.Flags().StringVar(&duration, "duration", "", "new duration")
	cmd.Flags().StringVar(&interests, "interests", "", "new interests")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var format, out, start string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a completed plan to a spreadsheet, calendar or Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			var opts export.Options
			if start != "" {
				if opts.Start, err = time.ParseInLocation(time.DateOnly, start, time.Local); err != nil {
					return fmt.Errorf("--start must be YYYY-MM-DD: %w", err)
				}
			}
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if err := a.panel.Select(id); err != nil {
				return err
			}
			p, _ := a.store.Plan(id)
			if out == "" {
				out = export.FileName(p, f)
			}

			tmp, err := os.CreateTemp(filepath.Dir(out), ".export-*")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())
			if _, err := a.panel.Export(tmp, f, opts); err != nil {
				tmp.Close()
				return err
			}
			if err := tmp.Close(); err != nil {
				return err
			}
			if err := os.Rename(tmp.Name(), out); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "xlsx, ics or md")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <destination>-itinerary.<format>)")
	cmd.Flags().StringVar(&start, "start", "", "first day of the trip for ics, YYYY-MM-DD (default tomorrow)")
	return cmd
}

var errAmbiguous = errors.New("id matches more than one plan")

// resolve expands a unique id prefix, as printed by list.
func (a *app) resolve(prefix string) (string, error) {
	matches := lo.Filter(a.store.Plans(), func(p planner.Plan, _ int) bool {
		return strings.HasPrefix(p.ID, prefix)
	})
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no plan %q", prefix)
	case 1:
		return matches[0].ID, nil
	}
	if p, ok := lo.Find(matches, func(p planner.Plan) bool { return p.ID == prefix }); ok {
		return p.ID, nil
	}
	return "", fmt.Errorf("%w: %q", errAmbiguous, prefix)
}

func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (a *app) printPlan(p planner.Plan) {
	fmt.Fprintf(a.out, "[%s]\n", shortID(p.ID))
	for _, l := range export.DetailLines(p, time.Local) {
		switch l.Style {
		case export.StyleBlank:
			fmt.Fprintln(a.out)
		case export.StyleTitle:
			fmt.Fprintln(a.out, strings.ToUpper(l.Text))
		case export.StyleHeading:
			fmt.Fprintf(a.out, "\n%s\n", l.Text)
		case export.StyleBullet:
			fmt.Fprintf(a.out, "  • %s\n", l.Text)
		default:
			fmt.Fprintln(a.out, l.Text)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
