package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ego5g/turizm/pkg/export"
	"github.com/ego5g/turizm/pkg/history"
	"github.com/ego5g/turizm/pkg/logger"
	"github.com/ego5g/turizm/pkg/planner"
)

// app holds what every subcommand shares. The store is opened lazily so
// that --help works without a data directory.
type app struct {
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	server   string
	dataDir  string
	lang     string
	fontDir  string
	timeout  time.Duration
	logLevel string

	store *planner.Store
	panel *history.Panel
	log   zerolog.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "planner",
		Short: "Plan trips around Georgia and keep them in a local history",
		Long: `planner asks a turizm server for day-by-day itineraries and keeps every
plan in a local history you can list, show, edit, delete and export.

Example:
  planner generate --destination Tbilisi --duration "3 days" --interests "wine, food"
  planner list
  planner export 1f0c --format ics --start 2026-05-01`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			a.store.SetLanguage(a.lang)
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVar(&a.server, "server", envOr("TURIZM_SERVER", "http://localhost:8080"), "turizm server URL (env TURIZM_SERVER)")
	f.StringVar(&a.dataDir, "data-dir", envOr("TURIZM_DATA_DIR", defaultDataDir()), "where the plan history is kept (env TURIZM_DATA_DIR)")
	f.StringVar(&a.lang, "lang", envOr("TURIZM_LANG", "en"), "itinerary language: en, ru or ka")
	f.StringVar(&a.fontDir, "font-dir", envOr("TURIZM_FONT_DIR", ""), "extra .ttf/.otf fonts for xlsx page images, e.g. Noto Sans Georgian (env TURIZM_FONT_DIR)")
	f.DurationVar(&a.timeout, "timeout", 2*time.Minute, "give up on a generation after this long")
	f.StringVar(&a.logLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(
		a.generateCmd(),
		a.listCmd(),
		a.showCmd(),
		a.deleteCmd(),
		a.clearCmd(),
		a.editCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) open() error {
	if a.store != nil {
		return nil
	}
	a.log = logger.New(logger.Config{Level: a.logLevel, Pretty: true, Output: a.errOut, Service: "planner"})

	if a.fontDir != "" {
		n, err := export.LoadFontDir(a.fontDir)
		if err != nil {
			return fmt.Errorf("--font-dir: %w", err)
		}
		a.log.Debug().Int("fonts", n).Str("dir", a.fontDir).Msg("export fonts loaded")
	}

	storage, err := planner.NewFileStorage(a.dataDir)
	if err != nil {
		return err
	}
	a.store = planner.NewStore(
		planner.NewHTTPRequester(a.server),
		planner.NewStoragePersister(storage),
		planner.WithTimeout(a.timeout),
		planner.WithNotifier(planner.NotifierFunc(a.notify)),
		planner.WithLogger(a.log),
	)
	a.panel = history.NewPanel(a.store)
	return nil
}

func (a *app) notify(n planner.Notice) {
	mark := "·"
	switch n.Kind {
	case planner.NoticeSuccess:
		mark = "✓"
	case planner.NoticeError:
		mark = "✗"
	}
	fmt.Fprintf(a.errOut, "%s %s\n", mark, n.Message)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".turizm"
	}
	return filepath.Join(dir, "turizm")
}
