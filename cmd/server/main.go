package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ego5g/turizm/config"
	"github.com/ego5g/turizm/database"
	"github.com/ego5g/turizm/router"

	"github.com/ego5g/turizm/pkg/ai"
	"github.com/ego5g/turizm/pkg/export"
	"github.com/ego5g/turizm/pkg/logger"
	"github.com/ego5g/turizm/pkg/metrics"
	"github.com/ego5g/turizm/pkg/middleware"

	// Auth
	authCtrlImp "github.com/ego5g/turizm/pkg/auth/controllerImp"

	// Itinerary proxy
	itineraryCtrlImp "github.com/ego5g/turizm/pkg/itinerary/controllerImp"
	itinerarySvcImp "github.com/ego5g/turizm/pkg/itinerary/serviceImp"

	// Hosted plan history
	planCtrlImp "github.com/ego5g/turizm/pkg/plan/controllerImp"
	planRepoImp "github.com/ego5g/turizm/pkg/plan/repositoryImp"
	planSvcImp "github.com/ego5g/turizm/pkg/plan/serviceImp"

	// Forum
	forumCtrlImp "github.com/ego5g/turizm/pkg/forum/controllerImp"
	forumRepoImp "github.com/ego5g/turizm/pkg/forum/repositoryImp"
	forumSvcImp "github.com/ego5g/turizm/pkg/forum/serviceImp"

	// Health
	healthCtrlImp "github.com/ego5g/turizm/pkg/health/controllerImp"
)

func main() {
	// 1) Config + logging
	cfg := config.Load()
	log := logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, WithCaller: cfg.LogCaller})
	log.Info().Str("config", cfg.String()).Msg("starting")

	// 2) DB (sqlite) + automigrate
	db, err := database.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer database.Close(db)

	m := metrics.New()

	if n, err := export.LoadFontDir(cfg.FontDir); err != nil {
		log.Warn().Err(err).Str("dir", cfg.FontDir).Msg("export fonts")
	} else if n > 0 {
		log.Info().Int("fonts", n).Str("dir", cfg.FontDir).Msg("export fonts loaded")
	}

	// 3) Text generator (mock fallback)
	llm := newGenerator(cfg, log)

	// 4) Services + controllers
	genSvc := itinerarySvcImp.NewItinerarySvc(llm, logger.Component(log, "itinerary"), m, cfg.GenerateTimeout)
	itCtrl := itineraryCtrlImp.NewItineraryCtrl(genSvc)

	plSvc := planSvcImp.NewPlanService(planRepoImp.New(db), genSvc, logger.Component(log, "plans"), m, cfg.GenerateTimeout)
	plCtrl := planCtrlImp.NewPlanCtrl(plSvc, logger.Component(log, "plans"))

	fLog := logger.Component(log, "forum")
	fSvc := forumSvcImp.NewForumService(forumRepoImp.New(db, m), fLog, m)
	fCtrl := forumCtrlImp.NewForumCtrl(fSvc, fLog)

	authCtrl := authCtrlImp.NewAuthController()
	hCtrl := healthCtrlImp.NewHealthCtrl(db, llm.Provider(), plSvc)

	// 5) Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = middleware.IPExtractor(cfg.TrustProxy)
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(logger.Component(log, "http"), m))

	index := filepath.Join(cfg.StaticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		log.Warn().Err(err).Msg("static index not found")
	}
	e.Static("/static", cfg.StaticDir)
	e.File("/", index)

	router.New(e, m, cfg.GenerateRateLimit, itCtrl, plCtrl, fCtrl, authCtrl, hCtrl)

	// 6) Start, then drain on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Str("generator", llm.Provider()).Str("model", llm.Model()).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// Hosted generations persist their result when they settle.
	drained := make(chan struct{})
	go func() {
		plSvc.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Warn().Msg("gave up waiting for in-flight plans")
	}
}

func newGenerator(cfg config.AppConfig, log zerolog.Logger) ai.Client {
	switch cfg.Provider() {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("LLM_PROVIDER=gemini without GOOGLE_AI_API_KEY")
		}
		return ai.NewGemini(cfg.GeminiEndpoint, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai":
		return ai.NewOpenAI(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel)
	default:
		log.Warn().Msg("no generator credentials, serving mock itineraries")
		return ai.NewMock()
	}
}
