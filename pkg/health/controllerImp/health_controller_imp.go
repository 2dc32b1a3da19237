package controllerImp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	planService "github.com/ego5g/turizm/pkg/plan/service"
)

var appStart = time.Now()

// PlanStats is the part of the plan service the health report reads.
type PlanStats interface {
	Stats() planService.Stats
}

type HealthCtrl struct {
	db        *gorm.DB
	generator string
	plans     PlanStats
}

// NewHealthCtrl reports on db and the hosted plan histories, and names the
// text generator in use. plans may be nil.
func NewHealthCtrl(db *gorm.DB, generator string, plans PlanStats) *HealthCtrl {
	return &HealthCtrl{db: db, generator: generator, plans: plans}
}

type dbCheck struct {
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Err       string `json:"err,omitempty"`
}

type report struct {
	OK        bool               `json:"ok"`
	UptimeSec int                `json:"uptime_sec"`
	Generator string             `json:"generator"`
	Database  dbCheck            `json:"database"`
	Plans     *planService.Stats `json:"plans,omitempty"`
	Time      string             `json:"time"`
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	r := report{
		UptimeSec: int(time.Since(appStart).Seconds()),
		Generator: h.generator,
		Database:  h.ping(ctx),
		Time:      time.Now().UTC().Format(time.RFC3339),
	}
	r.OK = r.Database.OK
	if h.plans != nil {
		st := h.plans.Stats()
		r.Plans = &st
	}

	if !r.OK {
		return c.JSON(http.StatusServiceUnavailable, r)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *HealthCtrl) ping(ctx context.Context) dbCheck {
	start := time.Now()
	err := h.pingErr(ctx)
	out := dbCheck{OK: err == nil, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		out.Err = err.Error()
	}
	return out
}

func (h *HealthCtrl) pingErr(ctx context.Context) error {
	if h.db == nil {
		return errors.New("no database configured")
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
