// Package httpapi is the HTTP layer of the fieldtrack API.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"fieldtrack.org/internal/obs"
	"fieldtrack.org/internal/report"
	"fieldtrack.org/internal/stream"
	"fieldtrack.org/internal/track"
)

// ReadyProbe checks readiness, typically a database ping.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

type readinessChecker interface {
	Check(ctx context.Context) error
}

// API wires the HTTP surface: report endpoints, the time-entry write path,
// exports, auth and the ops endpoints.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	store    track.Store
	entries  *track.Service
	reports  *report.Service
	stream   *stream.Stream
	validate *validator.Validate

	tokenTTL   time.Duration
	rateBurst  int
	ratePerSec int
}

func New(rp ReadyProbe, version string, store track.Store, st *stream.Stream) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		store:      store,
		entries:    track.NewService(store),
		reports:    report.NewService(store),
		stream:     st,
		validate:   validator.New(),
		tokenTTL:   15 * time.Minute,
		rateBurst:  20,
		ratePerSec: 10,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("/v1/auth/token", a.handleAuthToken)

	// time entries
	a.mux.HandleFunc("/v1/time-entries", a.handleEntriesCollection)

	// reports
	a.mux.HandleFunc("/v1/reports/regional-summary/", a.handleRegionalSummary)
	a.mux.HandleFunc("/v1/reports/regional-comparison", a.handleRegionalComparison)
	a.mux.HandleFunc("/v1/reports/country-breakdown", a.handleCountryBreakdown)
	a.mux.HandleFunc("/v1/reports/country-breakdown/", a.handleCountryBreakdown)
	a.mux.HandleFunc("/v1/reports/language-distribution", a.handleLanguageDistribution)
	a.mux.HandleFunc("/v1/reports/language-distribution/", a.handleLanguageDistribution)
	a.mux.HandleFunc("/v1/reports/dashboard-summary", a.handleDashboardSummary)
	a.mux.HandleFunc("/v1/reports/export/", a.handleExport)

	// live entry feed
	a.mux.HandleFunc("/v1/stream/entries", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// ApplyConfig overrides the token TTL and rate-limit knobs. Zero values keep
// the defaults. Call before Handler.
func (a *API) ApplyConfig(tokenTTL time.Duration, rateBurst, ratePerSec int) {
	if tokenTTL > 0 {
		a.tokenTTL = tokenTTL
	}
	if rateBurst > 0 {
		a.rateBurst = rateBurst
	}
	if ratePerSec > 0 {
		a.ratePerSec = ratePerSec
	}
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}
