package api

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/dataset"
	"github.com/launchdash/launchdash/server/internal/metrics"
	"github.com/launchdash/launchdash/server/internal/pipeline"
)

// transport is the metrics label for requests served here.
const transport = "http"

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads the shared dataset and runs the pipeline on every request.
type Handler struct {
	ds     *dataset.Dataset
	slider pipeline.SliderBounds
	rec    *metrics.Recorder
	router chi.Router
}

// New creates a Handler wired to the given dataset and registers all routes.
// rec may be nil.
func New(ds *dataset.Dataset, slider pipeline.SliderBounds, rec *metrics.Recorder) http.Handler {
	h := &Handler{ds: ds, slider: slider, rec: rec, router: chi.NewRouter()}

	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.Recoverer)
	h.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, r, http.StatusNotFound, "not found")
	})
	h.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	h.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/layout", h.layout)
		r.Get("/sites", h.sites)
		r.Get("/summary", h.summary)
		r.Get("/scatter", h.scatter)
		r.Get("/charts", h.charts)
	})

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health: dataset size and payload statistics.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, r, http.StatusOK, HealthResponse{
		Status:  "ok",
		Records: h.ds.Len(),
		Sites:   len(h.ds.Sites()),
		Payload: h.ds.PayloadStats(),
	})
}

// layout returns GET /api/v1/layout: dropdown and slider definitions.
func (h *Handler) layout(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, r, http.StatusOK, pipeline.BuildLayout(h.ds, h.slider))
}

// sites returns GET /api/v1/sites: distinct launch sites in load order.
func (h *Handler) sites(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, r, http.StatusOK, h.ds.Sites())
}

// summary returns GET /api/v1/summary?site=: the proportion chart relation.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	site := siteParam(r)

	start := time.Now()
	out, err := pipeline.SummarizeOutcomesBySite(h.ds, site)
	h.rec.Observe("summary", transport, start, err)
	if err != nil {
		h.pipelineErr(w, r, err)
		return
	}
	jsonResp(w, r, http.StatusOK, out)
}

// scatter returns GET /api/v1/scatter?site=&low=&high=: the scatter relation.
func (h *Handler) scatter(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		jsonErr(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	out, err := pipeline.FilterPayloadOutcomes(h.ds, sel.Site, sel.PayloadRange.Low, sel.PayloadRange.High)
	h.rec.Observe("scatter", transport, start, err)
	if err != nil {
		h.pipelineErr(w, r, err)
		return
	}
	h.rec.ObservePoints(len(out))
	jsonResp(w, r, http.StatusOK, out)
}

// charts returns GET /api/v1/charts?site=&low=&high=: both charts with
// titles and scatter statistics.
func (h *Handler) charts(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selection(r)
	if err != nil {
		jsonErr(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	out, err := pipeline.BuildCharts(h.ds, sel)
	h.rec.Observe("charts", transport, start, err)
	if err != nil {
		h.pipelineErr(w, r, err)
		return
	}
	h.rec.ObservePoints(len(out.Scatter.Points))
	jsonResp(w, r, http.StatusOK, out)
}

// --- helpers ----------------------------------------------------------------

// selection reads site, low and high from the query string. Missing bounds
// default to the dataset's payload extremes. NaN and infinite bounds are
// rejected since the selection is echoed back as JSON.
func (h *Handler) selection(r *http.Request) (types.FilterSelection, error) {
	sel := pipeline.DefaultSelection(h.ds)
	sel.Site = siteParam(r)

	q := r.URL.Query()
	if v := q.Get("low"); v != "" {
		f, err := parseBound("low", v)
		if err != nil {
			return sel, err
		}
		sel.PayloadRange.Low = f
	}
	if v := q.Get("high"); v != "" {
		f, err := parseBound("high", v)
		if err != nil {
			return sel, err
		}
		sel.PayloadRange.High = f
	}
	return sel, nil
}

func parseBound(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", name, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: %q is not a finite number", name, v)
	}
	return f, nil
}

func siteParam(r *http.Request) string {
	if s := r.URL.Query().Get("site"); s != "" {
		return s
	}
	return types.AllSites
}

func (h *Handler) pipelineErr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, types.ErrUnknownSite) {
		slog.Debug("api: unknown site requested",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		jsonErr(w, r, http.StatusNotFound, err.Error())
		return
	}
	slog.Error("api: pipeline failed",
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"err", err,
	)
	jsonErr(w, r, http.StatusInternalServerError, "internal error")
}

func jsonResp(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	render.Status(r, code)
	render.JSON(w, r, v)
}

func jsonErr(w http.ResponseWriter, r *http.Request, code int, msg string) {
	jsonResp(w, r, code, errorResponse{Error: msg})
}
