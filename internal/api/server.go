package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/config"
	"github.com/smokyabdulrahman/prayer-times/internal/geo"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
	"github.com/smokyabdulrahman/prayer-times/internal/schedule"
)

// dateLayout is the DD-MM-YYYY date form used in query strings and responses.
const dateLayout = "02-01-2006"

// ComputeFunc computes the times for the day of date at c.
type ComputeFunc func(date time.Time, c geo.Coordinate, p astro.Parameters) (prayer.Times, error)

// Options configures a Server.
type Options struct {
	// Defaults supply every value a request omits.
	Defaults config.Config
	// Compute defaults to astro.Compute.
	Compute        ComputeFunc
	AllowedOrigins []string
	// RatePerMinute limits requests per client IP. Zero disables limiting.
	RatePerMinute int
	Now           func() time.Time
}

// Server answers prayer-time queries over HTTP.
type Server struct {
	opts Options
	log  zerolog.Logger
}

// New returns a Server.
func New(opts Options, log zerolog.Logger) *Server {
	if opts.Compute == nil {
		opts.Compute = astro.Compute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{opts: opts, log: log}
}

// Router builds the chi router with all middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	c := corslib.New(corslib.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	if s.opts.RatePerMinute > 0 {
		r.Use(rateLimit(s.opts.RatePerMinute, time.Minute))
	}

	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/timings", s.timings)
		r.Get("/qibla", s.qibla)
		r.Get("/schedule", s.triggers)
		r.Get("/methods", s.methods)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no route for %s", r.URL.Path))
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// request is a query resolved against the defaults.
type request struct {
	cfg    config.Config
	coord  geo.Coordinate
	date   time.Time
	params astro.Parameters
}

// queryKeys maps query parameters onto config keys.
var queryKeys = map[string]string{
	"latitude":         "latitude",
	"longitude":        "longitude",
	"timezone":         "timezone",
	"method":           "method",
	"madhab":           "madhab",
	"highLatitudeRule": "high_latitude_rule",
	"dhikr":            "dhikr_reminders",
}

func (s *Server) resolve(r *http.Request) (request, error) {
	q := r.URL.Query()
	cfg := s.opts.Defaults
	for param, key := range queryKeys {
		if v := q.Get(param); v != "" {
			if err := cfg.Set(key, v); err != nil {
				return request{}, fmt.Errorf("%s: %w", param, err)
			}
		}
	}

	coord, ok := cfg.Coordinate()
	if !ok {
		return request{}, errors.New("latitude and longitude are required")
	}
	loc, err := cfg.Location()
	if err != nil {
		return request{}, err
	}

	now := s.opts.Now().In(loc)
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if raw := q.Get("date"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return request{}, fmt.Errorf("date %q must be DD-MM-YYYY", raw)
		}
		date = d
	}

	params, err := cfg.Parameters(coord.Latitude)
	if err != nil {
		return request{}, err
	}

	return request{cfg: cfg, coord: coord, date: date, params: params}, nil
}

// compute returns the raw times; azan offsets are applied by the handlers.
func (s *Server) compute(req request) (prayer.Times, error) {
	return s.opts.Compute(req.date, req.coord, req.params)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthData{
		Status: "ok",
		Time:   s.opts.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) timings(w http.ResponseWriter, r *http.Request) {
	req, err := s.resolve(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := s.compute(req)
	if err != nil {
		writeComputeError(w, err)
		return
	}
	azan := req.cfg.Azan()
	adjusted := prayer.Adjust(raw, azan)

	iqama := make(map[string]string, len(prayer.IqamaKeys))
	offsets := req.cfg.Iqama()
	for _, k := range prayer.IqamaKeys {
		iqama[k.String()] = adjusted.Get(k).Add(time.Duration(offsets.Minutes(k)) * time.Minute).Format(prayer.ClockLayout)
	}

	data := TimingsData{
		Timings:  raw.Timings(),
		Adjusted: adjusted.Timings(),
		Iqama:    iqama,
		Date: DateInfo{
			Readable:  req.date.Format("02 Jan 2006"),
			Timestamp: strconv.FormatInt(req.date.Unix(), 10),
			Gregorian: req.date.Format(dateLayout),
		},
		Meta: Meta{
			Latitude:         req.coord.Latitude,
			Longitude:        req.coord.Longitude,
			Timezone:         req.date.Location().String(),
			Method:           methodInfo(req.params.Method),
			Madhab:           req.params.Madhab.String(),
			HighLatitudeRule: req.params.HighLatitudeRule.String(),
			Offsets:          offsetMap(azan),
		},
	}

	// The night divisions need tomorrow's fajr, which may not exist.
	tomorrow := req
	tomorrow.date = req.date.AddDate(0, 0, 1)
	if next, err := s.compute(tomorrow); err == nil {
		if sunnah, err := astro.SunnahTimes(raw, next); err == nil {
			data.Sunnah = &SunnahTimings{
				Midnight:  sunnah.MiddleOfTheNight.Format(prayer.ClockLayout),
				Lastthird: sunnah.LastThirdOfTheNight.Format(prayer.ClockLayout),
			}
		}
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) qibla(w http.ResponseWriter, r *http.Request) {
	req, err := s.resolve(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bearing := geo.Qibla(req.coord)
	writeJSON(w, http.StatusOK, QiblaData{
		Latitude:   req.coord.Latitude,
		Longitude:  req.coord.Longitude,
		Direction:  bearing,
		Compass:    geo.CompassPoint(bearing),
		DistanceKm: geo.Distance(req.coord, geo.Kaaba),
	})
}

func (s *Server) triggers(w http.ResponseWriter, r *http.Request) {
	req, err := s.resolve(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	raw, err := s.compute(req)
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScheduleData{
		Date:     req.date.Format(dateLayout),
		Triggers: schedule.Plan(raw, req.cfg.ScheduleOptions()),
	})
}

func (s *Server) methods(w http.ResponseWriter, r *http.Request) {
	out := make([]MethodInfo, 0, len(astro.Methods))
	for _, m := range astro.Methods {
		out = append(out, MethodInfo{ID: m.Slug, Name: m.Name, Description: m.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func methodInfo(m astro.Method) MethodInfo {
	for _, info := range astro.Methods {
		if info.Method == m {
			return MethodInfo{ID: info.Slug, Name: info.Name}
		}
	}
	return MethodInfo{ID: m.String()}
}

func offsetMap(o prayer.Offsets) map[string]int {
	if len(o) == 0 {
		return nil
	}
	out := make(map[string]int, len(o))
	for k, v := range o {
		if v != 0 {
			out[k.String()] = v
		}
	}
	return out
}

func writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, astro.ErrUncomputable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, geo.ErrInvalidCoordinate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Code: status, Status: "OK", Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Code: status, Status: http.StatusText(status), Data: msg})
}
