package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/internal/presenter"
	"github.com/bobby-s-dev/weather-widget/internal/scheduler"
	"github.com/bobby-s-dev/weather-widget/pkg/client"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRendererMissing = errors.New("weather widget renderer not found")
	ErrWidgetDestroyed = errors.New("weather widget destroyed")
)

const fetchErrorMessage = "Unable to load weather data"

type State string

const (
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

type ErrorView struct {
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// View is everything a renderer needs. Exactly one of Display and Error is
// set when State is loaded or error; neither is set while loading.
type View struct {
	WidgetID  string                  `json:"widget_id"`
	State     State                   `json:"state"`
	Display   *presenter.DisplayModel `json:"display,omitempty"`
	Error     *ErrorView              `json:"error,omitempty"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Renderer turns a View into visible output. User actions flow back through
// the Widget's exported methods.
type Renderer interface {
	Render(view View)
}

type LocationSource interface {
	Resolve(ctx context.Context) models.LocationInfo
}

type ForecastFetcher interface {
	GetForecast(ctx context.Context, coords models.Coordinates, days int) (*models.ForecastPayload, error)
}

type UnitPreferences interface {
	LoadUnits(ctx context.Context) (models.Units, bool, error)
	SaveUnits(ctx context.Context, units models.Units) error
}

type Dependencies struct {
	Renderer    Renderer
	Locations   LocationSource
	Fetcher     ForecastFetcher
	Preferences UnitPreferences
	Metrics     *Metrics
	Logger      *zap.Logger
}

// Widget runs the locate, cache, fetch, present pipeline for one display.
type Widget struct {
	id          string
	renderer    Renderer
	locations   LocationSource
	fetcher     ForecastFetcher
	preferences UnitPreferences
	cache       *ForecastCache
	metrics     *Metrics
	logger      *zap.Logger
	scheduler   *scheduler.Scheduler
	now         func() time.Time

	inFlight  atomic.Bool
	started   atomic.Bool
	destroyed atomic.Bool

	renderMu sync.Mutex

	mu       sync.RWMutex
	config   models.WidgetConfig
	payload  *models.ForecastPayload
	location models.LocationInfo
	view     View
}

func NewWidget(ctx context.Context, cfg models.WidgetConfig, deps Dependencies) (*Widget, error) {
	if deps.Renderer == nil {
		return nil, ErrRendererMissing
	}
	if deps.Locations == nil || deps.Fetcher == nil {
		return nil, fmt.Errorf("weather widget requires a location source and a forecast fetcher")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	if cfg.Units == "" {
		cfg.Units = models.UnitsMetric
	}
	cfg.ForecastDays = models.ClampForecastDays(cfg.ForecastDays)

	id := uuid.New().String()
	logger := deps.Logger.With(zap.String("widget_id", id))

	w := &Widget{
		id:          id,
		renderer:    deps.Renderer,
		locations:   deps.Locations,
		fetcher:     deps.Fetcher,
		preferences: deps.Preferences,
		cache:       NewForecastCache(cfg.CacheTimeout, logger),
		metrics:     deps.Metrics,
		logger:      logger,
		now:         time.Now,
		config:      cfg,
	}
	w.view = View{WidgetID: id, State: StateLoading}

	if w.preferences != nil {
		units, ok, err := w.preferences.LoadUnits(ctx)
		if err != nil {
			logger.Warn("Failed to load unit preference", zap.Error(err))
		} else if ok {
			w.config.Units = units
		}
	}

	w.scheduler = scheduler.NewScheduler("widget-refresh-"+id[:8], cfg.RefreshInterval, 30*time.Second, w.Refresh, logger)

	logger.Info("Weather widget created",
		zap.String("units", string(w.config.Units)),
		zap.Int("forecast_days", w.config.ForecastDays),
		zap.Duration("refresh_interval", w.config.RefreshInterval))

	return w, nil
}

// Start shows the loading state, runs the first refresh and then starts the
// auto-refresh timer. The timer is started even when the first refresh
// fails; that failure is returned.
func (w *Widget) Start(ctx context.Context) error {
	if w.destroyed.Load() {
		return ErrWidgetDestroyed
	}
	if !w.started.CompareAndSwap(false, true) {
		return nil
	}

	w.showLoading()
	refreshErr := w.Refresh(ctx)

	if err := w.scheduler.Start(); err != nil {
		w.logger.Error("Failed to start auto-refresh", zap.Error(err))
	}

	return refreshErr
}

// Refresh runs one pipeline cycle. A call made while another cycle is in
// flight is dropped and returns nil.
func (w *Widget) Refresh(ctx context.Context) error {
	if w.destroyed.Load() {
		return ErrWidgetDestroyed
	}
	if !w.inFlight.CompareAndSwap(false, true) {
		w.metrics.droppedRefresh.Inc()
		w.logger.Debug("Refresh already in flight, dropping request")
		return nil
	}
	defer w.inFlight.Store(false)

	cfg := w.Config()
	location := w.locations.Resolve(ctx)

	payload, ok := w.cache.Lookup(location.Coordinates, cfg.ForecastDays)
	if ok {
		w.metrics.cacheLookups.WithLabelValues("hit").Inc()
		w.logger.Debug("Cache hit for forecast", zap.String("key", location.Coordinates.Key()))
	} else {
		w.metrics.cacheLookups.WithLabelValues("miss").Inc()
		w.logger.Debug("Cache miss for forecast, fetching fresh data",
			zap.String("key", location.Coordinates.Key()))

		startTime := time.Now()
		fetched, err := w.fetcher.GetForecast(ctx, location.Coordinates, cfg.ForecastDays)
		w.metrics.fetchDuration.Observe(time.Since(startTime).Seconds())
		if err != nil {
			if w.destroyed.Load() {
				w.logger.Debug("Fetch ended after destroy", zap.Error(err))
				return ErrWidgetDestroyed
			}
			kind := errorKind(err)
			w.metrics.fetchFailures.WithLabelValues(kind).Inc()
			w.metrics.refreshes.WithLabelValues("error").Inc()
			w.logger.Error("Failed to fetch forecast",
				zap.String("location", location.DisplayName),
				zap.String("kind", kind),
				zap.Error(err))
			w.showError(kind)
			return fmt.Errorf("failed to fetch forecast for %s: %w", location.Coordinates.Key(), err)
		}

		w.cache.Store(location.Coordinates, fetched)
		payload = fetched
	}

	if w.destroyed.Load() {
		return ErrWidgetDestroyed
	}

	w.mu.Lock()
	w.payload = payload
	w.location = location
	w.mu.Unlock()

	w.metrics.refreshes.WithLabelValues("success").Inc()
	w.present(false)
	return nil
}

// RefreshAsync queues a pipeline run on the auto-refresh scheduler and
// returns at once. The run is bound to the widget's lifetime, not the caller's.
func (w *Widget) RefreshAsync() error {
	if w.destroyed.Load() {
		return ErrWidgetDestroyed
	}
	w.scheduler.ForceRun()
	return nil
}

// Retry is the action offered by the error state.
func (w *Widget) Retry(ctx context.Context) error {
	if w.State() == StateError {
		w.showLoading()
	}
	return w.Refresh(ctx)
}

// ToggleUnits switches unit systems, persists the choice and refreshes.
func (w *Widget) ToggleUnits(ctx context.Context) error {
	w.mu.Lock()
	w.config.Units = w.config.Units.Toggle()
	units := w.config.Units
	w.mu.Unlock()

	return w.applyUnits(ctx, units)
}

func (w *Widget) SetUnits(ctx context.Context, units models.Units) error {
	if _, err := models.ParseUnits(string(units)); err != nil {
		return err
	}

	w.mu.Lock()
	w.config.Units = units
	w.mu.Unlock()

	return w.applyUnits(ctx, units)
}

func (w *Widget) applyUnits(ctx context.Context, units models.Units) error {
	if w.preferences != nil {
		if err := w.preferences.SaveUnits(ctx, units); err != nil {
			w.logger.Warn("Failed to persist unit preference",
				zap.String("units", string(units)),
				zap.Error(err))
		}
	}
	w.logger.Info("Units changed", zap.String("units", string(units)))

	return w.Refresh(ctx)
}

// SetForecastDays re-presents the current payload, or refreshes when it
// does not cover the requested number of days.
func (w *Widget) SetForecastDays(ctx context.Context, days int) error {
	days = models.ClampForecastDays(days)

	w.mu.Lock()
	w.config.ForecastDays = days
	covered := w.payload != nil && len(w.payload.Daily) >= days
	w.mu.Unlock()

	if covered {
		w.present(true)
		return nil
	}
	return w.Refresh(ctx)
}

func (w *Widget) SetShowHourly(show bool) {
	w.mu.Lock()
	w.config.ShowHourly = show
	w.mu.Unlock()
	w.present(true)
}

func (w *Widget) SetShowForecast(show bool) {
	w.mu.Lock()
	w.config.ShowForecast = show
	w.mu.Unlock()
	w.present(true)
}

func (w *Widget) SetRefreshInterval(interval time.Duration) error {
	if err := w.scheduler.Reschedule(interval); err != nil {
		return err
	}

	w.mu.Lock()
	w.config.RefreshInterval = interval
	w.mu.Unlock()
	return nil
}

// Destroy stops auto-refresh. It is safe to call more than once.
func (w *Widget) Destroy() {
	if !w.destroyed.CompareAndSwap(false, true) {
		return
	}
	w.scheduler.Stop()
	w.logger.Info("Weather widget destroyed")
}

func (w *Widget) Config() models.WidgetConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

func (w *Widget) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.view.State
}

func (w *Widget) View() View {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.view
}

func (w *Widget) GetStatus() map[string]interface{} {
	w.mu.RLock()
	view := w.view
	cfg := w.config
	w.mu.RUnlock()

	return map[string]interface{}{
		"widget_id":   w.id,
		"state":       view.State,
		"updated_at":  view.UpdatedAt,
		"in_flight":   w.inFlight.Load(),
		"destroyed":   w.destroyed.Load(),
		"config":      cfg,
		"cache_stats": w.cache.GetStats(),
		"scheduler":   w.scheduler.GetStatus(),
	}
}

func (w *Widget) showLoading() {
	w.render(func() View {
		return View{WidgetID: w.id, State: StateLoading, UpdatedAt: w.now()}
	})
}

func (w *Widget) showError(kind string) {
	w.render(func() View {
		return View{
			WidgetID:  w.id,
			State:     StateError,
			Error:     &ErrorView{Message: fetchErrorMessage, Kind: kind, Retryable: true},
			UpdatedAt: w.now(),
		}
	})
}

// present renders the current payload. With onlyIfLoaded it leaves loading
// and error states untouched, which is what settings changes need.
func (w *Widget) present(onlyIfLoaded bool) {
	w.render(func() View {
		if w.payload == nil || (onlyIfLoaded && w.view.State != StateLoaded) {
			return w.view
		}
		display := presenter.Present(w.payload, w.config, w.location, w.now())
		return View{WidgetID: w.id, State: StateLoaded, Display: &display, UpdatedAt: w.now()}
	})
}

// render builds the next view under the state lock and hands it to the
// renderer outside it. renderMu keeps views reaching the renderer in the
// order they were built.
func (w *Widget) render(build func() View) {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	w.mu.Lock()
	view := build()
	w.view = view
	w.mu.Unlock()

	w.renderer.Render(view)
}

func errorKind(err error) string {
	var fetchErr *client.FetchError
	var networkErr *client.NetworkError
	var parseErr *client.ParseError

	switch {
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &networkErr), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "network"
	default:
		return "unknown"
	}
}
