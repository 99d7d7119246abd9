package api

import (
	"sync"

	"github.com/bobby-s-dev/weather-widget/internal/services"
	"go.uber.org/zap"
)

// Renderer keeps the most recent widget view so HTTP clients can poll it.
type Renderer struct {
	mu      sync.RWMutex
	view    services.View
	renders int
	logger  *zap.Logger
}

func NewRenderer(logger *zap.Logger) *Renderer {
	return &Renderer{
		view:   services.View{State: services.StateLoading},
		logger: logger,
	}
}

func (r *Renderer) Render(view services.View) {
	r.mu.Lock()
	r.view = view
	r.renders++
	r.mu.Unlock()

	r.logger.Debug("Widget view rendered", zap.String("state", string(view.State)))
}

func (r *Renderer) Latest() services.View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view
}

func (r *Renderer) Renders() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.renders
}
