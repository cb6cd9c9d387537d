package live

import (
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// DefaultWindow is the quiescence window: the delay after the last update in
// a burst before the coalesced delivery fires.
const DefaultWindow = 300 * time.Millisecond

// Coordinator rate-limits outbound updates to a Surface. Update calls within
// the quiescence window of each other collapse into one delivery carrying
// the state as of fire time; Start and End bypass debouncing.
type Coordinator struct {
	surface Surface
	window  time.Duration
	log     *slog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	active bool
}

// NewCoordinator creates a Coordinator over the given surface. A nil surface
// is replaced with NopSurface; a zero window falls back to DefaultWindow.
func NewCoordinator(surface Surface, window time.Duration, log *slog.Logger) *Coordinator {
	if surface == nil {
		surface = NopSurface{}
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Coordinator{surface: surface, window: window, log: log}
}

// Start establishes the surface immediately. An already-established surface
// is torn down and replaced, and any pending debounced delivery from the
// previous session is cancelled.
func (c *Coordinator) Start(label string) {
	c.mu.Lock()
	c.cancelPendingLocked()
	if c.active {
		if err := c.surface.End(); err != nil {
			c.log.Warn("live surface end failed", "error", err)
		}
	}
	c.active = true
	c.mu.Unlock()

	if err := c.surface.Start(label); err != nil {
		c.log.Warn("live surface start failed", "label", label, "error", err)
	}
}

// Update schedules a debounced delivery. The payload is produced by provider
// at fire time, not at call time, so the delivery reflects the newest state
// once the burst has quiesced.
func (c *Coordinator) Update(provider func() models.LiveStatus) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.cancelPendingLocked()
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.window, func() { c.fire(gen, provider) })
	c.mu.Unlock()
}

// UpdateNow cancels any pending debounced delivery and sends immediately.
// Reserved for lifecycle moments (session start, restore) where latency
// matters more than rate-limiting.
func (c *Coordinator) UpdateNow(status models.LiveStatus) {
	c.mu.Lock()
	c.cancelPendingLocked()
	c.gen++
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err := c.surface.Update(status); err != nil {
		c.log.Warn("live surface update failed", "error", err)
	}
}

// End cancels any pending delivery and tears down the surface. Idempotent.
func (c *Coordinator) End() {
	c.mu.Lock()
	c.cancelPendingLocked()
	c.gen++
	wasActive := c.active
	c.active = false
	c.mu.Unlock()

	if !wasActive {
		return
	}
	if err := c.surface.End(); err != nil {
		c.log.Warn("live surface end failed", "error", err)
	}
}

// fire delivers a debounced update, unless a newer Update, UpdateNow, Start,
// or End superseded it while the timer was sleeping.
func (c *Coordinator) fire(gen uint64, provider func() models.LiveStatus) {
	c.mu.Lock()
	if gen != c.gen || !c.active {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	// Compute the payload outside the lock: the provider re-enters the
	// session controller's lock to read current state.
	status := provider()

	c.mu.Lock()
	stale := gen != c.gen || !c.active
	c.mu.Unlock()
	if stale {
		return
	}

	if err := c.surface.Update(status); err != nil {
		c.log.Warn("live surface update failed", "error", err)
	}
}

func (c *Coordinator) cancelPendingLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
