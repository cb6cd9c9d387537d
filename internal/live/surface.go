// Package live relays active-session state to an external live-status
// surface, debouncing bursts of updates so rapid edits collapse into a
// single delivery. The surface is advisory: delivery failures are logged
// and never surfaced as session errors.
package live

import "github.com/claude/liftlog/internal/models"

// Surface is the outbound live-status channel. Implementations are
// best-effort; errors are logged by the coordinator and swallowed.
type Surface interface {
	// Start establishes the surface for a new session.
	Start(label string) error
	// Update pushes the current session progress.
	Update(status models.LiveStatus) error
	// End tears the surface down. Safe to call with none established.
	End() error
}

// NopSurface discards everything. Used when the live-status channel is
// disabled in config.
type NopSurface struct{}

func (NopSurface) Start(string) error              { return nil }
func (NopSurface) Update(models.LiveStatus) error  { return nil }
func (NopSurface) End() error                      { return nil }
