// Package history records completed draws in Redis so an organizer can audit
// them and re-send a notification without drawing again.
//
// All keys are namespaced by a slug of the game name so several games can
// share one Redis server.
package history

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dyluth/santa/internal/draw"
	"github.com/google/uuid"
)

// Record is one completed draw.
type Record struct {
	ID          string     `json:"id"`            // UUID - unique identifier for this draw
	Game        string     `json:"game"`          // Game name as written in the config
	CreatedAtMs int64      `json:"created_at_ms"` // Unix timestamp in milliseconds
	Attempts    int        `json:"attempts"`      // Search attempts the draw needed
	Seed        int64      `json:"seed"`          // Seed of the draw's random source (0 = unknown)
	Dry         bool       `json:"dry"`           // Notifications were printed, not sent
	Assignments draw.Cycle `json:"assignments"`   // The giver → receiver cycle
}

// NewRecord builds a record for a draw that has just completed.
func NewRecord(game string, d *draw.Draw, cycle draw.Cycle, dry bool) *Record {
	return &Record{
		ID:          uuid.New().String(),
		Game:        game,
		CreatedAtMs: time.Now().UnixMilli(),
		Attempts:    d.Attempts(),
		Seed:        d.Seed(),
		Dry:         dry,
		Assignments: cycle,
	}
}

// Validate checks the fields required to store a record.
func (r *Record) Validate() error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("id must be a valid UUID: %w", err)
	}
	if r.Game == "" {
		return fmt.Errorf("game is required")
	}
	if len(r.Assignments) < 2 {
		return fmt.Errorf("a draw has at least 2 assignments (got %d)", len(r.Assignments))
	}
	return nil
}

// Participants returns how many people took part in the draw.
func (r *Record) Participants() int {
	return len(r.Assignments)
}

// Slug turns a game name into a key-safe namespace: lowercase letters and
// digits separated by single hyphens.
func Slug(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
