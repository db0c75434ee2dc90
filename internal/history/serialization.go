package history

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dyluth/santa/internal/draw"
)

// RecordToHash converts a Record to a Redis hash. The assignments are
// JSON-encoded into a single field.
func RecordToHash(r *Record) (map[string]interface{}, error) {
	assignmentsJSON, err := json.Marshal(r.Assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal assignments: %w", err)
	}

	return map[string]interface{}{
		"id":            r.ID,
		"game":          r.Game,
		"created_at_ms": r.CreatedAtMs,
		"attempts":      r.Attempts,
		"seed":          r.Seed,
		"dry":           strconv.FormatBool(r.Dry),
		"assignments":   string(assignmentsJSON),
	}, nil
}

// HashToRecord converts a Redis hash back to a Record.
func HashToRecord(hash map[string]string) (*Record, error) {
	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	attempts, err := strconv.Atoi(hash["attempts"])
	if err != nil {
		return nil, fmt.Errorf("invalid attempts field: %w", err)
	}

	seed, err := strconv.ParseInt(hash["seed"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid seed field: %w", err)
	}

	dry, err := strconv.ParseBool(hash["dry"])
	if err != nil {
		return nil, fmt.Errorf("invalid dry field: %w", err)
	}

	var assignments draw.Cycle
	if err := json.Unmarshal([]byte(hash["assignments"]), &assignments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignments: %w", err)
	}

	return &Record{
		ID:          hash["id"],
		Game:        hash["game"],
		CreatedAtMs: createdAtMs,
		Attempts:    attempts,
		Seed:        seed,
		Dry:         dry,
		Assignments: assignments,
	}, nil
}
