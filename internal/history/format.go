package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// FormatTable writes draws as a table. Assignments are never shown here so
// listing history does not spoil the game.
// Returns the number of draws formatted.
func FormatTable(w io.Writer, records []*Record, gameName string) int {
	if len(records) == 0 {
		fmt.Fprintf(w, "No draws recorded for '%s'\n", gameName)
		return 0
	}

	fmt.Fprintf(w, "Draws for '%s':\n\n", gameName)

	fmt.Fprintf(w, "%-10s %-20s %-6s %-8s %-5s %s\n",
		"ID", "CREATED", "PEOPLE", "ATTEMPTS", "MODE", "AGE")
	fmt.Fprintf(w, "%-10s %-20s %-6s %-8s %-5s %s\n",
		"----------", "--------------------", "------", "--------", "-----", "--------")

	for _, r := range records {
		fmt.Fprintf(w, "%-10s %-20s %-6d %-8d %-5s %s\n",
			formatID(r.ID),
			formatCreated(r.CreatedAtMs),
			r.Participants(),
			r.Attempts,
			formatMode(r.Dry),
			formatAge(r.CreatedAtMs),
		)
	}

	noun := "draw"
	if len(records) != 1 {
		noun = "draws"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(records), noun)

	return len(records)
}

// FormatJSONL writes one compact JSON object per draw, one per line.
func FormatJSONL(w io.Writer, records []*Record) error {
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal draw to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatJSON writes a single draw as pretty-printed JSON.
func FormatJSON(w io.Writer, r *Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal draw to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatMode(dry bool) string {
	if dry {
		return "dry"
	}
	return "sent"
}

func formatCreated(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}
	return time.UnixMilli(timestampMs).UTC().Format("2006-01-02 15:04:05")
}

// formatAge shows relative time like "2m ago" or "3d ago".
func formatAge(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := time.Since(time.UnixMilli(timestampMs))
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
