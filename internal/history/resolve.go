package history

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// MinShortIDLength is the minimum accepted length of a draw ID prefix.
const MinShortIDLength = 6

// Resolve turns a full draw ID or a unique prefix of one into the full ID.
func (c *Client) Resolve(ctx context.Context, shortID string) (string, error) {
	shortID = strings.ToLower(strings.TrimSpace(shortID))

	if _, err := uuid.Parse(shortID); err == nil && len(shortID) == 36 {
		ok, err := c.Exists(ctx, shortID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", &NotFoundError{ID: shortID}
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	matches, err := c.scanIDs(ctx, shortID)
	if err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ID: shortID}
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no draw matched an ID or prefix.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no draw found matching '%s'", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousError indicates several draws matched a short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d draws", e.ShortID, len(e.Matches))
}

// Details lists the matching IDs (up to 10, then "...and N more") with a hint.
func (e *AmbiguousError) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous short ID '%s' matches %d draws:\n", e.ShortID, len(e.Matches))

	shown := min(len(e.Matches), 10)
	for _, id := range e.Matches[:shown] {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	if len(e.Matches) > shown {
		fmt.Fprintf(&b, "  ...and %d more\n", len(e.Matches)-shown)
	}

	b.WriteString("\nUse a longer prefix to identify the draw.")
	return b.String()
}
