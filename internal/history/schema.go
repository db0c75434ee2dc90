package history

import "fmt"

// Redis key pattern helpers
//
// Key pattern: santa:{game_slug}:draw:{uuid}
// Index pattern: santa:{game_slug}:draws

// DrawKey returns the Redis key for a draw record hash.
func DrawKey(game, drawID string) string {
	return fmt.Sprintf("santa:%s:draw:%s", game, drawID)
}

// DrawKeyPrefix returns the prefix shared by every draw key of a game.
func DrawKeyPrefix(game string) string {
	return fmt.Sprintf("santa:%s:draw:", game)
}

// DrawIndexKey returns the ZSET of draw IDs scored by creation time.
func DrawIndexKey(game string) string {
	return fmt.Sprintf("santa:%s:draws", game)
}
