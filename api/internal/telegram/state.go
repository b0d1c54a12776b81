package telegram

import (
	"sync"
	"time"
)

const (
	debounce  = 1200 * time.Millisecond
	maxPixels = 18_000_000
)

// chatSolution remembers which gold solution each chat grades against.
var chatSolution sync.Map // chatID -> string

func setSolution(chatID int64, name string) { chatSolution.Store(chatID, name) }
func getSolution(chatID int64) string {
	if v, ok := chatSolution.Load(chatID); ok {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return ""
}

// photoBatch collects pages of one submission: either a Telegram media group
// or single photos sent in quick succession.
type photoBatch struct {
	ChatID       int64
	Key          string // "grp:<mediaGroupID>" | "chat:<chatID>"
	MediaGroupID string

	mu     sync.Mutex
	images [][]byte
	timer  *time.Timer
}

var batches sync.Map // key -> *photoBatch
