package botlog

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"PocketSim/internal/model"
	"PocketSim/pkg/logger"
)

// DefaultRetention is the number of entries kept when none is configured.
const DefaultRetention = 50

// Book is the capped activity feed, newest entry first.
type Book struct {
	mu      sync.Mutex
	entries []model.BotLog
	limit   int
}

// NewBook creates a Book keeping at most limit entries.
func NewBook(limit int) *Book {
	if limit <= 0 {
		limit = DefaultRetention
	}
	return &Book{limit: limit}
}

// Add assigns an ID, prepends the entry and mirrors it to the process log.
// The timestamp must be set by the caller.
func (b *Book) Add(entry model.BotLog) model.BotLog {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	b.mu.Lock()
	b.entries = append([]model.BotLog{entry}, b.entries...)
	if len(b.entries) > b.limit {
		b.entries = b.entries[:b.limit]
	}
	b.mu.Unlock()

	logger.Debug("bot activity",
		zap.String("action", string(entry.Action)),
		zap.String("pair", entry.Pair),
		zap.String("direction", string(entry.Direction)),
		zap.Float64("amount", entry.Amount),
		zap.Float64("confidence", entry.Confidence),
		zap.String("strategy", entry.Strategy),
		zap.String("reason", entry.Reason),
	)
	return entry
}

// Entries returns a copy of the feed, newest first.
func (b *Book) Entries() []model.BotLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.BotLog(nil), b.entries...)
}

// Len returns the number of retained entries.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
