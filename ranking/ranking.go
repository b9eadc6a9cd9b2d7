// Package ranking keeps the in-memory leaderboard of clear times.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pthm-cable/whiteout/config"
)

// Record is one leaderboard entry.
type Record struct {
	ID       uint64    `csv:"id" json:"id"`
	Nickname string    `csv:"nickname" json:"nickname"`
	Time     float64   `csv:"time_sec" json:"time"`
	Date     time.Time `csv:"date" json:"date"`
}

// Board is a bounded, time-ascending leaderboard. Safe for concurrent use.
type Board struct {
	mu       sync.RWMutex
	size     int
	fallback string
	maxName  int
	nextID   uint64
	records  []Record
	now      func() time.Time
}

// NewBoard creates an empty board.
func NewBoard(cfg config.RankingConfig) *Board {
	return &Board{
		size:     cfg.Size,
		fallback: cfg.DefaultNickname,
		maxName:  cfg.MaxNickname,
		now:      time.Now,
	}
}

// Normalize trims the nickname, falls back to the default when blank and
// caps its length in runes.
func (b *Board) Normalize(nickname string) string {
	name := strings.TrimSpace(nickname)
	if name == "" {
		return b.fallback
	}
	if b.maxName > 0 && utf8.RuneCountInString(name) > b.maxName {
		name = string([]rune(name)[:b.maxName])
	}
	return name
}

// Add inserts a clear time and returns its 1-based rank, or -1 if it did
// not make the board. Equal times keep insertion order.
func (b *Board) Add(nickname string, seconds float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	rec := Record{ID: b.nextID, Nickname: b.Normalize(nickname), Time: seconds, Date: b.now()}

	b.records = append(b.records, rec)
	sort.SliceStable(b.records, func(i, j int) bool { return b.records[i].Time < b.records[j].Time })
	if len(b.records) > b.size {
		b.records = b.records[:b.size]
	}

	for i, r := range b.records {
		if r.ID == rec.ID {
			return i + 1
		}
	}
	return -1
}

// WouldPlace reports whether seconds would make the board.
func (b *Board) WouldPlace(seconds float64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.records) < b.size {
		return true
	}
	return seconds < b.records[len(b.records)-1].Time
}

// Records returns a copy of the board, fastest first.
func (b *Board) Records() []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Record(nil), b.records...)
}

// Len returns the number of entries.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// FormatPrecise renders seconds as mm:ss.cc, the clear-screen format.
func FormatPrecise(seconds float64) string {
	cs := int(math.Floor(math.Max(seconds, 0)*100 + 1e-6))
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000, cs/100%60, cs%100)
}

// FormatClock renders seconds as mm:ss, the HUD format.
func FormatClock(seconds float64) string {
	s := int(math.Floor(math.Max(seconds, 0) + 1e-9))
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
