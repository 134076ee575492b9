package casino

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

type LeaderboardEntry struct {
	SessionID string          `json:"session_id"`
	Profit    decimal.Decimal `json:"profit"`
	Rounds    int             `json:"rounds"`
}

// Leaderboard ranks sessions by net profit across all games. It lives in
// memory only and starts empty on restart.
type Leaderboard struct {
	data map[string]*LeaderboardEntry
	mu   sync.Mutex
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		data: make(map[string]*LeaderboardEntry),
	}
}

func (l *Leaderboard) Record(r Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.data[r.SessionID]
	if !ok {
		e = &LeaderboardEntry{SessionID: r.SessionID, Profit: decimal.Zero}
		l.data[r.SessionID] = e
	}
	e.Profit = e.Profit.Add(r.Profit())
	e.Rounds++
}

func (l *Leaderboard) Forget(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.data, sessionID)
}

// Sessions lists the session ids that currently hold an entry.
func (l *Leaderboard) Sessions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.data))
	for id := range l.data {
		ids = append(ids, id)
	}
	return ids
}

// Top returns up to n entries, highest profit first. Ties keep a stable
// order by session id.
func (l *Leaderboard) Top(n int) []LeaderboardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]LeaderboardEntry, 0, len(l.data))
	for _, e := range l.data {
		entries = append(entries, *e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].Profit.Cmp(entries[j].Profit); c != 0 {
			return c > 0
		}
		return entries[i].SessionID < entries[j].SessionID
	})

	if n >= 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}
