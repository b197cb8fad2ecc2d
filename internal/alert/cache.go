package alert

import (
	"sync"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/google/uuid"
)

type cacheEntry struct {
	revision   uint64
	computedAt time.Time
	alert      *model.AlertRecord
}

// Cache memoizes evaluations per requirement. An entry is valid while the
// requirement revision is unchanged and the entry is younger than ttl; the
// ttl bounds staleness of the time based rules.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uuid.UUID]cacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, entries: map[uuid.UUID]cacheEntry{}}
}

// Get returns the cached alert. hit is false on a miss; alert is nil when the
// cached answer is "no alert".
func (c *Cache) Get(requirementID uuid.UUID, revision uint64, now time.Time) (alert *model.AlertRecord, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[requirementID]
	if !ok || entry.revision != revision {
		return nil, false
	}
	if c.ttl > 0 && now.Sub(entry.computedAt) >= c.ttl {
		delete(c.entries, requirementID)
		return nil, false
	}
	if entry.alert == nil {
		return nil, true
	}
	out := *entry.alert
	return &out, true
}

func (c *Cache) Put(requirementID uuid.UUID, revision uint64, now time.Time, alert *model.AlertRecord) {
	var stored *model.AlertRecord
	if alert != nil {
		cp := *alert
		stored = &cp
	}
	c.mu.Lock()
	c.entries[requirementID] = cacheEntry{revision: revision, computedAt: now, alert: stored}
	c.mu.Unlock()
}

// Invalidate drops the entries of the given requirements.
func (c *Cache) Invalidate(requirementIDs ...uuid.UUID) {
	c.mu.Lock()
	for _, id := range requirementIDs {
		delete(c.entries, id)
	}
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
