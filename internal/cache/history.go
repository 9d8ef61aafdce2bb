// Package cache provides the in-memory, explicitly-invalidated cache of
// per-workflow version histories. There is no TTL eviction; entries live
// until the next Invalidate for their workflow.
package cache

import (
	"sync"

	"flowledger/pkg/models"
)

// HistoryCache caches version history lists keyed by workflow ID.
type HistoryCache struct {
	mu      sync.RWMutex
	entries map[string][]*models.WorkflowVersion
}

// NewHistoryCache creates an empty HistoryCache.
func NewHistoryCache() *HistoryCache {
	return &HistoryCache{
		entries: make(map[string][]*models.WorkflowVersion),
	}
}

// Get returns the cached history for a workflow, if present.
func (c *HistoryCache) Get(workflowID string) ([]*models.WorkflowVersion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	history, ok := c.entries[workflowID]
	return history, ok
}

// Put stores the history for a workflow, replacing any previous entry.
func (c *HistoryCache) Put(workflowID string, history []*models.WorkflowVersion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[workflowID] = history
}

// Invalidate drops the cached history for a workflow.
func (c *HistoryCache) Invalidate(workflowID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, workflowID)
}
