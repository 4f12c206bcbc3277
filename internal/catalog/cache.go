// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"nearo/internal/models"
)

// templateCache holds the assembled category tree and per-category
// templates with a shared TTL. Expired entries are served fresh on the
// next read; there is no background eviction.
type templateCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	treeEntry  []models.Category
	treeStored time.Time

	templates map[uuid.UUID]templateEntry
}

type templateEntry struct {
	tmpl   *models.CategoryTemplate
	stored time.Time
}

func newTemplateCache(ttl time.Duration, now func() time.Time) *templateCache {
	return &templateCache{
		ttl:       ttl,
		now:       now,
		templates: make(map[uuid.UUID]templateEntry),
	}
}

func (c *templateCache) tree() ([]models.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.treeEntry == nil || c.now().Sub(c.treeStored) >= c.ttl {
		return nil, false
	}
	return c.treeEntry, true
}

func (c *templateCache) setTree(tree []models.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.treeEntry = tree
	c.treeStored = c.now()
}

func (c *templateCache) template(id uuid.UUID) (*models.CategoryTemplate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.templates[id]
	if !ok || c.now().Sub(entry.stored) >= c.ttl {
		return nil, false
	}
	return entry.tmpl, true
}

func (c *templateCache) setTemplate(id uuid.UUID, tmpl *models.CategoryTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates[id] = templateEntry{tmpl: tmpl, stored: c.now()}
}

func (c *templateCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.treeEntry = nil
	c.templates = make(map[uuid.UUID]templateEntry)
}
