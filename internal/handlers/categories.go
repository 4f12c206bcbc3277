// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nearo/internal/catalog"
)

// Categories serves the category forest and attribute templates.
type Categories struct {
	catalog *catalog.Service
}

// NewCategories creates the categories handler.
func NewCategories(c *catalog.Service) *Categories {
	return &Categories{catalog: c}
}

// Tree handles GET /api/v1/categories.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.Tree(r.Context())
	if err != nil {
		slog.Error("category tree", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load categories")
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Leaves handles GET /api/v1/categories/leaves.
func (h *Categories) Leaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.catalog.LeafCategories(r.Context())
	if err != nil {
		slog.Error("leaf categories", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load categories")
		return
	}
	writeJSON(w, http.StatusOK, leaves)
}

// Template handles GET /api/v1/categories/{id}/template.
func (h *Categories) Template(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	tmpl, err := h.catalog.Template(r.Context(), id)
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		slog.Error("category template", "category_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load template")
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}
