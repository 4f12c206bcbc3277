// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nearo/internal/listings"
	"nearo/internal/models"
	"nearo/internal/search"
)

const (
	// maxCreateBody caps the multipart create payload (images included).
	maxCreateBody = 50 << 20

	// maxImageSize caps a single listing image.
	maxImageSize = 10 << 20

	// defaultRadiusKm is used when a nearby query omits radius_km.
	defaultRadiusKm = 25.0
)

// allowedImageTypes defines MIME types accepted for listing images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Listings serves the listing API: search, feeds, detail, and lifecycle.
type Listings struct {
	listings *listings.Service
	search   *search.Service
}

// NewListings creates the listings handler.
func NewListings(l *listings.Service, s *search.Service) *Listings {
	return &Listings{listings: l, search: s}
}

// callerID resolves the authenticated user forwarded by the edge proxy.
// Token verification happens upstream; the API trusts X-User-ID.
func callerID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// parseCursor reads an optional RFC 3339 cursor query parameter.
func parseCursor(r *http.Request) (*time.Time, error) {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// searchRequest is the POST /listings/search body.
type searchRequest struct {
	Query   string                `json:"query"`
	Filters models.ListingFilters `json:"filters"`
	Cursor  *time.Time            `json:"cursor,omitempty"`
}

// Search handles POST /api/v1/listings/search.
func (h *Listings) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid search body")
		return
	}

	page, err := h.search.Search(r.Context(), req.Query, req.Filters, req.Cursor)
	if err != nil {
		slog.Error("listing search", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Feed handles GET /api/v1/listings/feed.
func (h *Listings) Feed(w http.ResponseWriter, r *http.Request) {
	cursor, err := parseCursor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	page, err := h.listings.Feed(r.Context(), cursor)
	if err != nil {
		slog.Error("listing feed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load feed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Featured handles GET /api/v1/listings/featured.
func (h *Listings) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.listings.Featured(r.Context())
	if err != nil {
		slog.Error("featured listings", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load featured listings")
		return
	}
	if items == nil {
		items = []models.ListingCard{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Nearby handles GET /api/v1/listings/nearby?lat=&lng=&radius_km=.
func (h *Listings) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	radius := defaultRadiusKm
	if raw := q.Get("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid radius_km")
			return
		}
		radius = parsed
	}

	cursor, err := parseCursor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	page, err := h.listings.Nearby(r.Context(), lat, lng, radius, cursor)
	if err != nil {
		slog.Error("nearby listings", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load nearby listings")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/v1/listings/{id}.
func (h *Listings) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	view, err := h.listings.Get(r.Context(), id)
	if errors.Is(err, listings.ErrNotFound) {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		slog.Error("get listing", "listing_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load listing")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Create handles POST /api/v1/listings. The body is multipart: a "payload"
// part carrying the JSON input and up to ten "images" file parts.
func (h *Listings) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)
	if err := r.ParseMultipartForm(maxCreateBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var input models.CreateListingInput
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if input.Title == "" || input.Price < 0 {
		writeError(w, http.StatusBadRequest, "title and a non-negative price are required")
		return
	}

	var images []listings.ImageUpload
	for _, fh := range r.MultipartForm.File["images"] {
		if fh.Size > maxImageSize {
			writeError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		contentType := fh.Header.Get("Content-Type")
		if !allowedImageTypes[contentType] {
			writeError(w, http.StatusUnsupportedMediaType, "unsupported image type "+contentType)
			return
		}
		file, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable image part")
			return
		}
		defer file.Close()
		images = append(images, listings.ImageUpload{
			Name:        fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
			Body:        file,
		})
	}

	detail, err := h.listings.Create(r.Context(), caller, input, images)
	var vErr *listings.ValidationError
	if errors.As(err, &vErr) {
		writeFieldErrors(w, vErr.Fields)
		return
	}
	if err != nil {
		slog.Error("create listing", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create listing")
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// Update handles PATCH /api/v1/listings/{id}.
func (h *Listings) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var input listings.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	detail, err := h.listings.Update(r.Context(), caller, id, input)
	if !h.writeLifecycleError(w, id, err, "update listing") {
		writeJSON(w, http.StatusOK, detail)
	}
}

// statusRequest is the PATCH /listings/{id}/status body.
type statusRequest struct {
	Status models.ListingStatus `json:"status"`
}

// SetStatus handles PATCH /api/v1/listings/{id}/status.
func (h *Listings) SetStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Status != models.StatusActive && req.Status != models.StatusSold {
		writeError(w, http.StatusBadRequest, "status must be active or sold")
		return
	}

	err = h.listings.SetStatus(r.Context(), caller, id, req.Status)
	if !h.writeLifecycleError(w, id, err, "set listing status") {
		writeJSON(w, http.StatusOK, map[string]any{"status": req.Status})
	}
}

// Delete handles DELETE /api/v1/listings/{id}.
func (h *Listings) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	err = h.listings.Delete(r.Context(), caller, id)
	if !h.writeLifecycleError(w, id, err, "delete listing") {
		w.WriteHeader(http.StatusNoContent)
	}
}

// Promote handles POST /api/v1/listings/{id}/promote.
func (h *Listings) Promote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	promoted, err := h.listings.Promote(r.Context(), caller, id)
	if !h.writeLifecycleError(w, id, err, "promote listing") {
		writeJSON(w, http.StatusOK, promoted)
	}
}

// UserListings handles GET /api/v1/users/{id}/listings.
func (h *Listings) UserListings(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	status := models.ListingStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.StatusActive, models.StatusSold:
	default:
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	items, err := h.listings.ByOwner(r.Context(), userID, status)
	if err != nil {
		slog.Error("user listings", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load listings")
		return
	}
	if items == nil {
		items = []models.ListingCard{}
	}
	writeJSON(w, http.StatusOK, items)
}

// writeLifecycleError maps the shared lifecycle errors. Returns true when
// a response was written.
func (h *Listings) writeLifecycleError(w http.ResponseWriter, id uuid.UUID, err error, op string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, listings.ErrNotFound):
		writeError(w, http.StatusNotFound, "listing not found")
	case errors.Is(err, listings.ErrForbidden):
		writeError(w, http.StatusForbidden, "not your listing")
	default:
		slog.Error(op, "listing_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "operation failed")
	}
	return true
}
