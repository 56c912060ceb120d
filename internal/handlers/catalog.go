package handlers

import (
	"net/http"

	"github.com/benvon/team-builder/internal/catalog"
	"github.com/gorilla/mux"
)

// CatalogHandler serves the static format, playstyle and Pokemon tables
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/formats", h.ListFormats).Methods(http.MethodGet)
	r.HandleFunc("/api/playstyles", h.ListPlaystyles).Methods(http.MethodGet)
	r.HandleFunc("/api/pokemon", h.ListPokemon).Methods(http.MethodGet)
}

// PlaystylesResponse groups playstyles with their categories
type PlaystylesResponse struct {
	Categories []catalog.Category  `json:"categories"`
	Playstyles []catalog.Playstyle `json:"playstyles"`
}

// ListFormats returns every battle format
func (h *CatalogHandler) ListFormats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Formats)
}

// ListPlaystyles returns the playstyles, optionally filtered with ?category=
func (h *CatalogHandler) ListPlaystyles(w http.ResponseWriter, r *http.Request) {
	styles := h.catalog.Playstyles
	if category := r.URL.Query().Get("category"); category != "" {
		styles = h.catalog.PlaystylesByCategory(category)
		if styles == nil {
			styles = []catalog.Playstyle{}
		}
	}
	respondJSON(w, http.StatusOK, PlaystylesResponse{
		Categories: h.catalog.Categories,
		Playstyles: styles,
	})
}

// ListPokemon returns the curated competitive pool
func (h *CatalogHandler) ListPokemon(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Pokemon)
}
