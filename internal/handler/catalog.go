package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okimc/toolperks/internal/domain"
	"github.com/okimc/toolperks/internal/logger"
)

// CatalogReader is the read surface of the perk catalog.
type CatalogReader interface {
	ToolTypes() []string
	AllForTool(toolType string) []*domain.PerkDefinition
	TotalWeightForTool(toolType string) float64
	Size() int
}

// CatalogHandler handles catalog read and admin requests
type CatalogHandler struct {
	catalog CatalogReader

	// reload runs the full reload sequence (file reload, relink,
	// booster refresh) and returns the new definition count.
	reload func(ctx context.Context) (int, error)
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog CatalogReader, reload func(ctx context.Context) (int, error)) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, reload: reload}
}

// ToolInfo summarizes one tool's perk pool
type ToolInfo struct {
	ToolType  string `json:"tool_type"`
	PerkCount int    `json:"perk_count"`
}

// HandleGetTools lists every tool type with a perk pool.
func (h *CatalogHandler) HandleGetTools(w http.ResponseWriter, r *http.Request) {
	tools := h.catalog.ToolTypes()
	infos := make([]ToolInfo, 0, len(tools))
	for _, tool := range tools {
		infos = append(infos, ToolInfo{ToolType: tool, PerkCount: len(h.catalog.AllForTool(tool))})
	}
	respondJSON(w, http.StatusOK, infos)
}

// PerkInfo is the public view of one catalog definition
type PerkInfo struct {
	PerkKey     string  `json:"perk_key"`
	DisplayName string  `json:"display_name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Weight      float64 `json:"weight"`
	Chance      float64 `json:"chance"`
	MaxLevel    int     `json:"max_level"`
}

// HandleGetPerks lists the definitions for one tool with their roll
// chances.
func (h *CatalogHandler) HandleGetPerks(w http.ResponseWriter, r *http.Request) {
	tool, ok := GetQueryParam(r, w, "tool")
	if !ok {
		return
	}
	tool = strings.ToLower(tool)

	defs := h.catalog.AllForTool(tool)
	total := h.catalog.TotalWeightForTool(tool)

	infos := make([]PerkInfo, 0, len(defs))
	for _, def := range defs {
		chance := 0.0
		if total > 0 {
			chance = def.Weight / total
		}
		infos = append(infos, PerkInfo{
			PerkKey:     def.Key,
			DisplayName: def.DisplayName,
			Description: def.Description,
			Category:    def.Category,
			Weight:      def.Weight,
			Chance:      chance,
			MaxLevel:    def.MaxLevel(),
		})
	}
	respondJSON(w, http.StatusOK, infos)
}

// HandleReload re-reads the catalog file and refreshes dependent state.
func (h *CatalogHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.reload(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("Catalog reload failed", "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgReloadCatalogFailed)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{
		Message: fmt.Sprintf(MsgCatalogReloadedFormat, count),
	})
}
