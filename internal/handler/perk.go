package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/perks"
)

// PerkHandler handles admin perk management requests
type PerkHandler struct {
	service perks.Service
}

// NewPerkHandler creates a new perk handler
func NewPerkHandler(service perks.Service) *PerkHandler {
	return &PerkHandler{service: service}
}

// AssignPerkRequest represents a request to set a perk directly
type AssignPerkRequest struct {
	UserID   string `json:"user_id" validate:"required,identifier"`
	ToolType string `json:"tool_type" validate:"required,identifier"`
	PerkKey  string `json:"perk_key" validate:"required,identifier"`
	Level    int    `json:"level" validate:"min=0"`
}

// HandleAssignPerk sets a perk, bypassing the roll flow.
func (h *PerkHandler) HandleAssignPerk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AssignPerkRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Assign perk"); err != nil {
		return
	}

	assignment, err := h.service.Assign(ctx, req.UserID, req.ToolType, req.PerkKey, req.Level)
	if err != nil {
		logger.FromContext(ctx).Error("Assign perk failed", "error", err, "user_id", req.UserID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPerkResponse(assignment))
}

// HandleRemovePerk removes the assignment for a tool.
// Route: DELETE /perks/{userID}/{toolType}
func (h *PerkHandler) HandleRemovePerk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	toolType := chi.URLParam(r, "toolType")

	removed, err := h.service.RemovePerk(ctx, userID, toolType)
	if err != nil {
		logger.FromContext(ctx).Error("Remove perk failed", "error", err, "user_id", userID, "tool", toolType)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, RemovePerkResponse{
		Message: MsgPerkRemovedSuccess,
		Removed: toPerkResponse(removed),
	})
}

// RemovePerkResponse confirms a removal and echoes the removed perk.
type RemovePerkResponse struct {
	Message string        `json:"message"`
	Removed *PerkResponse `json:"removed"`
}

// UpgradePerkRequest represents a request to raise a perk's level by one
type UpgradePerkRequest struct {
	UserID   string `json:"user_id" validate:"required,identifier"`
	ToolType string `json:"tool_type" validate:"required,identifier"`
}

// HandleUpgradePerk raises a perk one level, bounded by its max.
func (h *PerkHandler) HandleUpgradePerk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpgradePerkRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Upgrade perk"); err != nil {
		return
	}

	upgraded, err := h.service.UpgradePerk(ctx, req.UserID, req.ToolType)
	if err != nil {
		logger.FromContext(ctx).Error("Upgrade perk failed", "error", err, "user_id", req.UserID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toPerkResponse(upgraded))
}
