package handler

import (
	"context"
	"net/http"

	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/perks"
)

// RollsHandler handles roll currency, pity and preference requests
type RollsHandler struct {
	service perks.Service
}

// NewRollsHandler creates a new rolls handler
func NewRollsHandler(service perks.Service) *RollsHandler {
	return &RollsHandler{service: service}
}

// AdjustRollsRequest represents a balance adjustment
type AdjustRollsRequest struct {
	UserID string `json:"user_id" validate:"required,identifier"`
	Amount int    `json:"amount" validate:"min=0"`
}

// BalanceResponse returns the post-operation balance
type BalanceResponse struct {
	UserID      string `json:"user_id"`
	RollBalance int    `json:"roll_balance"`
}

// HandleAddRolls credits rolls to a user.
func (h *RollsHandler) HandleAddRolls(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "Add rolls", h.service.AddRolls)
}

// HandleSetRolls replaces a user's balance.
func (h *RollsHandler) HandleSetRolls(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "Set rolls", h.service.SetRolls)
}

// HandleRemoveRolls debits rolls from a user.
func (h *RollsHandler) HandleRemoveRolls(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "Remove rolls", h.service.RemoveRolls)
}

func (h *RollsHandler) adjust(w http.ResponseWriter, r *http.Request, actionName string,
	op func(ctx context.Context, userID string, amount int) (int, error)) {
	ctx := r.Context()

	var req AdjustRollsRequest
	if err := DecodeAndValidateRequest(r, w, &req, actionName); err != nil {
		return
	}

	balance, err := op(ctx, req.UserID, req.Amount)
	if err != nil {
		logger.FromContext(ctx).Error(actionName+" failed", "error", err, "user_id", req.UserID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, BalanceResponse{UserID: req.UserID, RollBalance: balance})
}

// ResetPityRequest identifies the user whose pity counter resets
type ResetPityRequest struct {
	UserID string `json:"user_id" validate:"required,identifier"`
}

// HandleResetPity zeroes a user's pity counter.
func (h *RollsHandler) HandleResetPity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ResetPityRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Reset pity"); err != nil {
		return
	}

	if err := h.service.ResetPity(ctx, req.UserID); err != nil {
		logger.FromContext(ctx).Error("Reset pity failed", "error", err, "user_id", req.UserID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgPityResetSuccess})
}

// ToggleAnimationsRequest identifies the user whose preference flips
type ToggleAnimationsRequest struct {
	UserID string `json:"user_id" validate:"required,identifier"`
}

// ToggleAnimationsResponse returns the new preference value
type ToggleAnimationsResponse struct {
	UserID            string `json:"user_id"`
	AnimationsEnabled bool   `json:"animations_enabled"`
}

// HandleToggleAnimations flips a user's roll animation preference.
func (h *RollsHandler) HandleToggleAnimations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ToggleAnimationsRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Toggle animations"); err != nil {
		return
	}

	enabled, err := h.service.ToggleAnimations(ctx, req.UserID)
	if err != nil {
		logger.FromContext(ctx).Error("Toggle animations failed", "error", err, "user_id", req.UserID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ToggleAnimationsResponse{UserID: req.UserID, AnimationsEnabled: enabled})
}
