package handler

import (
	"net/http"
	"strconv"

	"github.com/okimc/toolperks/internal/domain"
	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/perks"
)

// MaxBatchRolls bounds a single batch request.
const MaxBatchRolls = 100

// RollHandler handles roll-related HTTP requests
type RollHandler struct {
	service perks.Service
}

// NewRollHandler creates a new roll handler
func NewRollHandler(service perks.Service) *RollHandler {
	return &RollHandler{service: service}
}

// RollRequest represents a request to roll a perk
type RollRequest struct {
	UserID   string `json:"user_id" validate:"required,identifier"`
	ToolType string `json:"tool_type" validate:"required,identifier"`
}

// RollOutcomeResponse is the wire form of one roll outcome.
type RollOutcomeResponse struct {
	Success       bool               `json:"success"`
	Failure       string             `json:"failure,omitempty"`
	Perk          *PerkResponse      `json:"perk,omitempty"`
	Previous      *PerkResponse      `json:"previous,omitempty"`
	PityTriggered bool               `json:"pity_triggered"`
	PityExhausted bool               `json:"pity_exhausted,omitempty"`
}

// PerkResponse is the wire form of an assignment.
type PerkResponse struct {
	PerkKey     string             `json:"perk_key"`
	ToolType    string             `json:"tool_type"`
	DisplayName string             `json:"display_name"`
	Category    string             `json:"category"`
	Level       int                `json:"level"`
	Boosts      map[string]float64 `json:"boosts"`
}

func toPerkResponse(a *domain.PerkAssignment) *PerkResponse {
	if a == nil {
		return nil
	}
	return &PerkResponse{
		PerkKey:     a.PerkKey,
		ToolType:    a.ToolType,
		DisplayName: a.DisplayName(),
		Category:    a.Category(),
		Level:       a.Level,
		Boosts:      a.BoostMap(),
	}
}

func toOutcomeResponse(o *domain.RollOutcome) RollOutcomeResponse {
	return RollOutcomeResponse{
		Success:       o.Success,
		Failure:       string(o.Failure),
		Perk:          toPerkResponse(o.Assignment),
		Previous:      toPerkResponse(o.Previous),
		PityTriggered: o.PityTriggered,
		PityExhausted: o.PityExhausted,
	}
}

// HandleRoll processes a roll request. A `count` query parameter greater
// than 1 runs a paced batch.
func (h *RollHandler) HandleRoll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req RollRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Roll"); err != nil {
		return
	}

	count, err := strconv.Atoi(GetOptionalQueryParam(r, "count", "1"))
	if err != nil || count < 1 || count > MaxBatchRolls {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRollCount)
		return
	}

	if count == 1 {
		outcome, err := h.service.Roll(ctx, req.UserID, req.ToolType)
		if err != nil {
			log.Error("Roll request failed", "error", err, "user_id", req.UserID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, toOutcomeResponse(outcome))
		return
	}

	outcomes, err := h.service.RollBatch(ctx, req.UserID, req.ToolType, count)
	if err != nil {
		log.Error("Batch roll request failed", "error", err, "user_id", req.UserID, "count", count)
		respondServiceError(w, err)
		return
	}

	responses := make([]RollOutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		responses = append(responses, toOutcomeResponse(o))
	}
	respondJSON(w, http.StatusOK, BatchRollResponse{
		Requested: count,
		Resolved:  len(responses),
		Outcomes:  responses,
	})
}

// BatchRollResponse wraps the outcomes of a paced batch.
type BatchRollResponse struct {
	Requested int                   `json:"requested"`
	Resolved  int                   `json:"resolved"`
	Outcomes  []RollOutcomeResponse `json:"outcomes"`
}
