package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/perks"
)

// UserHandler handles session lifecycle and read surface requests
type UserHandler struct {
	service perks.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(service perks.Service) *UserHandler {
	return &UserHandler{service: service}
}

// HandleConnect loads a user session into the state cache.
// Route: POST /sessions/{userID}
func (h *UserHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	if err := h.service.Connect(ctx, userID); err != nil {
		logger.FromContext(ctx).Error("Connect failed", "error", err, "user_id", userID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SuccessResponse{Message: MsgSessionLoadedSuccess})
}

// HandleDisconnect unloads a user session, saving dirty state.
// Route: DELETE /sessions/{userID}
func (h *UserHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	if err := h.service.Disconnect(ctx, userID); err != nil {
		logger.FromContext(ctx).Error("Disconnect failed", "error", err, "user_id", userID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgSessionClosedSuccess})
}

// HandleGetState returns the live state of a loaded user.
// Route: GET /users/{userID}/state
func (h *UserHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	snap, err := h.service.GetState(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// HandleGetProfile returns a state view for any user, loaded or not.
// Route: GET /users/{userID}/profile
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	snap, err := h.service.Profile(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Warn("Profile lookup failed", "error", err, "user_id", userID)
		respondError(w, http.StatusNotFound, ErrMsgUserNotFoundHTTP)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}
