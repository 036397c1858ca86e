package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	userdb "github.com/stridelabs/stride-backend/app/modules/user/infrastructure/repositories"
)

type registerUserRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Timezone    string `json:"timezone,omitempty"`
}

type userResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	CurrentTier string `json:"current_tier"`
	Timezone    string `json:"timezone"`
}

func toUserResponse(u *userdb.User) userResponse {
	return userResponse{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		CurrentTier: u.CurrentTier,
		Timezone:    u.Timezone,
	}
}

func (h *handlers) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "user_id and display_name are required")
		return
	}

	user, err := h.users.RegisterUser(r.Context(), req.UserID, req.DisplayName, req.Timezone)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "register user", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get user", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updateUserRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

func (h *handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.users.UpdateProfile(r.Context(), userID, &userdb.UserUpdateFields{
		DisplayName: req.DisplayName,
		Timezone:    req.Timezone,
	})
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "update user", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
