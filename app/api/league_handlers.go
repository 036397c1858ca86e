package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	leagueservice "github.com/stridelabs/stride-backend/app/modules/league/application"
	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	leaguequeue "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/queue"
	userservice "github.com/stridelabs/stride-backend/app/modules/user/application"
	userdb "github.com/stridelabs/stride-backend/app/modules/user/infrastructure/repositories"
)

type handlers struct {
	league leagueservice.Service
	users  userservice.Service
	queue  leaguequeue.QueueService
	logger *slog.Logger
}

// userIDHeader carries the authenticated caller's identity, set by the
// gateway in front of this service.
const userIDHeader = "X-User-ID"

func callerID(r *http.Request) (leaguedomain.UserID, bool) {
	id := r.Header.Get(userIDHeader)
	return leaguedomain.UserID(id), id != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type joinRequest struct {
	EpochKey string `json:"epoch_key,omitempty"`
}

type joinResponse struct {
	RoomID        string `json:"room_id"`
	EpochKey      string `json:"epoch_key"`
	TierName      string `json:"tier_name"`
	AlreadyJoined bool   `json:"already_joined"`
}

// joinLeague enrolls the caller into this week's competition in their
// current tier. The epoch defaults to the live one; an explicit past
// epoch is rejected.
func (h *handlers) joinLeague(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req joinRequest
	if r.Body != nil {
		// An empty body is a valid "join now" request.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	epochKey := leaguedomain.EpochKey(req.EpochKey)
	if epochKey == "" {
		epochKey = h.league.CurrentEpochKey()
	}

	user, err := h.users.GetUser(r.Context(), string(userID))
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not registered")
			return
		}
		h.logger.ErrorContext(r.Context(), "load user for join", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	result, err := h.league.JoinEpoch(r.Context(), userID, leaguedomain.TierName(user.CurrentTier), epochKey)
	if err != nil {
		switch {
		case errors.Is(err, leaguedomain.ErrStaleEpoch):
			writeError(w, http.StatusConflict, "epoch is no longer open for joins")
		case errors.Is(err, leaguedomain.ErrUnknownTier):
			writeError(w, http.StatusUnprocessableEntity, "user tier is not in the catalog")
		default:
			h.logger.ErrorContext(r.Context(), "join failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	status := http.StatusCreated
	if result.AlreadyJoined {
		status = http.StatusOK
	}
	writeJSON(w, status, joinResponse{
		RoomID:        result.RoomID.String(),
		EpochKey:      string(result.EpochKey),
		TierName:      string(result.TierName),
		AlreadyJoined: result.AlreadyJoined,
	})
}

type standingResponse struct {
	RoomID   string `json:"room_id"`
	EpochKey string `json:"epoch_key"`
	TierName string `json:"tier_name"`
	Points   int64  `json:"points"`
	Rank     int    `json:"rank"`
	RoomSize int    `json:"room_size"`
}

func (h *handlers) currentStanding(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	standing, err := h.league.CurrentStanding(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "current standing", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if standing == nil {
		writeError(w, http.StatusNotFound, "not joined this week")
		return
	}
	writeJSON(w, http.StatusOK, standingResponse{
		RoomID:   standing.RoomID.String(),
		EpochKey: string(standing.EpochKey),
		TierName: string(standing.TierName),
		Points:   int64(standing.Points),
		Rank:     standing.Rank,
		RoomSize: standing.RoomSize,
	})
}

type leaderboardEntryResponse struct {
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
	Rank   int    `json:"rank"`
}

func (h *handlers) roomLeaderboard(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	entries, err := h.league.RoomLeaderboard(r.Context(), roomID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "room leaderboard", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]leaderboardEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = leaderboardEntryResponse{
			UserID: string(e.UserID),
			Points: int64(e.Points),
			Rank:   e.Rank,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type outcomeResponse struct {
	EpochKey   string `json:"epoch_key"`
	TierName   string `json:"tier_name"`
	Points     int64  `json:"points"`
	RankInRoom int    `json:"rank_in_room"`
	Result     string `json:"result"`
}

func (h *handlers) outcomeHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	records, err := h.league.OutcomeHistory(r.Context(), userID, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "outcome history", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]outcomeResponse, len(records))
	for i, rec := range records {
		out[i] = outcomeResponse{
			EpochKey:   string(rec.EpochKey),
			TierName:   string(rec.TierName),
			Points:     int64(rec.Points),
			RankInRoom: rec.RankInRoom,
			Result:     string(rec.Result),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type tierResponse struct {
	Name           string `json:"name"`
	Order          int    `json:"order"`
	PromotePercent int    `json:"promote_percent"`
	DemotePercent  int    `json:"demote_percent"`
	MinRoomSize    int    `json:"min_room_size"`
	MaxRoomSize    int    `json:"max_room_size"`
}

func (h *handlers) listTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.league.ListTiers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list tiers", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]tierResponse, len(tiers))
	for i, t := range tiers {
		out[i] = tierResponse{
			Name:           string(t.Name),
			Order:          t.Order,
			PromotePercent: t.PromotePercent,
			DemotePercent:  t.DemotePercent,
			MinRoomSize:    t.MinRoomSize,
			MaxRoomSize:    t.MaxRoomSize,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type rolloverRequest struct {
	EpochKey string `json:"epoch_key"`
}

// scheduleRollover enqueues a finalize job for the given epoch, for
// re-running a failed week from operations tooling.
func (h *handlers) scheduleRollover(w http.ResponseWriter, r *http.Request) {
	var req rolloverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EpochKey == "" {
		writeError(w, http.StatusBadRequest, "epoch_key is required")
		return
	}
	if err := h.queue.ScheduleRollover(r.Context(), leaguedomain.EpochKey(req.EpochKey)); err != nil {
		h.logger.ErrorContext(r.Context(), "schedule rollover", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"epoch_key": req.EpochKey})
}

func (h *handlers) scheduledJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.queue.GetScheduledJobs(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "scheduled jobs", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.queue != nil {
		if err := h.queue.HealthCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "queue unhealthy")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
