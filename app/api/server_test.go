package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	leagueservice "github.com/stridelabs/stride-backend/app/modules/league/application"
	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	userdb "github.com/stridelabs/stride-backend/app/modules/user/infrastructure/repositories"
	"github.com/stridelabs/stride-backend/config"
)

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestServer(league *fakeLeagueService, users *fakeUserService) *Server {
	cfg := &config.Config{}
	cfg.HTTP.Addr = ":0"
	cfg.HTTP.JoinRatePerSecond = 1000
	cfg.HTTP.JoinRateBurst = 1000
	logger := slog.New(slog.NewTextHandler(nullWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewServer(cfg, league, users, &fakeQueueService{}, logger)
}

func doRequest(s *Server, method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestJoinEndpoint_RequiresIdentity(t *testing.T) {
	s := newTestServer(&fakeLeagueService{}, &fakeUserService{})
	rec := doRequest(s, http.MethodPost, "/api/league/join", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJoinEndpoint_JoinsCallersTier(t *testing.T) {
	roomID := uuid.New()
	var gotTier leaguedomain.TierName
	league := &fakeLeagueService{
		JoinEpochFunc: func(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey) (leagueservice.JoinResult, error) {
			gotTier = tierName
			return leagueservice.JoinResult{RoomID: roomID, EpochKey: epochKey, TierName: tierName}, nil
		},
	}
	users := &fakeUserService{
		GetUserFunc: func(ctx context.Context, userID string) (*userdb.User, error) {
			return &userdb.User{ID: userID, CurrentTier: "Gold"}, nil
		},
	}
	s := newTestServer(league, users)

	rec := doRequest(s, http.MethodPost, "/api/league/join", "user-1", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotTier != "Gold" {
		t.Fatalf("join must use the profile tier, got %q", gotTier)
	}

	var resp joinResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RoomID != roomID.String() {
		t.Fatalf("wrong room in response: %s", resp.RoomID)
	}
}

func TestJoinEndpoint_ReplayReturns200(t *testing.T) {
	league := &fakeLeagueService{
		JoinEpochFunc: func(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey) (leagueservice.JoinResult, error) {
			return leagueservice.JoinResult{RoomID: uuid.New(), EpochKey: epochKey, TierName: tierName, AlreadyJoined: true}, nil
		},
	}
	users := &fakeUserService{
		GetUserFunc: func(ctx context.Context, userID string) (*userdb.User, error) {
			return &userdb.User{ID: userID, CurrentTier: "Bronze"}, nil
		},
	}
	s := newTestServer(league, users)

	rec := doRequest(s, http.MethodPost, "/api/league/join", "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay join should be 200, got %d", rec.Code)
	}
}

func TestJoinEndpoint_StaleEpochConflict(t *testing.T) {
	league := &fakeLeagueService{
		JoinEpochFunc: func(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey) (leagueservice.JoinResult, error) {
			return leagueservice.JoinResult{}, leaguedomain.ErrStaleEpoch
		},
	}
	users := &fakeUserService{
		GetUserFunc: func(ctx context.Context, userID string) (*userdb.User, error) {
			return &userdb.User{ID: userID, CurrentTier: "Bronze"}, nil
		},
	}
	s := newTestServer(league, users)

	rec := doRequest(s, http.MethodPost, "/api/league/join", "user-1", joinRequest{EpochKey: "2020-W01"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("stale epoch should be 409, got %d", rec.Code)
	}
}

func TestStandingEndpoint_NotJoined(t *testing.T) {
	s := newTestServer(&fakeLeagueService{}, &fakeUserService{})
	rec := doRequest(s, http.MethodGet, "/api/league/me", "user-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unjoined user, got %d", rec.Code)
	}
}

func TestLeaderboardEndpoint_InvalidRoomID(t *testing.T) {
	s := newTestServer(&fakeLeagueService{}, &fakeUserService{})
	rec := doRequest(s, http.MethodGet, "/api/league/rooms/not-a-uuid/leaderboard", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTiersEndpoint_ReturnsLadder(t *testing.T) {
	s := newTestServer(&fakeLeagueService{}, &fakeUserService{})
	rec := doRequest(s, http.MethodGet, "/api/league/tiers", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var tiers []tierResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tiers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tiers) != 6 {
		t.Fatalf("expected 6 tiers, got %d", len(tiers))
	}
}

func TestRegisterUserEndpoint(t *testing.T) {
	s := newTestServer(&fakeLeagueService{}, &fakeUserService{})
	rec := doRequest(s, http.MethodPost, "/api/users/", "", registerUserRequest{UserID: "user-1", DisplayName: "Deniz"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CurrentTier != "Isinma" {
		t.Fatalf("new users start in Isinma, got %q", resp.CurrentTier)
	}
}

func TestRolloverEndpoint_RequiresEpochKey(t *testing.T) {
	s := newTestServer(&fakeLeagueService{}, &fakeUserService{})
	rec := doRequest(s, http.MethodPost, "/api/admin/league/rollover", "", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&fakeLeagueService{}, &fakeUserService{})
	rec := doRequest(s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
