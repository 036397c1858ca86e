package leagueservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	leaguedb "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/repositories"
)

// ------------------------
// Fake League Repo
// ------------------------

// FakeLeagueRepository provides a programmable stub for the
// leaguedb.Repository interface. Each method records itself in the trace
// and delegates to its Func field when set.
type FakeLeagueRepository struct {
	mu    sync.Mutex
	trace []string

	// Rooms
	CreateRoomFunc        func(ctx context.Context, db bun.IDB, room *leaguedb.Room) error
	GetRoomFunc           func(ctx context.Context, db bun.IDB, roomID uuid.UUID) (*leaguedb.Room, error)
	FindJoinableRoomsFunc func(ctx context.Context, db bun.IDB, tierName string, epochKey string, limit int) ([]leaguedb.Room, error)
	TryAddMemberFunc      func(ctx context.Context, db bun.IDB, roomID uuid.UUID) (bool, error)
	UnprocessedRoomsFunc  func(ctx context.Context, db bun.IDB, epochKey string) ([]leaguedb.Room, error)
	MarkRoomProcessedFunc func(ctx context.Context, db bun.IDB, roomID uuid.UUID, processedAt time.Time) error
	LatestEpochKeyFunc    func(ctx context.Context, db bun.IDB) (string, error)

	// Memberships
	InsertMemberFunc          func(ctx context.Context, db bun.IDB, member *leaguedb.RoomMember) error
	GetMembershipFunc         func(ctx context.Context, db bun.IDB, userID string, epochKey string) (*leaguedb.RoomMember, error)
	AddPointsFunc             func(ctx context.Context, db bun.IDB, userID string, epochKey string, delta int64) (bool, error)
	ListRoomMembersRankedFunc func(ctx context.Context, db bun.IDB, roomID uuid.UUID) ([]leaguedb.RoomMember, error)
	SetRankSnapshotFunc       func(ctx context.Context, db bun.IDB, roomID uuid.UUID, userID string, rank int) error

	// Composite atomic operations
	AddMemberToRoomFunc      func(ctx context.Context, member *leaguedb.RoomMember) (bool, error)
	CreateRoomWithMemberFunc func(ctx context.Context, room *leaguedb.Room, member *leaguedb.RoomMember) error
	RecordOutcomeFunc        func(ctx context.Context, outcome *leaguedb.WeeklyOutcome, rank int) (bool, error)

	// Outcome ledger
	InsertOutcomeFunc  func(ctx context.Context, db bun.IDB, outcome *leaguedb.WeeklyOutcome) (bool, error)
	GetOutcomeFunc     func(ctx context.Context, db bun.IDB, userID string, epochKey string) (*leaguedb.WeeklyOutcome, error)
	OutcomeHistoryFunc func(ctx context.Context, db bun.IDB, userID string, limit int) ([]leaguedb.WeeklyOutcome, error)

	// Tier catalog
	ListTiersFunc   func(ctx context.Context, db bun.IDB) ([]leaguedb.TierConfig, error)
	SeedTiersFunc   func(ctx context.Context, db bun.IDB, tiers []leaguedomain.Tier) error
	LoadCatalogFunc func(ctx context.Context, db bun.IDB) (*leaguedomain.Catalog, error)
}

func NewFakeLeagueRepository() *FakeLeagueRepository {
	return &FakeLeagueRepository{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeLeagueRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLeagueRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeLeagueRepository) DB() *bun.DB { return nil }

func (f *FakeLeagueRepository) CreateRoom(ctx context.Context, db bun.IDB, room *leaguedb.Room) error {
	f.record("CreateRoom")
	if f.CreateRoomFunc != nil {
		return f.CreateRoomFunc(ctx, db, room)
	}
	return nil
}

func (f *FakeLeagueRepository) GetRoom(ctx context.Context, db bun.IDB, roomID uuid.UUID) (*leaguedb.Room, error) {
	f.record("GetRoom")
	if f.GetRoomFunc != nil {
		return f.GetRoomFunc(ctx, db, roomID)
	}
	return nil, leaguedb.ErrNotFound
}

func (f *FakeLeagueRepository) FindJoinableRooms(ctx context.Context, db bun.IDB, tierName string, epochKey string, limit int) ([]leaguedb.Room, error) {
	f.record("FindJoinableRooms")
	if f.FindJoinableRoomsFunc != nil {
		return f.FindJoinableRoomsFunc(ctx, db, tierName, epochKey, limit)
	}
	return nil, nil
}

func (f *FakeLeagueRepository) TryAddMember(ctx context.Context, db bun.IDB, roomID uuid.UUID) (bool, error) {
	f.record("TryAddMember")
	if f.TryAddMemberFunc != nil {
		return f.TryAddMemberFunc(ctx, db, roomID)
	}
	return true, nil
}

func (f *FakeLeagueRepository) UnprocessedRooms(ctx context.Context, db bun.IDB, epochKey string) ([]leaguedb.Room, error) {
	f.record("UnprocessedRooms")
	if f.UnprocessedRoomsFunc != nil {
		return f.UnprocessedRoomsFunc(ctx, db, epochKey)
	}
	return nil, nil
}

func (f *FakeLeagueRepository) MarkRoomProcessed(ctx context.Context, db bun.IDB, roomID uuid.UUID, processedAt time.Time) error {
	f.record("MarkRoomProcessed")
	if f.MarkRoomProcessedFunc != nil {
		return f.MarkRoomProcessedFunc(ctx, db, roomID, processedAt)
	}
	return nil
}

func (f *FakeLeagueRepository) LatestEpochKey(ctx context.Context, db bun.IDB) (string, error) {
	f.record("LatestEpochKey")
	if f.LatestEpochKeyFunc != nil {
		return f.LatestEpochKeyFunc(ctx, db)
	}
	return "", nil
}

func (f *FakeLeagueRepository) InsertMember(ctx context.Context, db bun.IDB, member *leaguedb.RoomMember) error {
	f.record("InsertMember")
	if f.InsertMemberFunc != nil {
		return f.InsertMemberFunc(ctx, db, member)
	}
	return nil
}

func (f *FakeLeagueRepository) GetMembership(ctx context.Context, db bun.IDB, userID string, epochKey string) (*leaguedb.RoomMember, error) {
	f.record("GetMembership")
	if f.GetMembershipFunc != nil {
		return f.GetMembershipFunc(ctx, db, userID, epochKey)
	}
	return nil, nil
}

func (f *FakeLeagueRepository) AddPoints(ctx context.Context, db bun.IDB, userID string, epochKey string, delta int64) (bool, error) {
	f.record("AddPoints")
	if f.AddPointsFunc != nil {
		return f.AddPointsFunc(ctx, db, userID, epochKey, delta)
	}
	return true, nil
}

func (f *FakeLeagueRepository) ListRoomMembersRanked(ctx context.Context, db bun.IDB, roomID uuid.UUID) ([]leaguedb.RoomMember, error) {
	f.record("ListRoomMembersRanked")
	if f.ListRoomMembersRankedFunc != nil {
		return f.ListRoomMembersRankedFunc(ctx, db, roomID)
	}
	return nil, nil
}

func (f *FakeLeagueRepository) SetRankSnapshot(ctx context.Context, db bun.IDB, roomID uuid.UUID, userID string, rank int) error {
	f.record("SetRankSnapshot")
	if f.SetRankSnapshotFunc != nil {
		return f.SetRankSnapshotFunc(ctx, db, roomID, userID, rank)
	}
	return nil
}

func (f *FakeLeagueRepository) AddMemberToRoom(ctx context.Context, member *leaguedb.RoomMember) (bool, error) {
	f.record("AddMemberToRoom")
	if f.AddMemberToRoomFunc != nil {
		return f.AddMemberToRoomFunc(ctx, member)
	}
	return true, nil
}

func (f *FakeLeagueRepository) CreateRoomWithMember(ctx context.Context, room *leaguedb.Room, member *leaguedb.RoomMember) error {
	f.record("CreateRoomWithMember")
	if f.CreateRoomWithMemberFunc != nil {
		return f.CreateRoomWithMemberFunc(ctx, room, member)
	}
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	room.MemberCount = 1
	member.RoomID = room.ID
	return nil
}

func (f *FakeLeagueRepository) RecordOutcome(ctx context.Context, outcome *leaguedb.WeeklyOutcome, rank int) (bool, error) {
	f.record("RecordOutcome")
	if f.RecordOutcomeFunc != nil {
		return f.RecordOutcomeFunc(ctx, outcome, rank)
	}
	return true, nil
}

func (f *FakeLeagueRepository) InsertOutcome(ctx context.Context, db bun.IDB, outcome *leaguedb.WeeklyOutcome) (bool, error) {
	f.record("InsertOutcome")
	if f.InsertOutcomeFunc != nil {
		return f.InsertOutcomeFunc(ctx, db, outcome)
	}
	return true, nil
}

func (f *FakeLeagueRepository) GetOutcome(ctx context.Context, db bun.IDB, userID string, epochKey string) (*leaguedb.WeeklyOutcome, error) {
	f.record("GetOutcome")
	if f.GetOutcomeFunc != nil {
		return f.GetOutcomeFunc(ctx, db, userID, epochKey)
	}
	return nil, nil
}

func (f *FakeLeagueRepository) OutcomeHistory(ctx context.Context, db bun.IDB, userID string, limit int) ([]leaguedb.WeeklyOutcome, error) {
	f.record("OutcomeHistory")
	if f.OutcomeHistoryFunc != nil {
		return f.OutcomeHistoryFunc(ctx, db, userID, limit)
	}
	return nil, nil
}

func (f *FakeLeagueRepository) ListTiers(ctx context.Context, db bun.IDB) ([]leaguedb.TierConfig, error) {
	f.record("ListTiers")
	if f.ListTiersFunc != nil {
		return f.ListTiersFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeLeagueRepository) SeedTiers(ctx context.Context, db bun.IDB, tiers []leaguedomain.Tier) error {
	f.record("SeedTiers")
	if f.SeedTiersFunc != nil {
		return f.SeedTiersFunc(ctx, db, tiers)
	}
	return nil
}

func (f *FakeLeagueRepository) LoadCatalog(ctx context.Context, db bun.IDB) (*leaguedomain.Catalog, error) {
	f.record("LoadCatalog")
	if f.LoadCatalogFunc != nil {
		return f.LoadCatalogFunc(ctx, db)
	}
	return nil, nil
}

var _ leaguedb.Repository = (*FakeLeagueRepository)(nil)

// ------------------------
// Fake collaborators
// ------------------------

type FakeTierMutator struct {
	mu    sync.Mutex
	calls map[string]string // userID -> tier last set

	SetCurrentTierFunc func(ctx context.Context, userID string, tierName string) error
}

func NewFakeTierMutator() *FakeTierMutator {
	return &FakeTierMutator{calls: map[string]string{}}
}

func (f *FakeTierMutator) SetCurrentTier(ctx context.Context, userID string, tierName string) error {
	if f.SetCurrentTierFunc != nil {
		return f.SetCurrentTierFunc(ctx, userID, tierName)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[userID] = tierName
	return nil
}

func (f *FakeTierMutator) TierFor(userID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.calls[userID]
	return t, ok
}

type publishedMessage struct {
	Topic   string
	Payload []byte
}

type FakeEventPublisher struct {
	mu        sync.Mutex
	published []publishedMessage

	PublishFunc func(ctx context.Context, topic string, msg *message.Message) error
}

func (f *FakeEventPublisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	if f.PublishFunc != nil {
		return f.PublishFunc(ctx, topic, msg)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedMessage{Topic: topic, Payload: msg.Payload})
	return nil
}

func (f *FakeEventPublisher) Published() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedMessage, len(f.published))
	copy(out, f.published)
	return out
}

type NoopMetrics struct{}

func (NoopMetrics) RecordOperationAttempt(ctx context.Context, operation, service string) {}
func (NoopMetrics) RecordOperationSuccess(ctx context.Context, operation, service string) {}
func (NoopMetrics) RecordOperationFailure(ctx context.Context, operation, service string) {}
func (NoopMetrics) RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration) {
}
func (NoopMetrics) RecordFinalizeOutcomes(ctx context.Context, epochKey string, promoted, demoted, stayed int) {
}

// FixedClock pins "now" for deterministic epoch math.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time { return c.Instant }

// ------------------------
// Test harness
// ------------------------

func newTestService(repo leaguedb.Repository, clock Clock) (*LeagueService, *FakeTierMutator, *FakeEventPublisher) {
	tiers := NewFakeTierMutator()
	bus := &FakeEventPublisher{}
	catalog, _ := leaguedomain.NewCatalog(leaguedomain.DefaultTiers())
	svc := NewLeagueService(
		repo,
		tiers,
		bus,
		catalog,
		time.UTC,
		clock,
		slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError})),
		NoopMetrics{},
	)
	return svc, tiers, bus
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
