package table

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/cemkoker/adisyon/internal/common/clock/mocks"
	uuidMocks "github.com/cemkoker/adisyon/internal/common/uuid/mocks"
	"github.com/cemkoker/adisyon/internal/models"
	"github.com/cemkoker/adisyon/internal/replication"
	tableStore "github.com/cemkoker/adisyon/internal/repositories/table"
)

const testGrace = 25 * time.Millisecond

type TableServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *clockMocks.MockClock
	mockUUID  *uuidMocks.MockUUID
	store     tableStore.Store
	service   Service
	ctx       context.Context

	// now is what the mock clock reports; tests move it forward with
	// advance. The mutex covers reads from the cleanup timer goroutine.
	nowMu sync.Mutex
	now   time.Time
}

func (s *TableServiceTestSuite) advance(d time.Duration) {
	s.nowMu.Lock()
	defer s.nowMu.Unlock()
	s.now = s.now.Add(d)
}

func (s *TableServiceTestSuite) currentNow() time.Time {
	s.nowMu.Lock()
	defer s.nowMu.Unlock()
	return s.now
}

func (s *TableServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.ctx = context.Background()

	s.now = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().DoAndReturn(s.currentNow).AnyTimes()

	store, err := tableStore.NewLocal(nil)
	s.Require().NoError(err)
	s.store = store

	replicator, err := replication.New(&replication.Config{
		Primary:  store,
		Fallback: store,
	})
	s.Require().NoError(err)

	svc, err := New(&Config{
		Replicator:         replicator,
		Clock:              s.mockClock,
		UUIDGenerator:      s.mockUUID,
		PresenceTimeout:    models.PresenceTimeout,
		CleanupGracePeriod: testGrace,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *TableServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestTableServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TableServiceTestSuite))
}

// createTable makes a table with the host online in slot 0
func (s *TableServiceTestSuite) createTable(id string) *models.Table {
	s.mockUUID.EXPECT().NewUUID().Return(id)
	out, err := s.service.CreateTable(s.ctx, &CreateTableInput{
		Name:     "Salı Masası",
		Password: "1234",
		HostName: "Ayşe",
	})
	s.Require().NoError(err)
	return out.Table
}

// joinAll seats players in slots 1 through 3; slot 1 never gives a name
func (s *TableServiceTestSuite) joinAll(tableID string) {
	names := []string{"", "", "Fatma", "Ali"}
	for slot := 1; slot <= 3; slot++ {
		_, err := s.service.JoinTable(s.ctx, &JoinTableInput{
			TableID:    tableID,
			SlotIndex:  slot,
			Password:   "1234",
			PlayerName: names[slot],
		})
		s.Require().NoError(err)
	}
}

func (s *TableServiceTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{Clock: s.mockClock, UUIDGenerator: s.mockUUID})
	s.ErrorIs(err, ErrNilReplicator)
}

func (s *TableServiceTestSuite) TestCreateTable() {
	table := s.createTable("table-1")

	s.Equal("table-1", table.ID)
	s.Equal("Salı Masası", table.Name)
	s.Equal(0, table.HostSlot)
	s.Require().Len(table.Players, 4)

	host := table.Players[0]
	s.Equal("Ayşe", host.Name)
	s.True(host.Online)
	s.True(host.IsHost)
	s.Require().NotNil(host.LastSeen)
	s.True(host.LastSeen.Equal(s.currentNow()))

	for _, slot := range table.Players[1:] {
		s.False(slot.Online)
		s.False(slot.IsHost)
	}

	s.Require().NotNil(table.MatchState)
	s.False(table.MatchState.GameStarted)

	// The document is visible through the store
	persisted, err := s.store.FetchTable(s.ctx, &tableStore.FetchTableInput{TableID: "table-1"})
	s.Require().NoError(err)
	s.Equal("Salı Masası", persisted.Name)
}

func (s *TableServiceTestSuite) TestJoinTable() {
	s.createTable("table-1")

	out, err := s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID:    "table-1",
		SlotIndex:  2,
		Password:   "1234",
		PlayerName: "Fatma",
	})
	s.Require().NoError(err)

	slot := out.Table.Players[2]
	s.True(slot.Online)
	s.Equal("Fatma", slot.Name)
	s.Require().NotNil(slot.LastSeen)
	s.False(out.GameCanStart, "two of four online is not startable")
}

func (s *TableServiceTestSuite) TestJoinTableErrors() {
	s.createTable("table-1")

	_, err := s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID: "no-such-table", SlotIndex: 1, Password: "1234",
	})
	s.ErrorIs(err, ErrTableNotFound)

	_, err = s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID: "table-1", SlotIndex: 1, Password: "guess",
	})
	s.ErrorIs(err, ErrWrongPassword)

	_, err = s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID: "table-1", SlotIndex: 7, Password: "1234",
	})
	s.ErrorIs(err, ErrInvalidSlot)

	_, err = s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID: "table-1", SlotIndex: 0, Password: "1234",
	})
	s.ErrorIs(err, ErrSlotOccupied, "the host already holds slot 0")
}

func (s *TableServiceTestSuite) TestGameCanStartWhenAllOnline() {
	s.createTable("table-1")
	names := []string{"", "Mehmet", "Fatma"}
	for slot := 1; slot <= 2; slot++ {
		_, err := s.service.JoinTable(s.ctx, &JoinTableInput{
			TableID: "table-1", SlotIndex: slot, Password: "1234", PlayerName: names[slot],
		})
		s.Require().NoError(err)
	}

	out, err := s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID: "table-1", SlotIndex: 3, Password: "1234", PlayerName: "Ali",
	})
	s.Require().NoError(err)
	s.True(out.GameCanStart)
}

func (s *TableServiceTestSuite) TestJoinKeepsPreviousNameWhenEmpty() {
	s.createTable("table-1")
	_, err := s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID: "table-1", SlotIndex: 1, Password: "1234", PlayerName: "Mehmet",
	})
	s.Require().NoError(err)
	_, err = s.service.LeaveTable(s.ctx, &LeaveTableInput{TableID: "table-1", SlotIndex: 1})
	s.Require().NoError(err)

	// Rejoining without a name keeps the old one
	out, err := s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID: "table-1", SlotIndex: 1, Password: "1234",
	})
	s.Require().NoError(err)
	s.Equal("Mehmet", out.Table.Players[1].Name)
}

func (s *TableServiceTestSuite) TestLeaveTable() {
	s.createTable("table-1")
	s.joinAll("table-1")

	out, err := s.service.LeaveTable(s.ctx, &LeaveTableInput{
		TableID: "table-1", SlotIndex: 2,
	})
	s.Require().NoError(err)
	s.False(out.Table.Players[2].Online)
	s.False(out.CleanupScheduled, "three players remain online")
}

func (s *TableServiceTestSuite) TestLeaveLastPlayerSchedulesCleanup() {
	s.createTable("table-1")

	out, err := s.service.LeaveTable(s.ctx, &LeaveTableInput{
		TableID: "table-1", SlotIndex: 0,
	})
	s.Require().NoError(err)
	s.True(out.Table.AllOffline())
	s.True(out.CleanupScheduled)
}

func (s *TableServiceTestSuite) TestAbandonedTableIsDeleted() {
	s.createTable("table-1")

	_, err := s.service.LeaveTable(s.ctx, &LeaveTableInput{TableID: "table-1", SlotIndex: 0})
	s.Require().NoError(err)

	// By the time the grace timer fires, the clock is past the window
	s.advance(testGrace + time.Second)

	s.Eventually(func() bool {
		_, err := s.store.FetchTable(s.ctx, &tableStore.FetchTableInput{TableID: "table-1"})
		return err != nil
	}, time.Second, 5*time.Millisecond, "the abandoned table should be deleted")
}

func (s *TableServiceTestSuite) TestRecentActivityBlocksCleanup() {
	s.createTable("table-1")

	_, err := s.service.LeaveTable(s.ctx, &LeaveTableInput{TableID: "table-1", SlotIndex: 0})
	s.Require().NoError(err)

	// The clock has not advanced, so when the timer fires the table's last
	// activity is still inside the grace window
	time.Sleep(4 * testGrace)

	_, err = s.store.FetchTable(s.ctx, &tableStore.FetchTableInput{TableID: "table-1"})
	s.NoError(err, "a recently active table survives the timer")
}

func (s *TableServiceTestSuite) TestRejoinCancelsCleanup() {
	s.createTable("table-1")

	_, err := s.service.LeaveTable(s.ctx, &LeaveTableInput{TableID: "table-1", SlotIndex: 0})
	s.Require().NoError(err)

	_, err = s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID: "table-1", SlotIndex: 0, Password: "1234",
	})
	s.Require().NoError(err)

	s.advance(testGrace + time.Second)
	time.Sleep(4 * testGrace)

	_, err = s.store.FetchTable(s.ctx, &tableStore.FetchTableInput{TableID: "table-1"})
	s.NoError(err, "a rejoined table must not be garbage collected")
}

func (s *TableServiceTestSuite) TestStartTableGame() {
	s.createTable("table-1")
	s.joinAll("table-1")

	out, err := s.service.StartTableGame(s.ctx, &StartTableGameInput{
		TableID: "table-1",
	})
	s.Require().NoError(err)

	state := out.Table.MatchState
	s.True(state.GameStarted)
	s.Require().NotNil(state.StartedAt)
	s.Require().Len(state.Rows, 1)
	s.Equal([]string{"Ayşe", "Oyuncu 2", "Fatma", "Ali"}, state.Settings.Names,
		"roster names seed the match, empty slots get placeholders")
	s.Equal(11, state.Settings.Target)
}

func (s *TableServiceTestSuite) TestStartTableGameWithOverrides() {
	s.createTable("table-1")
	s.joinAll("table-1")

	out, err := s.service.StartTableGame(s.ctx, &StartTableGameInput{
		TableID: "table-1",
		Target:  5,
		Mode:    models.GameModeTeams2v2,
	})
	s.Require().NoError(err)

	settings := out.Table.MatchState.Settings
	s.Equal(5, settings.Target)
	s.Equal(models.GameModeTeams2v2, settings.Mode)
	s.Equal([]string{"Takım A", "Takım B"}, settings.Names)
}

func (s *TableServiceTestSuite) TestStartTableGameRequiresFullTable() {
	s.createTable("table-1")

	_, err := s.service.StartTableGame(s.ctx, &StartTableGameInput{
		TableID: "table-1",
	})
	s.ErrorIs(err, ErrGameCannotStart)
}

func (s *TableServiceTestSuite) TestUpdateMatchStateReplacesWholesale() {
	s.createTable("table-1")
	s.joinAll("table-1")
	_, err := s.service.StartTableGame(s.ctx, &StartTableGameInput{TableID: "table-1"})
	s.Require().NoError(err)

	replacement := models.NewMatchState()
	replacement.GameStarted = true
	v := 42
	replacement.Rows = []models.HandRow{{Hand: 1, Values: []*int{&v, nil, nil, nil}}}

	out, err := s.service.UpdateMatchState(s.ctx, &UpdateMatchStateInput{
		TableID:    "table-1",
		MatchState: replacement,
	})
	s.Require().NoError(err)

	s.Require().Len(out.Table.MatchState.Rows, 1)
	s.Equal(42, *out.Table.MatchState.Rows[0].Values[0])
}

func (s *TableServiceTestSuite) TestGetTable() {
	s.createTable("table-1")

	out, err := s.service.GetTable(s.ctx, &GetTableInput{TableID: "table-1"})
	s.Require().NoError(err)
	s.Equal("table-1", out.Table.ID)
	s.False(out.GameCanStart)

	_, err = s.service.GetTable(s.ctx, &GetTableInput{TableID: "no-such-table"})
	s.ErrorIs(err, ErrTableNotFound)
}

func (s *TableServiceTestSuite) TestListTables() {
	s.createTable("table-1")
	s.createTable("table-2")

	out, err := s.service.ListTables(s.ctx, &ListTablesInput{})
	s.Require().NoError(err)
	s.Len(out.Tables, 2)
}

func (s *TableServiceTestSuite) TestWatchTableFiltersOwnEchoes() {
	s.createTable("table-1")

	var received []*models.Table
	watch, err := s.service.WatchTable(s.ctx, &WatchTableInput{
		TableID: "table-1",
		OnChange: func(table *models.Table) {
			received = append(received, table)
		},
	})
	s.Require().NoError(err)
	defer watch.Subscription.Close()

	// A write through this service echoes back and must be filtered
	s.advance(time.Second)
	_, err = s.service.UpdateMatchState(s.ctx, &UpdateMatchStateInput{
		TableID:    "table-1",
		MatchState: models.NewMatchState(),
	})
	s.Require().NoError(err)
	s.Empty(received, "own writes must not come back through the watch")

	// Another device's write carries a foreign UpdatedAt and is delivered
	foreign, err := s.store.FetchTable(s.ctx, &tableStore.FetchTableInput{TableID: "table-1"})
	s.Require().NoError(err)
	foreign.UpdatedAt = s.currentNow().Add(time.Minute)
	s.Require().NoError(s.store.PersistTable(s.ctx, &tableStore.PersistTableInput{Table: foreign}))

	s.Require().Len(received, 1)
	s.Equal("table-1", received[0].ID)
}

func (s *TableServiceTestSuite) TestSweepTimeouts() {
	s.createTable("table-1")
	s.joinAll("table-1")

	// Slot 3 refreshes presence later than the others
	s.advance(models.PresenceTimeout)
	_, err := s.service.LeaveTable(s.ctx, &LeaveTableInput{TableID: "table-1", SlotIndex: 3})
	s.Require().NoError(err)
	_, err = s.service.JoinTable(s.ctx, &JoinTableInput{
		TableID: "table-1", SlotIndex: 3, Password: "1234",
	})
	s.Require().NoError(err)

	// Everyone seated before the refresh is now stale
	s.advance(time.Minute)
	out, err := s.service.SweepTimeouts(s.ctx, &SweepTimeoutsInput{})
	s.Require().NoError(err)

	s.Equal(3, out.SlotsTimedOut)
	s.Equal(0, out.TablesAbandoned, "slot 3 is still fresh")

	table, err := s.store.FetchTable(s.ctx, &tableStore.FetchTableInput{TableID: "table-1"})
	s.Require().NoError(err)
	s.False(table.Players[0].Online)
	s.True(table.Players[3].Online)
}

func (s *TableServiceTestSuite) TestSweepMarksAbandonedTables() {
	s.createTable("table-1")

	s.advance(models.PresenceTimeout + time.Minute)
	out, err := s.service.SweepTimeouts(s.ctx, &SweepTimeoutsInput{})
	s.Require().NoError(err)

	s.Equal(1, out.SlotsTimedOut)
	s.Equal(1, out.TablesAbandoned)
}

func (s *TableServiceTestSuite) TestSweepIgnoresFreshTables() {
	s.createTable("table-1")

	out, err := s.service.SweepTimeouts(s.ctx, &SweepTimeoutsInput{})
	s.Require().NoError(err)
	s.Equal(0, out.SlotsTimedOut)
	s.Equal(0, out.TablesAbandoned)
}

func (s *TableServiceTestSuite) TestSweepSkipsWriteWhenNothingIsStale() {
	created := s.createTable("table-1")

	s.advance(time.Minute)
	_, err := s.service.SweepTimeouts(s.ctx, &SweepTimeoutsInput{})
	s.Require().NoError(err)

	// An untouched table keeps its original document, so a no-op sweep
	// never notifies subscribers or widens the overwrite window.
	table, err := s.store.FetchTable(s.ctx, &tableStore.FetchTableInput{TableID: "table-1"})
	s.Require().NoError(err)
	s.Equal(created.UpdatedAt, table.UpdatedAt, "a no-op sweep does not rewrite the document")
}
