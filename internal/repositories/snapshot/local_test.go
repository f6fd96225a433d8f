package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type LocalSnapshotTestSuite struct {
	suite.Suite
	store    Store
	filePath string
}

func (s *LocalSnapshotTestSuite) SetupTest() {
	s.filePath = filepath.Join(s.T().TempDir(), "snapshot.json")

	store, err := NewLocal(&LocalConfig{
		FilePath: s.filePath,
	})
	s.Require().NoError(err)
	s.store = store
}

func TestLocalSnapshotTestSuite(t *testing.T) {
	suite.Run(t, new(LocalSnapshotTestSuite))
}

func (s *LocalSnapshotTestSuite) TestSaveAndGetSnapshot() {
	snap := testSnapshot()

	s.Require().NoError(s.store.SaveSnapshot(context.Background(), &SaveSnapshotInput{Snapshot: snap}))

	retrieved, err := s.store.GetSnapshot(context.Background(), &GetSnapshotInput{})
	s.Require().NoError(err)
	s.Equal(snap.Settings, retrieved.Settings)
	s.Equal("dark", retrieved.Theme)
}

func (s *LocalSnapshotTestSuite) TestGetMissingSnapshot() {
	_, err := s.store.GetSnapshot(context.Background(), &GetSnapshotInput{})
	s.ErrorIs(err, ErrSnapshotNotFound)
}

func (s *LocalSnapshotTestSuite) TestSnapshotSurvivesRestart() {
	s.Require().NoError(s.store.SaveSnapshot(context.Background(), &SaveSnapshotInput{
		Snapshot: testSnapshot(),
	}))

	reopened, err := NewLocal(&LocalConfig{FilePath: s.filePath})
	s.Require().NoError(err)

	retrieved, err := reopened.GetSnapshot(context.Background(), &GetSnapshotInput{})
	s.Require().NoError(err)
	s.Equal("table-1", retrieved.CurrentTable)
}

func (s *LocalSnapshotTestSuite) TestClearSnapshot() {
	s.Require().NoError(s.store.SaveSnapshot(context.Background(), &SaveSnapshotInput{
		Snapshot: testSnapshot(),
	}))

	s.Require().NoError(s.store.ClearSnapshot(context.Background(), &ClearSnapshotInput{}))

	_, err := s.store.GetSnapshot(context.Background(), &GetSnapshotInput{})
	s.ErrorIs(err, ErrSnapshotNotFound)

	// The file is gone too, so a restart stays clear
	reopened, err := NewLocal(&LocalConfig{FilePath: s.filePath})
	s.Require().NoError(err)
	_, err = reopened.GetSnapshot(context.Background(), &GetSnapshotInput{})
	s.ErrorIs(err, ErrSnapshotNotFound)
}

func (s *LocalSnapshotTestSuite) TestSaveValidatesInput() {
	s.Error(s.store.SaveSnapshot(context.Background(), nil))
	s.Error(s.store.SaveSnapshot(context.Background(), &SaveSnapshotInput{}))
}

func (s *LocalSnapshotTestSuite) TestInMemoryOnlyStore() {
	store, err := NewLocal(nil)
	s.Require().NoError(err)

	s.Require().NoError(store.SaveSnapshot(context.Background(), &SaveSnapshotInput{
		Snapshot: testSnapshot(),
	}))

	retrieved, err := store.GetSnapshot(context.Background(), &GetSnapshotInput{})
	s.Require().NoError(err)
	s.Equal("dark", retrieved.Theme)
}
