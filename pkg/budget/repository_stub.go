package budget

import (
	"context"
	"sync"
)

type RepositoryStub struct {
	mu        sync.Mutex
	snapshots map[int][]byte
	saves     int
	failSaves error
}

func NewStubBudgetRepo() *RepositoryStub {
	return &RepositoryStub{snapshots: map[int][]byte{}}
}

func (s *RepositoryStub) LoadSnapshot(ctx context.Context, userId int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.snapshots[userId]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *RepositoryStub) SaveSnapshot(ctx context.Context, userId int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSaves != nil {
		return s.failSaves
	}
	s.saves++
	s.snapshots[userId] = append([]byte(nil), data...)
	return nil
}

// Saves returns how many snapshots were written successfully.
func (s *RepositoryStub) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *RepositoryStub) Put(userId int, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[userId] = data
}

// FailSaves makes every following SaveSnapshot return err. A nil err restores normal saves.
func (s *RepositoryStub) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaves = err
}
