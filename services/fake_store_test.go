package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bounty-board/filters"
	"bounty-board/models"
)

// fakeStore keeps bounties in memory and records the last list request.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]models.Bounty

	lastFilter filters.Doc
	lastSort   filters.Sort
	lastPage   filters.Pagination
	listErr    error

	// beforeUpdate runs inside Update before the status check, to simulate
	// a concurrent writer.
	beforeUpdate func(records map[string]models.Bounty)
}

func newFakeStore(seed ...models.Bounty) *fakeStore {
	s := &fakeStore{records: map[string]models.Bounty{}}
	for _, b := range seed {
		s.records[b.ID] = b
	}
	return s
}

func (s *fakeStore) List(_ context.Context, filter filters.Doc, order filters.Sort, page filters.Pagination) (BountyPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter, s.lastSort, s.lastPage = filter, order, page
	if s.listErr != nil {
		return BountyPage{}, s.listErr
	}
	var out []models.Bounty
	for _, b := range s.records {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return BountyPage{Results: out}, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (models.Bounty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.records[id]
	if !ok {
		return models.Bounty{}, ErrBountyNotFound
	}
	return b, nil
}

func (s *fakeStore) Create(_ context.Context, b *models.Bounty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.NewString()
	b.UpdatedAt = b.CreatedAt
	s.records[b.ID] = *b
	return nil
}

func (s *fakeStore) Update(_ context.Context, b *models.Bounty, expected models.BountyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeUpdate != nil {
		s.beforeUpdate(s.records)
	}
	current, ok := s.records[b.ID]
	if !ok {
		return ErrBountyNotFound
	}
	if current.Status != expected || current.Version != b.Version {
		return ErrStaleStatus
	}
	b.Version++
	s.records[b.ID] = *b
	return nil
}

func (s *fakeStore) ChangedSince(_ context.Context, customerID string, since time.Time) ([]models.Bounty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bounty
	for _, b := range s.records {
		if b.UpdatedAt.After(since) && (customerID == "" || b.CustomerID == customerID) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (s *fakeStore) Overdue(_ context.Context, now time.Time) ([]models.Bounty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bounty
	for _, b := range s.records {
		live := b.Status == models.BountyStatusOpen || b.Status == models.BountyStatusInProgress
		if live && !b.DueAt.After(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

// recordingNotifier remembers every event it was handed.
type recordingNotifier struct {
	mu      sync.Mutex
	changed []models.Activity
	overdue []string
}

func (n *recordingNotifier) BountyChanged(_ context.Context, _ models.Bounty, activity models.Activity) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, activity)
	return nil
}

func (n *recordingNotifier) BountyOverdue(_ context.Context, b models.Bounty) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overdue = append(n.overdue, b.ID)
	return nil
}
