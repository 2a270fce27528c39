// Package store provides the good points history store.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/goodpoints/goodpoints/internal/core"
	"github.com/goodpoints/goodpoints/internal/model"
)

// Errors
var (
	ErrStoreClosed = errors.New("store is closed")
	ErrNotFound    = errors.New("good point not found")
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates good points were added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeClear indicates all good points were cleared.
	ChangeTypeClear
	// ChangeTypeDelete indicates good points were deleted.
	ChangeTypeDelete
	// ChangeTypeReload indicates the store was reloaded from disk.
	ChangeTypeReload
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type   ChangeType
	Count  int
	Source string
}

// Query specifies criteria for listing good points.
type Query struct {
	core.FilterOptions
	Expr *core.FilterExpr // Optional filter expression
	Sort core.SortOptions // Zero value means newest first
}

// Store manages the good points history with thread-safe operations.
type Store struct {
	mu         sync.RWMutex
	points     []model.GoodPoint
	index      map[string]int  // id -> slice index
	hashIndex  map[string]int  // content_hash -> slice index
	tombstones map[string]bool // content_hash -> true for deleted good points

	persistence Persistence

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a new Store.
// If persistence is not nil, it will be used to persist good points.
func NewStore(persistence Persistence) *Store {
	return &Store{
		points:      make([]model.GoodPoint, 0),
		index:       make(map[string]int),
		hashIndex:   make(map[string]int),
		tombstones:  make(map[string]bool),
		persistence: persistence,
		subscribers: make([]chan ChangeEvent, 0),
	}
}

// Add adds a single good point to the store.
// Duplicates and previously deleted good points are skipped silently.
func (s *Store) Add(g model.GoodPoint) error {
	_, err := s.AddBatch([]model.GoodPoint{g})
	return err
}

// AddBatch adds multiple good points and returns how many were new.
func (s *Store) AddBatch(gs []model.GoodPoint) (int, error) {
	if len(gs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	toAdd := make([]model.GoodPoint, 0, len(gs))
	seenHashes := make(map[string]bool)

	for i := range gs {
		gs[i].EnsureContentHash()
		hash := gs[i].ContentHash

		if s.tombstones[hash] || seenHashes[hash] {
			continue
		}
		if _, exists := s.hashIndex[hash]; exists {
			continue
		}
		if _, exists := s.index[gs[i].ID]; exists {
			continue
		}

		seenHashes[hash] = true
		toAdd = append(toAdd, gs[i])
	}

	if len(toAdd) == 0 {
		return 0, nil
	}

	start := len(s.points)
	s.points = append(s.points, toAdd...)
	for i, g := range toAdd {
		s.index[g.ID] = start + i
		s.hashIndex[g.ContentHash] = start + i
	}

	if s.persistence != nil {
		if err := s.persistence.AppendBatch(toAdd); err != nil {
			return 0, err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:   ChangeTypeAdd,
		Count:  len(toAdd),
		Source: toAdd[0].Source,
	})

	return len(toAdd), nil
}

// All returns all good points, newest first.
func (s *Store) All() []model.GoodPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.GoodPoint, len(s.points))
	copy(result, s.points)
	core.Sort(result, core.DefaultSortOptions())
	return result
}

// Filter returns good points matching the query. Sorting happens before
// the limit is applied.
func (s *Store) Filter(q Query) []model.GoodPoint {
	s.mu.RLock()
	result := make([]model.GoodPoint, len(s.points))
	copy(result, s.points)
	s.mu.RUnlock()

	limit := q.Limit
	opts := q.FilterOptions
	opts.Limit = 0
	result = core.Filter(result, opts)
	result = core.FilterWithExpr(result, q.Expr)

	sortOpts := q.Sort
	if sortOpts.Field == "" {
		sortOpts.Field = core.SortByTime
	}
	if sortOpts.Order == "" {
		sortOpts.Order = core.SortDesc
	}
	core.Sort(result, sortOpts)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// GetByID returns a good point by its ID, or nil.
func (s *Store) GetByID(id string) *model.GoodPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, exists := s.index[id]; exists {
		g := s.points[idx]
		return &g
	}
	return nil
}

// Delete removes a good point and remembers its content hash so an
// import cannot bring it back. Returns ErrNotFound for unknown IDs.
func (s *Store) Delete(id string) error {
	n, err := s.DeleteMany([]string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes the given good points and returns how many existed.
// Unknown IDs are ignored.
func (s *Store) DeleteMany(ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, exists := s.index[id]; exists {
			remove[id] = true
		}
	}
	if len(remove) == 0 {
		return 0, nil
	}

	kept := make([]model.GoodPoint, 0, len(s.points)-len(remove))
	for i := range s.points {
		if remove[s.points[i].ID] {
			s.points[i].EnsureContentHash()
			s.tombstones[s.points[i].ContentHash] = true
			continue
		}
		kept = append(kept, s.points[i])
	}
	s.points = kept
	s.rebuildIndex()

	if s.persistence != nil {
		if err := s.persistence.Rewrite(s.points); err != nil {
			return 0, err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:  ChangeTypeDelete,
		Count: len(remove),
	})

	return len(remove), nil
}

// PruneCandidates returns the good points a prune would remove: those
// older than olderThan (0 = no age limit) and those beyond the keep most
// recent (0 = unlimited). Newest first.
func (s *Store) PruneCandidates(olderThan time.Duration, keep int) []model.GoodPoint {
	all := s.All()

	var cutoff time.Time
	if olderThan > 0 {
		cutoff = time.Now().Add(-olderThan)
	}

	var out []model.GoodPoint
	for i, g := range all {
		tooOld := olderThan > 0 && g.CreatedTime().Before(cutoff)
		beyondKeep := keep > 0 && i >= keep
		if tooOld || beyondKeep {
			out = append(out, g)
		}
	}
	return out
}

// Count returns the total number of good points.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// GetTombstones returns all tombstone hashes, sorted.
func (s *Store) GetTombstones() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes := make([]string, 0, len(s.tombstones))
	for h := range s.tombstones {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes
}

// LoadTombstones adds tombstones from a slice of hashes.
func (s *Store) LoadTombstones(hashes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range hashes {
		s.tombstones[h] = true
	}
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close releases resources and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	if s.persistence != nil {
		return s.persistence.Close()
	}
	return nil
}

// Hydrate replaces the in-memory contents with what is persisted.
// Another process may have appended or deleted good points since the
// last load. Tombstoned and duplicate records are skipped.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}

	loaded, err := s.persistence.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	points := make([]model.GoodPoint, 0, len(loaded))
	seenIDs := make(map[string]bool, len(loaded))
	seenHashes := make(map[string]bool, len(loaded))
	for i := range loaded {
		g := loaded[i]
		g.EnsureContentHash()
		if s.tombstones[g.ContentHash] || seenHashes[g.ContentHash] || seenIDs[g.ID] {
			continue
		}
		seenIDs[g.ID] = true
		seenHashes[g.ContentHash] = true
		points = append(points, g)
	}

	s.points = points
	s.rebuildIndex()

	s.notifyChange(ChangeEvent{
		Type:   ChangeTypeReload,
		Count:  len(points),
		Source: "persistence",
	})
	return nil
}

// Clear removes all good points from the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	count := len(s.points)
	for i := range s.points {
		s.points[i].EnsureContentHash()
		s.tombstones[s.points[i].ContentHash] = true
	}
	s.points = make([]model.GoodPoint, 0)
	s.rebuildIndex()

	if s.persistence != nil {
		if err := s.persistence.Clear(); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:  ChangeTypeClear,
		Count: count,
	})

	return nil
}

func (s *Store) rebuildIndex() {
	s.index = make(map[string]int, len(s.points))
	s.hashIndex = make(map[string]int, len(s.points))
	for i, g := range s.points {
		s.index[g.ID] = i
		if g.ContentHash != "" {
			s.hashIndex[g.ContentHash] = i
		}
	}
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}
