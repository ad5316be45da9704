package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"darshan/pkg/logger"
)

// Record is a row kept in sync by a Syncer. RecordVersion is the
// last-writer timestamp used to gate merges.
type Record interface {
	RecordKey() string
	RecordVersion() time.Time
}

// DecodeFunc turns the raw row payload of a change event into a Record
type DecodeFunc func(data json.RawMessage) (Record, error)

// LoadFunc pulls the initial snapshot from the authoritative store
type LoadFunc func(ctx context.Context) ([]Record, error)

// Syncer keeps a local keyed view of one table current: an initial pull
// seeds the view, then change events patch it. All merges go through the
// last-writer-wins gate, so events racing the initial pull and out-of-order
// deliveries resolve deterministically. Stale patches are discarded
// silently; discarding is a no-op, not an error.
type Syncer struct {
	feed   Feed
	table  string
	filter string
	load   LoadFunc
	decode DecodeFunc
	logger *logger.Logger

	mu    sync.RWMutex
	state map[string]Record
}

// NewSyncer builds a syncer for one table/filter scope
func NewSyncer(feed Feed, table, filter string, load LoadFunc, decode DecodeFunc, log *logger.Logger) *Syncer {
	return &Syncer{
		feed:   feed,
		table:  table,
		filter: filter,
		load:   load,
		decode: decode,
		logger: log,
		state:  make(map[string]Record),
	}
}

// Start subscribes to the feed and then hydrates from the store. The
// subscription is opened first so no event can fall between snapshot and
// subscribe; the merge gate reconciles any event that raced the pull.
// The syncer reports Live as soon as the subscribe is acknowledged, even
// if the snapshot pull is still in flight.
func (s *Syncer) Start(ctx context.Context) (*Subscription, error) {
	sub, err := s.feed.Subscribe(ctx, s.table, s.filter)
	if err != nil {
		return nil, err
	}

	go s.applyLoop(sub)

	if s.load != nil {
		records, err := s.load(ctx)
		if err != nil {
			sub.Close()
			return nil, err
		}
		// A pull that finishes after the subscription has closed is
		// discarded: nothing may merge into the view of a dead feed.
		for _, rec := range records {
			if sub.State() == StateClosed {
				break
			}
			s.Apply(rec)
		}
	}

	return sub, nil
}

func (s *Syncer) applyLoop(sub *Subscription) {
	for event := range sub.Events() {
		s.applyEvent(event)
	}
}

func (s *Syncer) applyEvent(event ChangeEvent) {
	switch event.Type {
	case ChangeInsert, ChangeUpdate:
		rec, err := s.decode(event.New)
		if err != nil {
			s.logger.Warn("Failed to decode change event row",
				"table", s.table, "error", err.Error())
			return
		}
		s.Apply(rec)
	case ChangeDelete:
		rec, err := s.decode(event.Old)
		if err != nil {
			s.logger.Warn("Failed to decode change event row",
				"table", s.table, "error", err.Error())
			return
		}
		s.Remove(rec)
	}
}

// Apply merges a record into the view. The patch wins when its version is
// not older than the current one; equal timestamps are accepted so an echo
// of our own write converges instead of sticking. Returns whether the
// record was applied.
func (s *Syncer) Apply(rec Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.state[rec.RecordKey()]
	if ok && rec.RecordVersion().Before(current.RecordVersion()) {
		s.logger.LogStaleWrite(context.Background(), s.table, rec.RecordKey())
		return false
	}

	s.state[rec.RecordKey()] = rec
	return true
}

// Remove drops a record, but only if the delete is not older than the
// version we hold. Returns whether the record was removed.
func (s *Syncer) Remove(rec Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.state[rec.RecordKey()]
	if !ok {
		return false
	}
	if rec.RecordVersion().Before(current.RecordVersion()) {
		s.logger.LogStaleWrite(context.Background(), s.table, rec.RecordKey())
		return false
	}

	delete(s.state, rec.RecordKey())
	return true
}

// Get returns the current record for key, if any
func (s *Syncer) Get(key string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.state[key]
	return rec, ok
}

// Snapshot returns a copy of the current view
func (s *Syncer) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.state))
	for _, rec := range s.state {
		records = append(records, rec)
	}
	return records
}

// Len returns the number of records currently held
func (s *Syncer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state)
}
