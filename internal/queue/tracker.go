package queue

import (
	"context"
	"sort"

	"darshan/internal/realtime"
	"darshan/pkg/logger"
)

// WaitForPosition estimates minutes until darshan for a queue position.
// The head of the queue (position 1) waits zero minutes.
func WaitForPosition(position, minutesPerVisitor int) int {
	if position <= 1 {
		return 0
	}
	return (position - 1) * minutesPerVisitor
}

// Tracker keeps a live in-memory view of all active queue entries. It is
// hydrated from the store and kept current by the change feed, so overview
// reads never touch the database once the tracker is live.
type Tracker struct {
	syncer *realtime.Syncer
	sub    *realtime.Subscription
}

func NewTracker(feed realtime.Feed, repo Repository, log *logger.Logger) *Tracker {
	load := func(ctx context.Context) ([]realtime.Record, error) {
		entries, err := repo.ListAllActive(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]realtime.Record, 0, len(entries))
		for _, entry := range entries {
			records = append(records, entry)
		}
		return records, nil
	}

	return &Tracker{
		syncer: realtime.NewSyncer(feed, QueueEntry{}.TableName(), "", load, DecodeEntry, log),
	}
}

// Start opens the feed subscription and hydrates the view
func (t *Tracker) Start(ctx context.Context) error {
	sub, err := t.syncer.Start(ctx)
	if err != nil {
		return err
	}
	t.sub = sub
	return nil
}

// Live reports whether the feed subscription is currently live
func (t *Tracker) Live() bool {
	return t.sub != nil && t.sub.State() == realtime.StateLive
}

// Apply merges one entry into the view through the last-writer-wins gate
func (t *Tracker) Apply(entry QueueEntry) bool {
	return t.syncer.Apply(entry)
}

// EntryByBooking returns the tracked entry for a booking, if present
func (t *Tracker) EntryByBooking(bookingID string) (QueueEntry, bool) {
	rec, ok := t.syncer.Get(bookingID)
	if !ok {
		return QueueEntry{}, false
	}
	entry, ok := rec.(QueueEntry)
	return entry, ok
}

// ActiveForTemple returns the temple's active entries ordered by position
func (t *Tracker) ActiveForTemple(templeID string) []QueueEntry {
	var entries []QueueEntry
	for _, rec := range t.syncer.Snapshot() {
		entry, ok := rec.(QueueEntry)
		if !ok {
			continue
		}
		if entry.TempleID == templeID && entry.Status == StatusActive {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})
	return entries
}

// Close tears down the feed subscription
func (t *Tracker) Close() error {
	if t.sub == nil {
		return nil
	}
	return t.sub.Close()
}
