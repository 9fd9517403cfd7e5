package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mapperinfluences/backend/internal/domain"
	"github.com/mapperinfluences/backend/internal/osuapi"
	"github.com/mapperinfluences/backend/internal/retry"
)

// subscriberBuffer is the per-subscriber broadcast channel depth;
// slower subscribers than this drop messages rather than stall the
// tracker.
const subscriberBuffer = 50

// Store is the subset of the database façade the tracker depends on.
type Store interface {
	GetActivities(limit, start int) ([]domain.Activity, error)
	StartActivityStream(ctx context.Context) (<-chan Notification, error)
}

// Notification mirrors db.ActivityNotification without importing the
// db package directly, so the tracker can be tested against a fake
// store with no database dependency.
type Notification struct {
	Action string
	Result domain.Activity
	Err    error
}

// Enricher resolves beatmap ids to their enriched "with embedded
// user" form.
type Enricher interface {
	GetBeatmapsWithUser(ctx context.Context, ids []uint32) ([]osuapi.EnrichedBeatmap, error)
	GetBeatmapWithUser(ctx context.Context, id uint32) (osuapi.EnrichedBeatmap, bool, error)
}

// Tracker owns the bounded ring of recent activities and the lossy
// broadcast fan-out serving WebSocket subscribers. The ring, the spam
// filter, and the per-subscriber buffered channels are grounded on the
// teacher's LogBroadcaster shape, generalized from log lines to
// Activity records.
type Tracker struct {
	store    Store
	enricher Enricher
	capacity int

	mu    sync.Mutex
	queue []domain.Activity
	subs  []chan string
}

// New builds a Tracker: it backfills the ring from the database,
// enriches every beatmap reference found, and spawns the streaming
// consumer goroutine. ctx governs the lifetime of the streaming
// goroutine, not of New itself.
func New(ctx context.Context, store Store, enricher Enricher, capacity int) (*Tracker, error) {
	t := &Tracker{store: store, enricher: enricher, capacity: capacity}

	if err := t.backfill(ctx); err != nil {
		return nil, err
	}

	go t.consume(ctx)

	return t, nil
}

// backfill walks get_activities pages of size 2*Q, applying the spam
// filter and pushing to the tail, stopping when the ring reaches
// capacity or a page comes back shorter than the page size.
func (t *Tracker) backfill(ctx context.Context) error {
	step := 2 * t.capacity
	if step == 0 {
		step = 1
	}
	offset := 0

	var queue []domain.Activity
	for len(queue) < t.capacity {
		page, err := t.store.GetActivities(step, offset)
		if err != nil {
			return err
		}
		// get_activities returns newest-first; walk it oldest-first so
		// the ring ends up chronologically ordered head→tail.
		for i := len(page) - 1; i >= 0; i-- {
			record := page[i]
			if IsSpam(queue, record) {
				continue
			}
			queue = append(queue, record)
			if len(queue) > t.capacity {
				queue = queue[len(queue)-t.capacity:]
			}
		}
		if len(page) < step {
			break
		}
		offset += step
	}

	ids := collectBeatmapIDs(queue)
	if len(ids) > 0 {
		enriched, err := t.enricher.GetBeatmapsWithUser(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint32]osuapi.EnrichedBeatmap, len(enriched))
		for _, b := range enriched {
			byID[b.ID] = b
		}
		for i := range queue {
			if queue[i].Beatmap == nil {
				continue
			}
			if b, ok := byID[queue[i].Beatmap.GetID()]; ok {
				queue[i].Beatmap = &domain.BeatmapRef{Enriched: &b}
			}
		}
	}

	t.mu.Lock()
	t.queue = queue
	t.mu.Unlock()
	return nil
}

func collectBeatmapIDs(queue []domain.Activity) []uint32 {
	seen := map[uint32]struct{}{}
	var ids []uint32
	for _, a := range queue {
		if a.Beatmap == nil {
			continue
		}
		id := a.Beatmap.GetID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// consume runs the streaming goroutine: it opens a live stream via
// the retry harness and processes notifications forever, restarting
// the stream whenever it closes or errors unexpectedly.
func (t *Tracker) consume(ctx context.Context) {
	for {
		stream, err := retry.Until(ctx, "activity stream", func(ctx context.Context) (<-chan Notification, error) {
			return t.store.StartActivityStream(ctx)
		})
		if err != nil {
			return // ctx cancelled
		}

		t.drain(ctx, stream)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// drain processes notifications from one live-stream connection until
// it closes.
func (t *Tracker) drain(ctx context.Context, stream <-chan Notification) {
	for notification := range stream {
		if notification.Err != nil {
			slog.Debug("activity stream deserialization error, skipping", "error", notification.Err)
			continue
		}
		if notification.Action == "UPDATE" || notification.Action == "DELETE" {
			slog.Debug("ignoring non-create activity notification", "action", notification.Action)
			continue
		}
		t.handleNew(ctx, notification.Result)
	}
}

func (t *Tracker) handleNew(ctx context.Context, record domain.Activity) {
	t.mu.Lock()
	spam := IsSpam(t.queue, record)
	t.mu.Unlock()
	if spam {
		return
	}

	if record.Beatmap != nil {
		enriched, ok, err := t.enricher.GetBeatmapWithUser(ctx, record.Beatmap.GetID())
		if err != nil {
			slog.Warn("failed to enrich activity beatmap, skipping", "error", err)
			return
		}
		if ok {
			record.Beatmap = &domain.BeatmapRef{Enriched: &enriched}
		}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		slog.Error("failed to serialize activity", "error", err)
		return
	}

	t.mu.Lock()
	t.queue = append(t.queue, record)
	if len(t.queue) > t.capacity {
		t.queue = t.queue[len(t.queue)-t.capacity:]
	}
	subs := append([]chan string(nil), t.subs...)
	t.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		select {
		case sub <- string(payload):
			delivered++
		default:
			// slow subscriber: drop rather than block the tracker
		}
	}
	slog.Debug("broadcast activity", "subscribers", len(subs), "delivered", delivered)
}

// Subscribe returns a JSON snapshot of the current ring plus a
// channel that receives every subsequently accepted activity as a
// JSON string, and a cancel function that unregisters the channel.
func (t *Tracker) Subscribe() (string, <-chan string, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot, _ := json.Marshal(t.queue)
	ch := make(chan string, subscriberBuffer)
	t.subs = append(t.subs, ch)

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, sub := range t.subs {
			if sub == ch {
				t.subs = append(t.subs[:i], t.subs[i+1:]...)
				break
			}
		}
		close(ch)
	}

	return string(snapshot), ch, cancel
}

// GetCurrentQueue returns a copy of the ring's current contents.
func (t *Tracker) GetCurrentQueue() []domain.Activity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Activity(nil), t.queue...)
}
