package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/klokku-calendar/pkg/event"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, e event.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (event.Event, error)
	// GetEvents returns events starting in [from, to), ordered by start.
	GetEvents(ctx context.Context, from, to time.Time) ([]event.Event, error)
	GetAllEvents(ctx context.Context) ([]event.Event, error)
	// GetSeries returns the occurrences of one series, ordered by start.
	GetSeries(ctx context.Context, seriesID uuid.UUID) ([]event.Event, error)
	UpdateEvent(ctx context.Context, e event.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

// MemoryRepository keeps one calendar's events in memory. Besides the events keyed by id it
// maintains the series index: series id -> occurrence ids ordered by start.
type MemoryRepository struct {
	mu            sync.RWMutex
	items         map[uuid.UUID]event.Event
	series        map[uuid.UUID][]uuid.UUID
	inTransaction bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:  make(map[uuid.UUID]event.Event),
		series: make(map[uuid.UUID][]uuid.UUID),
	}
}

// WithTransaction runs fn and restores the state from before the call if fn fails.
// A transaction started inside fn joins the outer one.
func (r *MemoryRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	if r.inTransaction {
		r.mu.Unlock()
		return fn(r)
	}

	originalItems := make(map[uuid.UUID]event.Event, len(r.items))
	for k, v := range r.items {
		originalItems[k] = v
	}
	originalSeries := make(map[uuid.UUID][]uuid.UUID, len(r.series))
	for k, v := range r.series {
		originalSeries[k] = append([]uuid.UUID(nil), v...)
	}
	r.inTransaction = true
	r.mu.Unlock()

	err := fn(r)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inTransaction = false
	if err != nil {
		log.Debugf("rolling back calendar transaction: %v", err)
		r.items = originalItems
		r.series = originalSeries
		return err
	}
	return nil
}

func (r *MemoryRepository) StoreEvent(ctx context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[e.ID]; exists {
		return fmt.Errorf("event %s is already stored", e.ID)
	}
	r.items[e.ID] = e
	r.index(e)
	return nil
}

func (r *MemoryRepository) GetEvent(ctx context.Context, id uuid.UUID) (event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	if !ok {
		return event.Event{}, &event.NotFoundError{What: "event", Key: id.String()}
	}
	return e, nil
}

func (r *MemoryRepository) GetEvents(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]event.Event, 0)
	for _, e := range r.items {
		if !e.StartTime.Before(from) && e.StartTime.Before(to) {
			result = append(result, e)
		}
	}
	SortEvents(result)
	return result, nil
}

func (r *MemoryRepository) GetAllEvents(ctx context.Context) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]event.Event, 0, len(r.items))
	for _, e := range r.items {
		result = append(result, e)
	}
	SortEvents(result)
	return result, nil
}

func (r *MemoryRepository) GetSeries(ctx context.Context, seriesID uuid.UUID) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.series[seriesID]
	if !ok {
		return nil, &event.NotFoundError{What: "series", Key: seriesID.String()}
	}
	result := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.items[id])
	}
	return result, nil
}

func (r *MemoryRepository) UpdateEvent(ctx context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.items[e.ID]
	if !exists {
		return &event.NotFoundError{What: "event", Key: e.ID.String()}
	}
	r.unindex(old)
	r.items[e.ID] = e
	r.index(e)
	return nil
}

func (r *MemoryRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.items[id]
	if !exists {
		return &event.NotFoundError{What: "event", Key: id.String()}
	}
	r.unindex(old)
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) index(e event.Event) {
	seriesID := e.SeriesID()
	if seriesID == uuid.Nil {
		return
	}
	ids := append(r.series[seriesID], e.ID)
	sort.SliceStable(ids, func(i, j int) bool {
		return r.items[ids[i]].StartTime.Before(r.items[ids[j]].StartTime)
	})
	r.series[seriesID] = ids
}

func (r *MemoryRepository) unindex(e event.Event) {
	seriesID := e.SeriesID()
	if seriesID == uuid.Nil {
		return
	}
	ids := r.series[seriesID]
	for i, id := range ids {
		if id == e.ID {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(r.series, seriesID)
		return
	}
	r.series[seriesID] = ids
}

// SortEvents orders events by start, then end, then subject.
func SortEvents(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		if !a.EndTime.Equal(b.EndTime) {
			return a.EndTime.Before(b.EndTime)
		}
		return a.Subject < b.Subject
	})
}
