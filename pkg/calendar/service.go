package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/klokku-calendar/pkg/event"
	log "github.com/sirupsen/logrus"
)

// ConflictPolicy decides whether a create runs the conflict checker.
type ConflictPolicy int

const (
	AllowConflicts ConflictPolicy = iota
	AutoDecline
)

type MutationKind string

const (
	MutationCreated MutationKind = "created"
	MutationUpdated MutationKind = "updated"
	MutationDeleted MutationKind = "deleted"
	MutationMoved   MutationKind = "moved"
)

// Mutation describes one committed change of the store.
type Mutation struct {
	Kind   MutationKind
	Events []event.Event
}

// Service is the event store of one calendar. All timestamps it returns are in its location.
type Service struct {
	repo      Repository
	loc       *time.Location
	listeners []func(ctx context.Context, m Mutation)
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo: repo,
		loc:  loc,
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// OnChange registers fn to be called after every committed mutation.
func (s *Service) OnChange(fn func(ctx context.Context, m Mutation)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Service) notify(ctx context.Context, kind MutationKind, events []event.Event) {
	if len(events) == 0 {
		return
	}
	for _, fn := range s.listeners {
		fn(ctx, Mutation{Kind: kind, Events: events})
	}
}

func (s *Service) Create(ctx context.Context, e event.Event, policy ConflictPolicy) error {
	return s.CreateSeries(ctx, []event.Event{e}, policy)
}

// CreateSeries inserts events in order. Each one is checked against the store, including the
// members of the batch accepted before it. On the first failure nothing of the batch is kept.
func (s *Service) CreateSeries(ctx context.Context, events []event.Event, policy ConflictPolicy) error {
	if len(events) == 0 {
		return &event.ValidationError{Field: "events", Reason: "nothing to create"}
	}
	created := make([]event.Event, 0, len(events))
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		for _, e := range events {
			e = e.In(s.loc)
			if err := insert(ctx, repo, e, policy); err != nil {
				return err
			}
			created = append(created, e)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf("created %d events in %s", len(created), s.loc)
	s.notify(ctx, MutationCreated, created)
	return nil
}

// insert stores e after the duplicate check and, for AutoDecline, the conflict check.
func insert(ctx context.Context, repo Repository, e event.Event, policy ConflictPolicy) error {
	sameDay, err := repo.GetEvents(ctx, event.StartOfDay(e.StartTime), event.StartOfNextDay(e.StartTime))
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}
	for _, existing := range sameDay {
		if existing.Matches(e.Subject, e.StartTime, e.EndTime) {
			return &event.ConflictError{Candidate: e, Existing: existing}
		}
	}
	if policy == AutoDecline {
		if err := event.CheckConflict(e, sameDay); err != nil {
			return err
		}
	}
	if err := repo.StoreEvent(ctx, e); err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, MutationDeleted, []event.Event{e})
	return nil
}

func (s *Service) DeleteSeries(ctx context.Context, seriesID uuid.UUID) error {
	members, err := s.repo.GetSeries(ctx, seriesID)
	if err != nil {
		return err
	}
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		for _, e := range members {
			if err := repo.DeleteEvent(ctx, e.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notify(ctx, MutationDeleted, members)
	return nil
}

// Query returns the events starting on the civil date of date, plus those that began earlier
// and are still running on it.
func (s *Service) Query(ctx context.Context, date time.Time) ([]event.Event, error) {
	from := event.StartOfDay(date.In(s.loc))
	to := event.StartOfNextDay(from)
	all, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	result := make([]event.Event, 0)
	for _, e := range all {
		startsOnDay := !e.StartTime.Before(from) && e.StartTime.Before(to)
		runsIntoDay := e.StartTime.Before(from) && e.EndTime.After(from)
		if startsOnDay || runsIntoDay {
			result = append(result, e)
		}
	}
	return result, nil
}

// QueryRange returns the events lying entirely within [from, to].
func (s *Service) QueryRange(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	if to.Before(from) {
		return nil, &event.ValidationError{Field: "to", Reason: "range ends before it starts"}
	}
	all, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	result := make([]event.Event, 0)
	for _, e := range all {
		if !e.StartTime.Before(from) && !e.EndTime.After(to) {
			result = append(result, e)
		}
	}
	return result, nil
}

// Status returns the events that keep the calendar busy at the given instant. A zero-duration
// event is busy exactly at its start.
func (s *Service) Status(ctx context.Context, at time.Time) ([]event.Event, error) {
	all, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	busy := make([]event.Event, 0)
	for _, e := range all {
		if e.Duration() == 0 {
			if e.StartTime.Equal(at) {
				busy = append(busy, e)
			}
			continue
		}
		if !e.StartTime.After(at) && e.EndTime.After(at) {
			busy = append(busy, e)
		}
	}
	return busy, nil
}

func (s *Service) Events(ctx context.Context) ([]event.Event, error) {
	return s.repo.GetAllEvents(ctx)
}

func (s *Service) Series(ctx context.Context, seriesID uuid.UUID) ([]event.Event, error) {
	return s.repo.GetSeries(ctx, seriesID)
}

// Find returns the events with the given subject. A non-zero start narrows the result to the
// events starting exactly then.
func (s *Service) Find(ctx context.Context, subject string, start time.Time) ([]event.Event, error) {
	all, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	found := make([]event.Event, 0)
	for _, e := range all {
		if e.Subject != subject {
			continue
		}
		if !start.IsZero() && !e.StartTime.Equal(start) {
			continue
		}
		found = append(found, e)
	}
	if len(found) == 0 {
		return nil, event.EventNotFound(subject, start)
	}
	return found, nil
}

// SetLocation moves the calendar to loc. Timed events keep their instant and only the wall
// clock reading changes. All-day events stay on their date.
func (s *Service) SetLocation(ctx context.Context, loc *time.Location) error {
	if loc == nil {
		return &event.ValidationError{Field: "timezone", Reason: "is required"}
	}
	var moved []event.Event
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		all, err := repo.GetAllEvents(ctx)
		if err != nil {
			return err
		}
		moved = make([]event.Event, 0, len(all))
		for _, e := range all {
			e = e.In(loc)
			if err := repo.UpdateEvent(ctx, e); err != nil {
				return fmt.Errorf("failed to reproject event: %w", err)
			}
			moved = append(moved, e)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf("calendar moved from %s to %s", s.loc, loc)
	s.loc = loc
	s.notify(ctx, MutationMoved, moved)
	return nil
}
