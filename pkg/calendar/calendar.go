package calendar

import (
	"context"
	"time"

	"github.com/klokku/klokku-calendar/pkg/event"
)

// Calendar is the part of the store that import, export and analytics work against.
type Calendar interface {
	Location() *time.Location
	Create(ctx context.Context, e event.Event, policy ConflictPolicy) error
	CreateSeries(ctx context.Context, events []event.Event, policy ConflictPolicy) error
	Events(ctx context.Context) ([]event.Event, error)
	QueryRange(ctx context.Context, from, to time.Time) ([]event.Event, error)
}

var _ Calendar = (*Service)(nil)
