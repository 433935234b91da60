package app

import (
	"github.com/klokku/klokku-calendar/internal/config"
	"github.com/klokku/klokku-calendar/internal/event_bus"
	"github.com/klokku/klokku-calendar/internal/utils"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/calendar_io"
	"github.com/klokku/klokku-calendar/pkg/command"
	"github.com/klokku/klokku-calendar/pkg/registry"
	"github.com/klokku/klokku-calendar/pkg/stats"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Registry        *registry.Registry
	RegistryHandler *registry.Handler

	Files *calendar_io.Service

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	Dispatcher     *command.Dispatcher
	CommandHandler *command.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application, clock utils.Clock) (*Dependencies, error) {
	deps := &Dependencies{Clock: clock}

	deps.EventBus = event_bus.NewEventBus()
	SubscribeLogging(deps.EventBus)

	reg, err := registry.New(deps.EventBus, cfg.Calendar.Name, cfg.Calendar.Timezone)
	if err != nil {
		return nil, err
	}
	deps.Registry = reg
	deps.RegistryHandler = registry.NewHandler(deps.Registry)

	deps.Files = calendar_io.NewService(cfg.Export.Dir, deps.Clock)

	deps.StatsService = stats.NewStatsServiceImpl(func() calendar.Calendar { return deps.Registry.Active().Store })
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	policy := calendar.AllowConflicts
	if cfg.Calendar.AutoDecline {
		policy = calendar.AutoDecline
	}
	deps.Dispatcher = command.NewDispatcher(deps.Registry, deps.Files, deps.StatsService, policy)
	deps.CommandHandler = command.NewHandler(deps.Dispatcher)

	return deps, nil
}
