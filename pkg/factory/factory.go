package factory

import (
	"errors"
	"fmt"
	"time"

	"cityevents/internal/config"
	"cityevents/internal/database"
	"cityevents/internal/domain"
	"cityevents/internal/repository"
	"cityevents/internal/service"
	"cityevents/pkg/logger"
)

type Factory interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	GetSnapshotter() repository.Snapshotter
	GetClock() func() time.Time

	GetUserRepository() domain.UserRepository
	GetEventRepository() domain.EventRepository

	GetUserService() domain.UserService
	GetEventService() domain.EventService

	Close() error
}

type AppFactory struct {
	config      *config.Config
	logger      logger.Logger
	snapshotter repository.Snapshotter
	clock       func() time.Time

	userRepository  domain.UserRepository
	eventRepository domain.EventRepository

	userService  domain.UserService
	eventService domain.EventService
}

func NewFactory() (Factory, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.LogLevel(cfg.LogLevel), nil)

	return NewFactoryWithConfig(cfg, log, time.Now)
}

// NewFactoryWithConfig wires the application from an already loaded
// configuration. clock drives every temporal decision of the event store.
func NewFactoryWithConfig(cfg *config.Config, log logger.Logger, clock func() time.Time) (Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	snapshotter, err := newSnapshotter(cfg, log)
	if err != nil {
		return nil, err
	}

	factory := &AppFactory{
		config:      cfg,
		logger:      log,
		snapshotter: snapshotter,
		clock:       clock,
	}

	factory.initRepositories()
	factory.initServices()

	log.Info("Stores ready", map[string]interface{}{
		"backend": snapshotter.Backend(),
		"users":   factory.userService.Count(),
		"events":  factory.eventService.Count(),
	})

	return factory, nil
}

func newSnapshotter(cfg *config.Config, log logger.Logger) (repository.Snapshotter, error) {
	switch cfg.Storage.Driver {
	case config.StorageSQLite:
		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}

		if err := database.NewMigrationService(db, log).RunMigrations(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations could not be applied: %w", err)
		}

		return repository.NewSQLiteSnapshotter(db, log), nil
	case config.StorageFile:
		return repository.NewFileSnapshotter(cfg.Storage.DataDir, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func (f *AppFactory) initRepositories() {
	f.userRepository = repository.NewUserRepository(f.snapshotter, f.config.Storage.UsersSnapshot, f.logger)
	f.eventRepository = repository.NewEventRepository(f.snapshotter, f.config.Storage.EventsSnapshot, f.logger)
}

func (f *AppFactory) initServices() {
	f.userService = service.NewUserService(f.userRepository, f.logger)
	f.eventService = service.NewEventService(f.eventRepository, f.logger, service.WithClock(f.clock))
}

func (f *AppFactory) GetLogger() logger.Logger {
	return f.logger
}

func (f *AppFactory) GetConfig() *config.Config {
	return f.config
}

func (f *AppFactory) GetSnapshotter() repository.Snapshotter {
	return f.snapshotter
}

func (f *AppFactory) GetClock() func() time.Time {
	return f.clock
}

func (f *AppFactory) GetUserRepository() domain.UserRepository {
	return f.userRepository
}

func (f *AppFactory) GetEventRepository() domain.EventRepository {
	return f.eventRepository
}

func (f *AppFactory) GetUserService() domain.UserService {
	return f.userService
}

func (f *AppFactory) GetEventService() domain.EventService {
	return f.eventService
}

// Close saves both collections and releases the snapshot backend.
func (f *AppFactory) Close() error {
	var errs []error
	if err := f.userService.Save(); err != nil {
		errs = append(errs, err)
	}
	if err := f.eventService.Save(); err != nil {
		errs = append(errs, err)
	}
	if err := f.snapshotter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("snapshot backend could not be closed: %w", err))
	}
	return errors.Join(errs...)
}
