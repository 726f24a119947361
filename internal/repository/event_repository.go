package repository

import (
	"cityevents/internal/domain"
	"cityevents/pkg/logger"
)

type EventRepository struct {
	snap   Snapshotter
	name   string
	logger logger.Logger
}

func NewEventRepository(snap Snapshotter, name string, logger logger.Logger) domain.EventRepository {
	return &EventRepository{
		snap:   snap,
		name:   name,
		logger: logger,
	}
}

func (r *EventRepository) Load() (domain.EventSnapshot, error) {
	var snapshot domain.EventSnapshot
	found, err := decodeSnapshot(r.snap, r.name, r.logger, &snapshot)
	if err != nil || !found {
		return domain.EventSnapshot{Events: []domain.Event{}}, err
	}

	for i := range snapshot.Events {
		if snapshot.Events[i].Participants == nil {
			snapshot.Events[i].Participants = []domain.User{}
		}
	}
	if snapshot.Events == nil {
		snapshot.Events = []domain.Event{}
	}

	r.logger.Info("Events loaded", map[string]interface{}{"count": len(snapshot.Events), "next_id": snapshot.NextID})
	return snapshot, nil
}

func (r *EventRepository) Save(snapshot domain.EventSnapshot) error {
	if snapshot.Events == nil {
		snapshot.Events = []domain.Event{}
	}
	return encodeSnapshot(r.snap, r.name, r.logger, snapshot)
}
