package repository

import (
	"cityevents/internal/domain"
	"cityevents/pkg/logger"
)

type UserRepository struct {
	snap   Snapshotter
	name   string
	logger logger.Logger
}

func NewUserRepository(snap Snapshotter, name string, logger logger.Logger) domain.UserRepository {
	return &UserRepository{
		snap:   snap,
		name:   name,
		logger: logger,
	}
}

func (r *UserRepository) LoadAll() ([]domain.User, error) {
	var users []domain.User
	found, err := decodeSnapshot(r.snap, r.name, r.logger, &users)
	if err != nil || !found {
		return []domain.User{}, err
	}

	r.logger.Info("Users loaded", map[string]interface{}{"count": len(users)})
	return users, nil
}

func (r *UserRepository) SaveAll(users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	return encodeSnapshot(r.snap, r.name, r.logger, users)
}
