package services

import (
	"context"
	stderrors "errors"

	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/stores"
	"github.com/sirupsen/logrus"
)

type UserService struct {
	store  stores.UserStore
	owners map[int64]struct{}
	admins map[int64]struct{}
	logger *logrus.Logger
}

func NewUserService(store stores.UserStore, ownerIDs, adminIDs []int64, logger *logrus.Logger) *UserService {
	toSet := func(ids []int64) map[int64]struct{} {
		set := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		return set
	}
	return &UserService{
		store:  store,
		owners: toSet(ownerIDs),
		admins: toSet(adminIDs),
		logger: logger,
	}
}

// Resolve records the sender of event and returns its directory entry and
// effective role. A role supplied by the transport wins, then the configured
// owner and admin ids, then the stored role. Directory failures are logged
// and never block the event.
func (s *UserService) Resolve(ctx context.Context, event *models.Event) (*models.User, models.Role) {
	user := models.User{
		ID:        event.FromID,
		Username:  event.Username,
		FirstName: event.FirstName,
	}

	stored, err := s.store.TouchUser(context.WithoutCancel(ctx), user)
	if err != nil {
		s.logger.WithField("user_id", event.FromID).WithError(err).Warn("Failed to record user")
		stored = &user
	}

	if role, ok := s.configuredRole(event); ok {
		return stored, role
	}
	return stored, models.ParseRole(string(stored.Role))
}

// RoleOf returns the sender's role without touching the directory: the
// transport's role, then the configured ids, else RoleUser.
func (s *UserService) RoleOf(event *models.Event) models.Role {
	if role, ok := s.configuredRole(event); ok {
		return role
	}
	return models.RoleUser
}

func (s *UserService) configuredRole(event *models.Event) (models.Role, bool) {
	switch {
	case event.Role.Valid():
		return event.Role, true
	case s.isOwner(event.FromID):
		return models.RoleOwner, true
	case s.isAdmin(event.FromID):
		return models.RoleAdmin, true
	default:
		return "", false
	}
}

func (s *UserService) isOwner(id int64) bool {
	_, ok := s.owners[id]
	return ok
}

func (s *UserService) isAdmin(id int64) bool {
	_, ok := s.admins[id]
	return ok
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if stderrors.Is(err, stores.ErrUserNotFound) {
			return nil, errors.NewNotFoundError("User not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get user")
	}
	return user, nil
}

func (s *UserService) SetRole(ctx context.Context, id int64, role models.Role) error {
	if !role.Valid() {
		return errors.NewValidationError("invalid role")
	}

	if err := s.store.SetRole(ctx, id, role); err != nil {
		if stderrors.Is(err, stores.ErrUserNotFound) {
			return errors.NewNotFoundError("User not found")
		}
		return errors.NewInternalServerError(err, "Failed to update role")
	}

	s.logger.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("User role updated")
	return nil
}
