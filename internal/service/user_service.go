package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"cityevents/internal/domain"
	"cityevents/pkg/logger"
	"cityevents/pkg/metrics"
	"cityevents/pkg/validation"
)

const userEntity = "user"

type UserService struct {
	mu      sync.RWMutex
	repo    domain.UserRepository
	logger  logger.Logger
	users   []domain.User
	session *domain.User
}

// NewUserService loads the persisted users. A failed load is logged and the
// service starts with an empty collection.
func NewUserService(repo domain.UserRepository, logger logger.Logger) domain.UserService {
	s := &UserService{
		repo:   repo,
		logger: logger,
	}

	users, err := repo.LoadAll()
	if err != nil {
		logger.Error("Users could not be loaded, starting empty", map[string]interface{}{"error": err.Error()})
		users = nil
	}

	s.users = make([]domain.User, 0, len(users))
	for _, u := range users {
		s.users = append(s.users, u.Normalized())
	}
	metrics.SetCollectionSize(userEntity, len(s.users))

	return s
}

func (s *UserService) Register(user domain.User) (err error) {
	defer func() { metrics.RecordStoreOperation(userEntity, "register", err) }()

	user = user.Normalized()
	if err = user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(user.Email) >= 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, user.Email)
	}

	next := make([]domain.User, len(s.users), len(s.users)+1)
	copy(next, s.users)
	next = append(next, user)

	if err = s.commit(next); err != nil {
		return fmt.Errorf("user could not be registered: %w", err)
	}

	s.logger.Info("User registered", map[string]interface{}{"email": user.Email})
	return nil
}

func (s *UserService) Update(user domain.User) (err error) {
	defer func() { metrics.RecordStoreOperation(userEntity, "update", err) }()

	user = user.Normalized()
	if err = user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(user.Email)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, user.Email)
	}

	next := make([]domain.User, len(s.users))
	copy(next, s.users)
	next[i] = user

	if err = s.commit(next); err != nil {
		return fmt.Errorf("user could not be updated: %w", err)
	}

	if s.session != nil && s.session.Email == user.Email {
		s.refreshSession()
	}

	s.logger.Info("User updated", map[string]interface{}{"email": user.Email})
	return nil
}

func (s *UserService) Remove(email string) (err error) {
	defer func() { metrics.RecordStoreOperation(userEntity, "remove", err) }()

	key := domain.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, key)
	}

	next := make([]domain.User, 0, len(s.users)-1)
	next = append(next, s.users[:i]...)
	next = append(next, s.users[i+1:]...)

	if err = s.commit(next); err != nil {
		return fmt.Errorf("user could not be removed: %w", err)
	}

	if s.session != nil && s.session.Email == key {
		s.session = nil
	}

	s.logger.Info("User removed", map[string]interface{}{"email": key})
	return nil
}

func (s *UserService) FindByEmail(email string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(domain.NormalizeEmail(email))
	if i < 0 {
		return domain.User{}, false
	}
	return s.users[i], true
}

func (s *UserService) SearchByName(fragment string) []domain.User {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return []domain.User{}
	}

	return s.filter(func(u domain.User) bool {
		return strings.Contains(strings.ToLower(u.Name), fragment)
	})
}

func (s *UserService) SearchByCity(city string) []domain.User {
	city = strings.TrimSpace(city)
	if city == "" {
		return []domain.User{}
	}

	return s.filter(func(u domain.User) bool {
		return strings.EqualFold(strings.TrimSpace(u.City), city)
	})
}

func (s *UserService) ListAll() []domain.User {
	return s.filter(func(domain.User) bool { return true })
}

func (s *UserService) Login(email string) error {
	key := domain.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		s.logger.Warn("Login rejected", map[string]interface{}{"email": key})
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, key)
	}

	current := s.users[i]
	s.session = &current

	s.logger.Info("User logged in", map[string]interface{}{"email": key})
	return nil
}

func (s *UserService) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.logger.Info("User logged out", map[string]interface{}{"email": s.session.Email})
	}
	s.session = nil
}

func (s *UserService) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return domain.User{}, false
	}
	return *s.session, true
}

func (s *UserService) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

func (s *UserService) IsValidEmail(email string) bool {
	return validation.IsEmail(email)
}

func (s *UserService) IsValidPhone(phone string) bool {
	return validation.IsPhone(phone)
}

func (s *UserService) IsValidAge(age int) bool {
	return validation.IsMemberAge(age)
}

func (s *UserService) Stats() domain.UserStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.NewUserStats(s.users)
}

func (s *UserService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *UserService) ClearAll() (err error) {
	defer func() { metrics.RecordStoreOperation(userEntity, "clear", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.users)
	if err = s.commit([]domain.User{}); err != nil {
		return fmt.Errorf("users could not be cleared: %w", err)
	}
	s.session = nil

	s.logger.Warn("All users removed", map[string]interface{}{"count": removed})
	return nil
}

func (s *UserService) Save() (err error) {
	defer func() { metrics.RecordStoreOperation(userEntity, "save", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.commit(s.users); err != nil {
		return fmt.Errorf("users could not be saved: %w", err)
	}
	return nil
}

// commit persists next and only then makes it the live collection, so a
// failed write leaves memory as it was. Callers hold s.mu.
func (s *UserService) commit(next []domain.User) error {
	if err := s.repo.SaveAll(next); err != nil {
		s.logger.Error("Users could not be persisted", map[string]interface{}{"count": len(next), "error": err.Error()})
		return err
	}

	s.users = next
	metrics.SetCollectionSize(userEntity, len(next))
	return nil
}

func (s *UserService) refreshSession() {
	i := s.indexOf(s.session.Email)
	if i < 0 {
		s.session = nil
		return
	}
	current := s.users[i]
	s.session = &current
}

// indexOf expects a normalized key. Blank keys never match.
func (s *UserService) indexOf(key string) int {
	if key == "" {
		return -1
	}
	for i, u := range s.users {
		if u.Email == key {
			return i
		}
	}
	return -1
}

func (s *UserService) filter(keep func(domain.User) bool) []domain.User {
	s.mu.RLock()
	result := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if keep(u) {
			result = append(result, u)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
