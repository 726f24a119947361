package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityevents/internal/domain"
	"cityevents/pkg/logger"
)

type memoryUserRepository struct {
	mu      sync.Mutex
	users   []domain.User
	saves   int
	loadErr error
	saveErr error
}

func (r *memoryUserRepository) LoadAll() ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return []domain.User{}, r.loadErr
	}
	return append([]domain.User{}, r.users...), nil
}

func (r *memoryUserRepository) SaveAll(users []domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, r.saveErr)
	}
	r.saves++
	r.users = append([]domain.User{}, users...)
	return nil
}

func ana() domain.User {
	return domain.User{Name: "Ana", Email: "ana@x.com", Phone: "11999999999", City: "SP", Age: 30}
}

func fakeUser() domain.User {
	return domain.User{
		Name:  gofakeit.Name(),
		Email: gofakeit.Email(),
		Phone: gofakeit.Phone(),
		City:  gofakeit.City(),
		Age:   gofakeit.Number(13, 120),
	}
}

func newUserService(t *testing.T) (domain.UserService, *memoryUserRepository) {
	t.Helper()
	repo := &memoryUserRepository{}
	return NewUserService(repo, logger.Nop()), repo
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, repo := newUserService(t)

	require.NoError(t, svc.Register(ana()))

	dup := ana()
	dup.Name = "Another Ana"
	dup.Email = "  ANA@X.com "
	err := svc.Register(dup)

	assert.True(t, errors.Is(err, domain.ErrDuplicateEmail))
	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, 1, repo.saves)
}

func TestRegisterRejectsInvalidUser(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *domain.User)
	}{
		{"blank name", func(u *domain.User) { u.Name = "  " }},
		{"blank email", func(u *domain.User) { u.Email = "" }},
		{"email without at", func(u *domain.User) { u.Email = "ana.x.com" }},
		{"blank phone", func(u *domain.User) { u.Phone = "" }},
		{"blank city", func(u *domain.User) { u.City = "" }},
		{"zero age", func(u *domain.User) { u.Age = 0 }},
		{"age too high", func(u *domain.User) { u.Age = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newUserService(t)
			u := ana()
			tt.mutate(&u)

			err := svc.Register(u)
			assert.True(t, errors.Is(err, domain.ErrInvalidUser), "got %v", err)
			assert.Zero(t, svc.Count())
			assert.Zero(t, repo.saves)
		})
	}
}

func TestFindByEmailIsCaseAndWhitespaceInsensitive(t *testing.T) {
	svc, _ := newUserService(t)
	require.NoError(t, svc.Register(ana()))

	for _, query := range []string{"ana@x.com", "ANA@X.COM", "  Ana@x.com\t"} {
		u, ok := svc.FindByEmail(query)
		assert.True(t, ok, query)
		assert.Equal(t, "Ana", u.Name)
	}

	for _, query := range []string{"", "   ", "bia@x.com"} {
		_, ok := svc.FindByEmail(query)
		assert.False(t, ok, query)
	}
}

func TestUpdateRefreshesSession(t *testing.T) {
	svc, _ := newUserService(t)
	require.NoError(t, svc.Register(ana()))
	require.NoError(t, svc.Login("ana@x.com"))

	updated := ana()
	updated.City = "RJ"
	updated.Email = "ANA@x.com"
	require.NoError(t, svc.Update(updated))

	current, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "RJ", current.City)

	stored, _ := svc.FindByEmail("ana@x.com")
	assert.Equal(t, "RJ", stored.City)
}

func TestUpdateUnknownUser(t *testing.T) {
	svc, _ := newUserService(t)

	err := svc.Update(ana())
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))

	invalid := ana()
	invalid.Name = ""
	assert.True(t, errors.Is(svc.Update(invalid), domain.ErrInvalidUser))
}

func TestRemoveClearsSession(t *testing.T) {
	svc, repo := newUserService(t)
	require.NoError(t, svc.Register(ana()))
	require.NoError(t, svc.Login("ana@x.com"))

	require.NoError(t, svc.Remove(" Ana@X.com"))

	assert.False(t, svc.IsLoggedIn())
	assert.Zero(t, svc.Count())
	assert.Empty(t, repo.users)

	assert.True(t, errors.Is(svc.Remove("ana@x.com"), domain.ErrUserNotFound))
}

func TestRemoveOtherUserKeepsSession(t *testing.T) {
	svc, _ := newUserService(t)
	bia := domain.User{Name: "Bia", Email: "bia@x.com", Phone: "21988887777", City: "RJ", Age: 22}
	require.NoError(t, svc.Register(ana()))
	require.NoError(t, svc.Register(bia))
	require.NoError(t, svc.Login("ana@x.com"))

	require.NoError(t, svc.Remove("bia@x.com"))

	current, ok := svc.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, "ana@x.com", current.Email)
}

func TestSessionIsDetachedCopy(t *testing.T) {
	svc, _ := newUserService(t)
	require.NoError(t, svc.Register(ana()))

	assert.True(t, errors.Is(svc.Login("nobody@x.com"), domain.ErrUserNotFound))
	assert.False(t, svc.IsLoggedIn())

	require.NoError(t, svc.Login("ana@x.com"))
	current, _ := svc.CurrentUser()
	current.Name = "Changed"

	again, _ := svc.CurrentUser()
	assert.Equal(t, "Ana", again.Name)

	svc.Logout()
	svc.Logout()
	_, ok := svc.CurrentUser()
	assert.False(t, ok)
}

func TestSearchAndListAreSortedByName(t *testing.T) {
	svc, _ := newUserService(t)
	users := []domain.User{
		{Name: "Carla Souza", Email: "carla@x.com", Phone: "11911112222", City: "São Paulo", Age: 40},
		{Name: "Ana Souza", Email: "ana@x.com", Phone: "11999999999", City: "são paulo", Age: 30},
		{Name: "Bruno Lima", Email: "bruno@x.com", Phone: "21933334444", City: "Rio", Age: 19},
	}
	for _, u := range users {
		require.NoError(t, svc.Register(u))
	}

	names := func(us []domain.User) []string {
		out := make([]string, 0, len(us))
		for _, u := range us {
			out = append(out, u.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Ana Souza", "Bruno Lima", "Carla Souza"}, names(svc.ListAll()))
	assert.Equal(t, []string{"Ana Souza", "Carla Souza"}, names(svc.SearchByName("SOUZA")))
	assert.Equal(t, []string{"Ana Souza", "Carla Souza"}, names(svc.SearchByCity(" SÃO PAULO ")))
	assert.Empty(t, svc.SearchByName("  "))
	assert.NotNil(t, svc.SearchByName(""))
	assert.Empty(t, svc.SearchByCity(""))
	assert.Empty(t, svc.SearchByCity("Sao"))
}

func TestFieldPredicates(t *testing.T) {
	svc, _ := newUserService(t)

	assert.True(t, svc.IsValidEmail("ana@x.com"))
	assert.False(t, svc.IsValidEmail("ana@x"))
	assert.True(t, svc.IsValidPhone("(11) 99999-9999"))
	assert.False(t, svc.IsValidPhone("12345"))
	assert.True(t, svc.IsValidAge(13))
	assert.True(t, svc.IsValidAge(120))
	assert.False(t, svc.IsValidAge(12))
	assert.False(t, svc.IsValidAge(121))
}

func TestStatsAgeBands(t *testing.T) {
	svc, _ := newUserService(t)
	for i, age := range []int{25, 26, 60, 61} {
		u := ana()
		u.Email = fmt.Sprintf("user%d@x.com", i)
		u.Age = age
		if i%2 == 1 {
			u.City = "RJ"
		}
		require.NoError(t, svc.Register(u))
	}

	stats := svc.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.YoungCount)
	assert.Equal(t, 2, stats.AdultCount)
	assert.Equal(t, 1, stats.SeniorCount)
	assert.Equal(t, map[string]int{"SP": 2, "RJ": 2}, stats.ByCity)
}

func TestFailedSaveLeavesMemoryUntouched(t *testing.T) {
	svc, repo := newUserService(t)
	require.NoError(t, svc.Register(ana()))

	repo.saveErr = errors.New("disk full")

	err := svc.Register(fakeUser())
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.Equal(t, 1, svc.Count())

	updated := ana()
	updated.City = "BH"
	assert.True(t, errors.Is(svc.Update(updated), domain.ErrPersistence))
	stored, _ := svc.FindByEmail("ana@x.com")
	assert.Equal(t, "SP", stored.City)

	assert.True(t, errors.Is(svc.Remove("ana@x.com"), domain.ErrPersistence))
	assert.Equal(t, 1, svc.Count())

	assert.True(t, errors.Is(svc.ClearAll(), domain.ErrPersistence))
	assert.Equal(t, 1, svc.Count())
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	repo := &memoryUserRepository{loadErr: domain.ErrCorruptSnapshot}

	svc := NewUserService(repo, logger.Nop())
	assert.Zero(t, svc.Count())

	repo.loadErr = nil
	require.NoError(t, svc.Register(ana()))
	assert.Len(t, repo.users, 1)
}

func TestUsersSurviveReload(t *testing.T) {
	svc, repo := newUserService(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Register(fakeUser()))
	}
	require.NoError(t, svc.Save())

	reloaded := NewUserService(repo, logger.Nop())
	assert.Equal(t, svc.ListAll(), reloaded.ListAll())
}

func TestClearAll(t *testing.T) {
	svc, repo := newUserService(t)
	require.NoError(t, svc.Register(ana()))
	require.NoError(t, svc.Login("ana@x.com"))

	require.NoError(t, svc.ClearAll())

	assert.Zero(t, svc.Count())
	assert.False(t, svc.IsLoggedIn())
	assert.Empty(t, repo.users)
}

func TestConcurrentRegistrations(t *testing.T) {
	svc, repo := newUserService(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := ana()
			u.Email = fmt.Sprintf("user%d@x.com", i)
			assert.NoError(t, svc.Register(u))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, svc.Count())
	assert.Len(t, repo.users, 20)
}
