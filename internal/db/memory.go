package db

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/wuwenbin0122/applytrackr/internal/models"
)

// MemoryUsers is a process-local credential store used for development and tests.
type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]*models.User
	now     func() time.Time
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryUsers) Create(ctx context.Context, user *models.User) error {
	_ = ctx

	prepareUser(user, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return ErrDuplicate
	}
	if _, exists := s.byID[user.ID]; exists {
		return ErrDuplicate
	}

	stored := *user
	s.byID[stored.ID] = &stored
	s.byEmail[stored.Email] = &stored
	return nil
}

type memoryApplication struct {
	app models.Application
	seq uint64
}

// MemoryApplications keeps applications in a map keyed by id. Insertion order
// breaks ties when sorting so results are deterministic.
type MemoryApplications struct {
	mu   sync.RWMutex
	apps map[string]*memoryApplication
	seq  uint64
	now  func() time.Time
}

func NewMemoryApplications() *MemoryApplications {
	return &MemoryApplications{
		apps: make(map[string]*memoryApplication),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryApplications) Create(ctx context.Context, ownerID string, app *models.Application) error {
	_ = ctx

	prepareApplication(ownerID, app, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[app.ID]; exists {
		return ErrDuplicate
	}

	s.seq++
	s.apps[app.ID] = &memoryApplication{app: cloneApplication(*app), seq: s.seq}
	return nil
}

func (s *MemoryApplications) Get(ctx context.Context, ownerID, id string) (*models.Application, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.owned(ownerID, id)
	if !ok {
		return nil, ErrNotFound
	}
	app := cloneApplication(entry.app)
	return &app, nil
}

func (s *MemoryApplications) List(ctx context.Context, ownerID string, opts models.ListOptions) ([]models.Application, error) {
	_ = ctx

	s.mu.RLock()
	entries := lo.Filter(lo.Values(s.apps), func(entry *memoryApplication, _ int) bool {
		if entry.app.OwnerID != ownerID {
			return false
		}
		return opts.Status == "" || string(entry.app.Status) == opts.Status
	})
	entries = lo.Map(entries, func(entry *memoryApplication, _ int) *memoryApplication {
		return &memoryApplication{app: cloneApplication(entry.app), seq: entry.seq}
	})
	s.mu.RUnlock()

	compare := applicationComparator(opts.SortBy)
	slices.SortFunc(entries, func(a, b *memoryApplication) int {
		c := compare(&a.app, &b.app)
		if c == 0 {
			c = cmp.Compare(a.seq, b.seq)
		}
		if !opts.Ascending {
			c = -c
		}
		return c
	})

	apps := make([]models.Application, 0, len(entries))
	for _, entry := range entries {
		apps = append(apps, entry.app)
	}
	return apps, nil
}

func (s *MemoryApplications) Update(ctx context.Context, ownerID, id string, patch models.ApplicationPatch) (*models.Application, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.owned(ownerID, id)
	if !ok {
		return nil, ErrNotFound
	}

	patch.Apply(&entry.app)
	entry.app.UpdatedAt = s.now()

	app := cloneApplication(entry.app)
	return &app, nil
}

func (s *MemoryApplications) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(ownerID, id); !ok {
		return false, nil
	}
	delete(s.apps, id)
	return true, nil
}

// owned must be called with s.mu held.
func (s *MemoryApplications) owned(ownerID, id string) (*memoryApplication, bool) {
	entry, ok := s.apps[id]
	if !ok || entry.app.OwnerID != ownerID {
		return nil, false
	}
	return entry, true
}

func cloneApplication(app models.Application) models.Application {
	if app.Deadline != nil {
		deadline := *app.Deadline
		app.Deadline = &deadline
	}
	return app
}

// applicationComparator orders ascending; a missing deadline sorts first.
func applicationComparator(field string) func(a, b *models.Application) int {
	switch field {
	case models.SortUpdatedAt:
		return func(a, b *models.Application) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case models.SortAppliedDate:
		return func(a, b *models.Application) int { return a.AppliedDate.Compare(b.AppliedDate) }
	case models.SortDeadline:
		return func(a, b *models.Application) int {
			switch {
			case a.Deadline == nil && b.Deadline == nil:
				return 0
			case a.Deadline == nil:
				return -1
			case b.Deadline == nil:
				return 1
			default:
				return a.Deadline.Compare(*b.Deadline)
			}
		}
	case models.SortCompany:
		return func(a, b *models.Application) int { return strings.Compare(a.Company, b.Company) }
	case models.SortPosition:
		return func(a, b *models.Application) int { return strings.Compare(a.Position, b.Position) }
	case models.SortStatus:
		return func(a, b *models.Application) int { return strings.Compare(string(a.Status), string(b.Status)) }
	default:
		return func(a, b *models.Application) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}
