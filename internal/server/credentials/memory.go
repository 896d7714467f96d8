package credentials

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryStore is a process-local Store guarded by a single mutex. It backs
// tests and single-node development runs.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	byEmail  map[string]string
	byLookup map[string]string
	roles    map[string]models.Role
	stores   map[string]models.Store
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*models.User),
		byEmail:  make(map[string]string),
		byLookup: make(map[string]string),
		roles:    make(map[string]models.Role),
		stores:   make(map[string]models.Store),
		now:      time.Now,
	}
}

// AddRole seeds a role. An empty ID is replaced by a fresh uuid.
func (m *MemoryStore) AddRole(r models.Role) models.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.roles[r.ID] = r
	return r
}

// AddStore seeds a store. An empty ID is replaced by a fresh uuid.
func (m *MemoryStore) AddStore(s models.Store) models.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.stores[s.ID] = s
	return s
}

func (m *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return m.users[id].Clone(), nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (m *MemoryStore) FindByRefreshLookup(_ context.Context, lookup string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byLookup[lookup]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return m.users[id].Clone(), nil
}

func (m *MemoryStore) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[u.Email]; taken {
		return nil, common.ErrDuplicateEmail
	}

	c := u.Clone()
	c.ID = uuid.NewString()
	c.Version = 1
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt

	m.users[c.ID] = c
	m.byEmail[c.Email] = c.ID
	if c.RefreshTokenLookup != nil {
		m.byLookup[*c.RefreshTokenLookup] = c.ID
	}

	u.ID, u.Version, u.CreatedAt, u.UpdatedAt = c.ID, c.Version, c.CreatedAt, c.UpdatedAt
	return c.Clone(), nil
}

func (m *MemoryStore) AtomicUpdate(_ context.Context, id string, expectedVersion *int64, mutate Mutator) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if expectedVersion != nil && cur.Version != *expectedVersion {
		return nil, common.ErrVersionConflict
	}

	next := cur.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.Email = cur.Email
	next.Version = cur.Version + 1
	next.UpdatedAt = m.now()

	if cur.RefreshTokenLookup != nil {
		delete(m.byLookup, *cur.RefreshTokenLookup)
	}
	if next.RefreshTokenLookup != nil {
		m.byLookup[*next.RefreshTokenLookup] = id
	}
	m.users[id] = next

	return next.Clone(), nil
}

func (m *MemoryStore) RoleExists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.roles[id]
	return ok, nil
}

func (m *MemoryStore) StoreExists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[id]
	return ok && s.Active, nil
}

func (m *MemoryStore) GetRole(_ context.Context, id string) (*models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

func (m *MemoryStore) GetStore(_ context.Context, id string) (*models.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (m *MemoryStore) ListRoles(_ context.Context) ([]models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) ListStores(_ context.Context) ([]models.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Store, 0, len(m.stores))
	for _, s := range m.stores {
		if s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
