package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/regkit/registrar/internal/core/domain"
)

// MemoryDomainStore is an in-memory ports.DomainRepository used by the
// memory registry mode and by tests.
type MemoryDomainStore struct {
	mu      sync.Mutex
	records map[string]domain.Record
}

func NewMemoryDomainStore() *MemoryDomainStore {
	return &MemoryDomainStore{records: make(map[string]domain.Record)}
}

func (s *MemoryDomainStore) Load(ctx context.Context, name string) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDomainNotFound, name)
	}
	return &rec, nil
}

func (s *MemoryDomainStore) Save(ctx context.Context, record *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Name] = *record
	return nil
}

func (s *MemoryDomainStore) List(ctx context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryDomainStore) Ping(ctx context.Context) error { return nil }

// MemoryContactStore is an in-memory ports.ContactRepository.
type MemoryContactStore struct {
	mu       sync.Mutex
	contacts map[string]domain.Contact
}

func NewMemoryContactStore() *MemoryContactStore {
	return &MemoryContactStore{contacts: make(map[string]domain.Contact)}
}

func (s *MemoryContactStore) Get(ctx context.Context, registryID string) (*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[registryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContactNotFound, registryID)
	}
	return &c, nil
}

func (s *MemoryContactStore) FindOther(ctx context.Context, domainName string, role domain.ContactRole, excludeID string) (*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Deterministic order for tests.
	ids := make([]string, 0, len(s.contacts))
	for id := range s.contacts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := s.contacts[id]
		if c.DomainName == domainName && c.Role == role && c.RegistryID != excludeID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: no other %s contact for %s", domain.ErrContactNotFound, role, domainName)
}

func (s *MemoryContactStore) Save(ctx context.Context, contact *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.RegistryID] = *contact
	return nil
}

func (s *MemoryContactStore) Delete(ctx context.Context, registryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contacts, registryID)
	return nil
}
