// Package registry contains protocol client adapters implementing
// ports.RegistryClient. The in-memory adapter mirrors the registry's
// semantic codes (object-exists, object-does-not-exist,
// association-prohibits-operation) so the reconciliation engine can be run
// and tested without a live registry connection.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/regkit/registrar/internal/core/domain"
	"github.com/regkit/registrar/internal/infrastructure/metrics"
)

type memDomain struct {
	name       string
	registrant string
	authInfo   string
	statuses   map[domain.Status]struct{}
	contacts   map[string]domain.ContactRole
	hosts      map[string]struct{}
	createdAt  time.Time
	expiresAt  time.Time
	updatedAt  *time.Time
}

type memHost struct {
	name      string
	addrs     []string
	createdAt time.Time
}

// Memory is an in-memory registry. All operations are serialized by one
// mutex; it records every command it receives so tests can assert on the
// exact protocol traffic.
type Memory struct {
	mu       sync.Mutex
	domains  map[string]*memDomain
	hosts    map[string]*memHost
	contacts map[string]domain.Contact

	// Fail maps "Command" or "Command:target" to a code; a matching
	// command fails with that code instead of executing.
	Fail map[string]domain.ErrorCode

	calls []string
}

func NewMemory() *Memory {
	return &Memory{
		domains:  make(map[string]*memDomain),
		hosts:    make(map[string]*memHost),
		contacts: make(map[string]domain.Contact),
		Fail:     make(map[string]domain.ErrorCode),
	}
}

// Calls returns the commands received so far, e.g. "CreateDomain example.gov".
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many commands with the given verb were received.
func (m *Memory) CallCount(verb string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if len(c) >= len(verb) && c[:len(verb)] == verb {
			n++
		}
	}
	return n
}

// record logs the command and returns the injected failure, if any.
func (m *Memory) record(verb, target string) *domain.RegistryError {
	m.calls = append(m.calls, verb+" "+target)

	code, ok := m.Fail[verb+":"+target]
	if !ok {
		code, ok = m.Fail[verb]
	}
	if ok {
		metrics.RegistryCommands.WithLabelValues(verb, code.String()).Inc()
		return &domain.RegistryError{Code: code, Message: fmt.Sprintf("injected failure for %s %s", verb, target)}
	}
	metrics.RegistryCommands.WithLabelValues(verb, "ok").Inc()
	return nil
}

func notFound(kind, name string) *domain.RegistryError {
	return &domain.RegistryError{
		Code:    domain.CodeObjectDoesNotExist,
		Message: fmt.Sprintf("%s %s does not exist", kind, name),
	}
}

func alreadyExists(kind, name string) *domain.RegistryError {
	return &domain.RegistryError{
		Code:    domain.CodeObjectExists,
		Message: fmt.Sprintf("%s %s already exists", kind, name),
	}
}

func (m *Memory) InfoDomain(ctx context.Context, name string) (*domain.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InfoDomain", name); err != nil {
		return nil, err
	}

	d, ok := m.domains[name]
	if !ok {
		return nil, notFound("domain", name)
	}

	info := &domain.Info{
		Name:       name,
		AuthInfo:   &d.authInfo,
		Registrant: &d.registrant,
		CreatedAt:  &d.createdAt,
		ExpiresAt:  &d.expiresAt,
	}
	if d.updatedAt != nil {
		info.UpdatedAt = d.updatedAt
	}

	// The server maintains inactive/ok itself based on host associations.
	statuses := []domain.Status{}
	if len(d.hosts) == 0 {
		statuses = append(statuses, domain.StatusInactive)
	} else if len(d.statuses) == 0 {
		statuses = append(statuses, domain.StatusOK)
	}
	for s := range d.statuses {
		statuses = append(statuses, s)
	}
	info.Statuses = statuses

	if len(d.contacts) > 0 {
		for id, role := range d.contacts {
			info.Contacts = append(info.Contacts, domain.ContactRef{ID: id, Role: role})
		}
	}
	if len(d.hosts) > 0 {
		for h := range d.hosts {
			info.Hosts = append(info.Hosts, h)
		}
	}
	return info, nil
}

func (m *Memory) CreateDomain(ctx context.Context, name, registrantID, authInfo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateDomain", name); err != nil {
		return err
	}

	if _, ok := m.domains[name]; ok {
		return alreadyExists("domain", name)
	}
	now := time.Now()
	m.domains[name] = &memDomain{
		name:       name,
		registrant: registrantID,
		authInfo:   authInfo,
		statuses:   make(map[domain.Status]struct{}),
		contacts:   make(map[string]domain.ContactRole),
		hosts:      make(map[string]struct{}),
		createdAt:  now,
		expiresAt:  now.AddDate(1, 0, 0),
	}
	return nil
}

func (m *Memory) UpdateDomain(ctx context.Context, update domain.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateDomain", update.Name); err != nil {
		return err
	}

	d, ok := m.domains[update.Name]
	if !ok {
		return notFound("domain", update.Name)
	}

	for _, s := range update.AddStatuses {
		d.statuses[s] = struct{}{}
	}
	for _, s := range update.RemoveStatuses {
		delete(d.statuses, s)
	}
	for _, c := range update.AddContacts {
		d.contacts[c.ID] = c.Role
	}
	for _, c := range update.RemoveContacts {
		delete(d.contacts, c.ID)
	}
	for _, h := range update.AddHosts {
		d.hosts[h] = struct{}{}
	}
	for _, h := range update.RemoveHosts {
		delete(d.hosts, h)
	}
	if update.Registrant != nil {
		d.registrant = *update.Registrant
	}
	now := time.Now()
	d.updatedAt = &now
	return nil
}

func (m *Memory) DeleteDomain(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteDomain", name); err != nil {
		return err
	}

	if _, ok := m.domains[name]; !ok {
		return notFound("domain", name)
	}
	delete(m.domains, name)
	return nil
}

func (m *Memory) CheckDomain(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CheckDomain", name); err != nil {
		return false, err
	}
	_, taken := m.domains[name]
	return !taken, nil
}

func (m *Memory) CreateHost(ctx context.Context, name string, addrs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateHost", name); err != nil {
		return err
	}

	if _, ok := m.hosts[name]; ok {
		return alreadyExists("host", name)
	}
	m.hosts[name] = &memHost{name: name, addrs: append([]string(nil), addrs...), createdAt: time.Now()}
	return nil
}

func (m *Memory) UpdateHost(ctx context.Context, name string, add, remove []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateHost", name); err != nil {
		return err
	}

	h, ok := m.hosts[name]
	if !ok {
		return notFound("host", name)
	}
	for _, rem := range remove {
		for i, addr := range h.addrs {
			if addr == rem {
				h.addrs = append(h.addrs[:i], h.addrs[i+1:]...)
				break
			}
		}
	}
	h.addrs = append(h.addrs, add...)
	return nil
}

func (m *Memory) DeleteHost(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteHost", name); err != nil {
		return err
	}

	if _, ok := m.hosts[name]; !ok {
		return notFound("host", name)
	}
	// A host still associated with any domain may not be deleted.
	for _, d := range m.domains {
		if _, linked := d.hosts[name]; linked {
			return &domain.RegistryError{
				Code:    domain.CodeAssociationProhibitsOperation,
				Message: fmt.Sprintf("host %s is linked to domain %s", name, d.name),
			}
		}
	}
	delete(m.hosts, name)
	return nil
}

func (m *Memory) InfoHost(ctx context.Context, name string) (*domain.HostInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InfoHost", name); err != nil {
		return nil, err
	}

	h, ok := m.hosts[name]
	if !ok {
		return nil, notFound("host", name)
	}
	return &domain.HostInfo{
		Name:      name,
		Addresses: append([]string(nil), h.addrs...),
		CreatedAt: &h.createdAt,
	}, nil
}

func (m *Memory) CreateContact(ctx context.Context, contact *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateContact", contact.RegistryID); err != nil {
		return err
	}

	if _, ok := m.contacts[contact.RegistryID]; ok {
		return alreadyExists("contact", contact.RegistryID)
	}
	m.contacts[contact.RegistryID] = *contact
	return nil
}

func (m *Memory) UpdateContact(ctx context.Context, contact *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateContact", contact.RegistryID); err != nil {
		return err
	}

	if _, ok := m.contacts[contact.RegistryID]; !ok {
		return notFound("contact", contact.RegistryID)
	}
	m.contacts[contact.RegistryID] = *contact
	return nil
}

func (m *Memory) InfoContact(ctx context.Context, id string) (*domain.ContactInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InfoContact", id); err != nil {
		return nil, err
	}

	c, ok := m.contacts[id]
	if !ok {
		return nil, notFound("contact", id)
	}
	return &domain.ContactInfo{
		ID:    c.RegistryID,
		Email: c.Email,
		Voice: c.Voice,
		Fax:   c.Fax,
		Name:  c.Name,
		Org:   c.Org,
	}, nil
}
