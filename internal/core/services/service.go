package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/regkit/registrar/internal/core/domain"
	"github.com/regkit/registrar/internal/core/ports"
)

// Service wires the registry client, the local stores and the notifier
// behind the flat operation surface the management API consumes. Calls for
// the same domain name are serialized with an in-process lock; the engine
// itself is synchronous and must not have two reconciliation sequences for
// one domain in flight.
type Service struct {
	client   ports.RegistryClient
	domains  ports.DomainRepository
	contacts ports.ContactRepository
	notifier ports.Notifier
	logger   *slog.Logger

	locks namedLocks
}

func NewService(client ports.RegistryClient, domains ports.DomainRepository, contacts ports.ContactRepository, notifier ports.Notifier, logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		domains:  domains,
		contacts: contacts,
		notifier: notifier,
		logger:   logger,
	}
}

// Domain returns the aggregate for one name, creating the local placeholder
// record (state UNKNOWN) on first sight. Nothing is sent to the registry
// here; the remote object is created lazily on first need.
//
// The returned aggregate owns a cache scoped to this one name and must not
// be shared across goroutines; callers that hold several aggregates for the
// same name must serialize externally.
func (s *Service) Domain(ctx context.Context, name string) (*Domain, error) {
	if err := domain.ValidateDomainName(name); err != nil {
		return nil, err
	}

	record, err := s.domains.Load(ctx, name)
	if errors.Is(err, domain.ErrDomainNotFound) {
		record = &domain.Record{
			Name:      name,
			State:     domain.StateUnknown,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := s.domains.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("creating domain record: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("loading domain record: %w", err)
	}

	return &Domain{svc: s, record: record, cache: map[string]any{}}, nil
}

// Available checks with the registry whether the name can still be
// registered.
func (s *Service) Available(ctx context.Context, name string) (bool, error) {
	if err := domain.ValidateDomainName(name); err != nil {
		return false, err
	}
	return s.client.CheckDomain(ctx, name)
}

// Info assembles the read model for one domain: local state plus the
// registry-derived properties. Reading a domain that does not exist
// remotely yet will materialize it, matching the lazy-creation contract.
func (s *Service) Info(ctx context.Context, name string) (*domain.Detail, error) {
	unlock := s.locks.lock(name)
	defer unlock()

	d, err := s.Domain(ctx, name)
	if err != nil {
		return nil, err
	}

	detail := &domain.Detail{Name: d.Name()}

	detail.Nameservers, err = d.Nameservers(ctx)
	if err != nil {
		return nil, err
	}
	detail.Statuses, err = d.Statuses(ctx)
	if err != nil {
		return nil, err
	}
	if detail.CreationDate, err = d.CreationDate(ctx); err != nil {
		return nil, err
	}
	if detail.ExpirationDate, err = d.ExpirationDate(ctx); err != nil {
		return nil, err
	}
	if detail.LastUpdated, err = d.LastUpdated(ctx); err != nil {
		return nil, err
	}
	if detail.SecurityEmail, err = d.SecurityEmail(ctx); err != nil {
		return nil, err
	}

	detail.State = d.State()
	return detail, nil
}

// EnsureExists materializes the remote domain object if it is still a
// local placeholder.
func (s *Service) EnsureExists(ctx context.Context, name string) error {
	unlock := s.locks.lock(name)
	defer unlock()

	d, err := s.Domain(ctx, name)
	if err != nil {
		return err
	}
	if err := d.EnsureExists(ctx); err != nil {
		return err
	}
	s.notify(ctx, name, "domain created")
	return nil
}

// SetNameservers reconciles the domain's host set toward the desired list.
func (s *Service) SetNameservers(ctx context.Context, name string, desired []domain.Nameserver) (*domain.NameserverResult, error) {
	unlock := s.locks.lock(name)
	defer unlock()

	d, err := s.Domain(ctx, name)
	if err != nil {
		return nil, err
	}
	result, err := d.SetNameservers(ctx, desired)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, name, "nameservers updated")
	return result, nil
}

// SetContact binds a contact to the domain in the given role.
func (s *Service) SetContact(ctx context.Context, name string, contact *domain.Contact, role domain.ContactRole) error {
	unlock := s.locks.lock(name)
	defer unlock()

	d, err := s.Domain(ctx, name)
	if err != nil {
		return err
	}
	if err := d.SetContact(ctx, contact, role); err != nil {
		return err
	}
	s.notify(ctx, name, fmt.Sprintf("%s contact updated", role))
	return nil
}

// SecurityEmail returns the domain's security contact email.
func (s *Service) SecurityEmail(ctx context.Context, name string) (string, error) {
	unlock := s.locks.lock(name)
	defer unlock()

	d, err := s.Domain(ctx, name)
	if err != nil {
		return "", err
	}
	return d.SecurityEmail(ctx)
}

// PlaceHold places a client hold on the domain.
func (s *Service) PlaceHold(ctx context.Context, name string) error {
	unlock := s.locks.lock(name)
	defer unlock()

	d, err := s.Domain(ctx, name)
	if err != nil {
		return err
	}
	if err := d.PlaceHold(ctx); err != nil {
		return err
	}
	s.notify(ctx, name, "hold placed")
	return nil
}

// RevertHold lifts a client hold.
func (s *Service) RevertHold(ctx context.Context, name string) error {
	unlock := s.locks.lock(name)
	defer unlock()

	d, err := s.Domain(ctx, name)
	if err != nil {
		return err
	}
	if err := d.RevertHold(ctx); err != nil {
		return err
	}
	s.notify(ctx, name, "hold reverted")
	return nil
}

// Delete removes the domain from the registry. Only held domains may be
// deleted.
func (s *Service) Delete(ctx context.Context, name string) error {
	unlock := s.locks.lock(name)
	defer unlock()

	d, err := s.Domain(ctx, name)
	if err != nil {
		return err
	}
	if err := d.Delete(ctx); err != nil {
		return err
	}
	s.notify(ctx, name, "domain deleted")
	return nil
}

// HealthCheck reports the health of the service's dependencies.
func (s *Service) HealthCheck(ctx context.Context) map[string]error {
	return map[string]error{
		"database": s.domains.Ping(ctx),
	}
}

// notify sends a fire-and-forget update notice. Delivery failure never
// rolls back the reconciliation that triggered it.
func (s *Service) notify(ctx context.Context, name, change string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyUpdate(ctx, name, change); err != nil {
		s.logger.Warn("update notice not delivered", "domain", name, "change", change, "error", err)
	}
}

// namedLocks hands out one mutex per domain name so that multi-step
// reconciliation sequences for the same domain never interleave in-process.
type namedLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *namedLocks) lock(name string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	nm, ok := l.m[name]
	if !ok {
		nm = &sync.Mutex{}
		l.m[name] = nm
	}
	l.mu.Unlock()

	nm.Lock()
	return nm.Unlock
}
