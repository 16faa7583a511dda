package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/regkit/registrar/internal/core/domain"
	"github.com/regkit/registrar/internal/infrastructure/metrics"
)

// Domain is the aggregate for one domain name: the persisted record, a
// per-instance cache of registry-derived properties, and the reconcilers
// behind typed getters and setters.
//
// The registry is the source of truth. Properties are fetched lazily on
// first access, and the whole cache is dropped after every mutating command
// because mutations can have side effects on unrelated properties. The
// remote object itself is created lazily: the first fetch against a domain
// that does not exist remotely triggers materialization exactly once.
//
// A Domain instance is not safe for concurrent use; Service serializes
// access per name.
type Domain struct {
	svc    *Service
	record *domain.Record
	cache  map[string]any
}

// Name returns the fully qualified domain name.
func (d *Domain) Name() string { return d.record.Name }

// State returns the current lifecycle state.
func (d *Domain) State() domain.State { return d.record.State }

// IsActive reports whether the domain is considered live.
func (d *Domain) IsActive() bool { return d.record.State == domain.StateReady }

// EnsureExists makes sure the remote domain object exists, materializing it
// if this record is still a local placeholder. The side effect is explicit
// here rather than hidden inside every getter's fetch path, but the fetch
// path still materializes on demand for compatibility.
func (d *Domain) EnsureExists(ctx context.Context) error {
	if d.record.State != domain.StateUnknown {
		return nil
	}
	return d.materialize(ctx)
}

func (d *Domain) invalidate() {
	d.cache = map[string]any{}
}

// getProperty returns one cached registry property, fetching the full
// snapshot from the registry if the key is absent. Host and contact detail
// is only resolved when that specific projection was asked for.
func (d *Domain) getProperty(ctx context.Context, key string) (any, error) {
	if v, ok := d.cache[key]; ok {
		return v, nil
	}
	if err := d.fetchCache(ctx, key == "hosts", key == "contacts"); err != nil {
		return nil, err
	}
	if v, ok := d.cache[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrPropertyNotFound, key)
}

// fetchCache contacts the registry for the scalar property bundle and
// replaces the cache snapshot. Only elements the registry actually returned
// are stored, so an absent key stays distinguishable from a fetched null.
// Contact and host resolutions are independent projections: resolving one
// carries the other's previous resolution forward instead of dropping it.
func (d *Domain) fetchCache(ctx context.Context, fetchHosts, fetchContacts bool) error {
	info, err := d.getOrCreate(ctx)
	if err != nil {
		metrics.CacheFetches.WithLabelValues("error").Inc()
		return err
	}

	cleaned := map[string]any{"name": info.Name}
	if info.AuthInfo != nil {
		cleaned["auth_info"] = *info.AuthInfo
	}
	if info.Registrant != nil {
		cleaned["registrant"] = *info.Registrant
	}
	if info.CreatedAt != nil {
		cleaned["cr_date"] = *info.CreatedAt
	}
	if info.UpdatedAt != nil {
		cleaned["up_date"] = *info.UpdatedAt
	}
	if info.ExpiresAt != nil {
		cleaned["ex_date"] = *info.ExpiresAt
	}
	if info.TransferredAt != nil {
		cleaned["tr_date"] = *info.TransferredAt
	}
	if info.Statuses != nil {
		cleaned["statuses"] = info.Statuses
	}
	if info.Contacts != nil {
		cleaned["_contacts"] = info.Contacts
	}
	if info.Hosts != nil {
		cleaned["_hosts"] = info.Hosts
	}

	oldHosts, hadHosts := d.cache["hosts"]
	oldContacts, hadContacts := d.cache["contacts"]

	if fetchContacts {
		if refs, ok := cleaned["_contacts"].([]domain.ContactRef); ok && len(refs) > 0 {
			resolved, err := d.resolveContacts(ctx, refs)
			if err != nil {
				metrics.CacheFetches.WithLabelValues("error").Inc()
				return err
			}
			cleaned["contacts"] = resolved
		}
		if hadHosts {
			cleaned["hosts"] = oldHosts
		}
	}

	if fetchHosts {
		if names, ok := cleaned["_hosts"].([]string); ok && len(names) > 0 {
			resolved, err := d.resolveHosts(ctx, names)
			if err != nil {
				metrics.CacheFetches.WithLabelValues("error").Inc()
				return err
			}
			cleaned["hosts"] = resolved
		}
		if hadContacts {
			cleaned["contacts"] = oldContacts
		}
	}

	d.cache = cleaned
	metrics.CacheFetches.WithLabelValues("ok").Inc()
	return nil
}

// getOrCreate fetches info about this domain, materializing the remote
// object if the registry reports it missing. Creation is attempted at most
// once per fetch; if the object still does not resolve afterwards the
// underlying error is surfaced rather than looping.
func (d *Domain) getOrCreate(ctx context.Context) (*domain.Info, error) {
	triedCreate := false
	for attempt := 0; attempt < 3; attempt++ {
		info, err := d.svc.client.InfoDomain(ctx, d.record.Name)
		if err == nil {
			return info, nil
		}
		if triedCreate || !domain.IsCode(err, domain.CodeObjectDoesNotExist) {
			return nil, err
		}
		triedCreate = true
		if terr := d.materialize(ctx); terr != nil {
			return nil, terr
		}
	}
	return nil, fmt.Errorf("domain %s did not resolve after creation", d.record.Name)
}

func (d *Domain) resolveContacts(ctx context.Context, refs []domain.ContactRef) ([]domain.ResolvedContact, error) {
	contacts := make([]domain.ResolvedContact, 0, len(refs))
	for _, ref := range refs {
		info, err := d.svc.client.InfoContact(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("resolving contact %s: %w", ref.ID, err)
		}
		contacts = append(contacts, domain.ResolvedContact{
			ID:    ref.ID,
			Role:  ref.Role,
			Email: info.Email,
			Voice: info.Voice,
			Fax:   info.Fax,
		})
	}
	return contacts, nil
}

func (d *Domain) resolveHosts(ctx context.Context, names []string) ([]domain.Nameserver, error) {
	hosts := make([]domain.Nameserver, 0, len(names))
	for _, name := range names {
		info, err := d.svc.client.InfoHost(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolving host %s: %w", name, err)
		}
		hosts = append(hosts, domain.Nameserver{Hostname: name, Addresses: info.Addresses})
	}
	return hosts, nil
}

func (d *Domain) dateProperty(ctx context.Context, key string) (*time.Time, error) {
	v, err := d.getProperty(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("unexpected type for %s in registry cache", key)
	}
	return &t, nil
}

// CreationDate returns the cr_date element from the registry.
func (d *Domain) CreationDate(ctx context.Context) (*time.Time, error) {
	return d.dateProperty(ctx, "cr_date")
}

// ExpirationDate returns the ex_date element from the registry.
func (d *Domain) ExpirationDate(ctx context.Context) (*time.Time, error) {
	return d.dateProperty(ctx, "ex_date")
}

// LastUpdated returns the up_date element from the registry.
func (d *Domain) LastUpdated(ctx context.Context) (*time.Time, error) {
	return d.dateProperty(ctx, "up_date")
}

// LastTransferred returns the tr_date element from the registry.
func (d *Domain) LastTransferred(ctx context.Context) (*time.Time, error) {
	return d.dateProperty(ctx, "tr_date")
}

// Statuses returns the status elements currently set on the domain object.
// A domain whose info response carried no statuses reports an empty list.
func (d *Domain) Statuses(ctx context.Context) ([]domain.Status, error) {
	v, err := d.getProperty(ctx, "statuses")
	if err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) {
			return []domain.Status{}, nil
		}
		return nil, err
	}
	statuses, ok := v.([]domain.Status)
	if !ok {
		return nil, errors.New("unexpected type for statuses in registry cache")
	}
	return statuses, nil
}

// Nameservers returns the domain's hosts with their resolved addresses.
// A domain with no host associations yet reports an empty list; that is
// the normal condition for a new domain, not an error.
func (d *Domain) Nameservers(ctx context.Context) ([]domain.Nameserver, error) {
	v, err := d.getProperty(ctx, "hosts")
	if err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) {
			return []domain.Nameserver{}, nil
		}
		return nil, err
	}
	hosts, ok := v.([]domain.Nameserver)
	if !ok {
		return nil, errors.New("unexpected type for hosts in registry cache")
	}
	return hosts, nil
}

// Contacts returns the domain's contacts with their detail resolved.
func (d *Domain) Contacts(ctx context.Context) ([]domain.ResolvedContact, error) {
	v, err := d.getProperty(ctx, "contacts")
	if err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) {
			return []domain.ResolvedContact{}, nil
		}
		return nil, err
	}
	contacts, ok := v.([]domain.ResolvedContact)
	if !ok {
		return nil, errors.New("unexpected type for contacts in registry cache")
	}
	return contacts, nil
}

// SecurityContact returns the domain's security contact. A domain that has
// no custom security contact on file reports the well-known default.
func (d *Domain) SecurityContact(ctx context.Context) (*domain.Contact, error) {
	contacts, err := d.Contacts(ctx)
	if err != nil {
		d.svc.logger.Info("could not fetch contacts, using default security contact", "domain", d.record.Name, "error", err)
		return domain.DefaultSecurityContact(d.record.Name), nil
	}
	for _, c := range contacts {
		if c.Role == domain.RoleSecurity {
			contact := domain.DefaultSecurityContact(d.record.Name)
			contact.RegistryID = c.ID
			contact.Email = c.Email
			return contact, nil
		}
	}
	return domain.DefaultSecurityContact(d.record.Name), nil
}

// SecurityEmail returns the email of the domain's security contact.
func (d *Domain) SecurityEmail(ctx context.Context) (string, error) {
	contact, err := d.SecurityContact(ctx)
	if err != nil {
		return "", err
	}
	return contact.Email, nil
}

// SetContact binds a contact to the domain in its role, displacing any
// other contact occupying that role. See setSingletonContact for the full
// reconciliation sequence. The cache is dropped whether or not the
// operation succeeds.
func (d *Domain) SetContact(ctx context.Context, contact *domain.Contact, expectedRole domain.ContactRole) error {
	defer d.invalidate()
	if !expectedRole.Valid() {
		return fmt.Errorf("unknown contact role %q", expectedRole)
	}
	if contact.RegistryID == "" {
		contact.RegistryID = domain.NewRegistryID()
	}
	contact.DomainName = d.record.Name
	return d.setSingletonContact(ctx, contact, expectedRole)
}
