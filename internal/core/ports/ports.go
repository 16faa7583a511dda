package ports

import (
	"context"

	"github.com/regkit/registrar/internal/core/domain"
)

// RegistryClient is the protocol boundary to the remote registry. Every
// command is a synchronous request/response; failures are reported as a
// *domain.RegistryError carrying a machine-readable code. The core never
// interprets transport detail beyond that code and the connection-failure
// classification.
type RegistryClient interface {
	InfoDomain(ctx context.Context, name string) (*domain.Info, error)
	CreateDomain(ctx context.Context, name, registrantID, authInfo string) error
	UpdateDomain(ctx context.Context, update domain.Update) error
	DeleteDomain(ctx context.Context, name string) error
	CheckDomain(ctx context.Context, name string) (bool, error)

	CreateHost(ctx context.Context, name string, addrs []string) error
	UpdateHost(ctx context.Context, name string, add, remove []string) error
	DeleteHost(ctx context.Context, name string) error
	InfoHost(ctx context.Context, name string) (*domain.HostInfo, error)

	CreateContact(ctx context.Context, contact *domain.Contact) error
	UpdateContact(ctx context.Context, contact *domain.Contact) error
	InfoContact(ctx context.Context, id string) (*domain.ContactInfo, error)
}

// DomainRepository persists the local domain record. Only name and state
// must survive a restart.
type DomainRepository interface {
	Load(ctx context.Context, name string) (*domain.Record, error)
	Save(ctx context.Context, record *domain.Record) error
	List(ctx context.Context) ([]domain.Record, error)
	Ping(ctx context.Context) error
}

// ContactRepository persists the local view of registry contacts so the
// singleton-per-role rule can be enforced without a registry round trip.
type ContactRepository interface {
	Get(ctx context.Context, registryID string) (*domain.Contact, error)
	// FindOther returns a contact bound to the domain in the given role with
	// a different registry ID, or domain.ErrContactNotFound.
	FindOther(ctx context.Context, domainName string, role domain.ContactRole, excludeID string) (*domain.Contact, error)
	Save(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, registryID string) error
}

// Notifier delivers fire-and-forget update notices. Delivery failures must
// never roll back an already-successful reconciliation; implementations
// report the error and callers log it at most.
type Notifier interface {
	NotifyUpdate(ctx context.Context, domainName, change string) error
}

// RegistrarService is the flat operation surface consumed by the management
// API. Implementations serialize concurrent calls for the same domain name.
type RegistrarService interface {
	Available(ctx context.Context, name string) (bool, error)
	Info(ctx context.Context, name string) (*domain.Detail, error)
	EnsureExists(ctx context.Context, name string) error
	SetNameservers(ctx context.Context, name string, desired []domain.Nameserver) (*domain.NameserverResult, error)
	SetContact(ctx context.Context, name string, contact *domain.Contact, role domain.ContactRole) error
	SecurityEmail(ctx context.Context, name string) (string, error)
	PlaceHold(ctx context.Context, name string) error
	RevertHold(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	HealthCheck(ctx context.Context) map[string]error
}
