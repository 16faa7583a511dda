package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ContactRole identifies which slot a contact occupies on a domain. The
// registry allows at most one contact per role per domain.
type ContactRole string

const (
	RoleRegistrant     ContactRole = "registrant"
	RoleAdministrative ContactRole = "admin"
	RoleTechnical      ContactRole = "tech"
	RoleSecurity       ContactRole = "security"
)

// Valid reports whether the role is one of the four registry roles.
func (r ContactRole) Valid() bool {
	switch r {
	case RoleRegistrant, RoleAdministrative, RoleTechnical, RoleSecurity:
		return true
	}
	return false
}

// DefaultSecurityEmail is the well-known address bound to every domain that
// has no custom security contact. A security contact whose email equals this
// value is "the default" and its email is kept undisclosed.
const DefaultSecurityEmail = "registrar@registry.example"

// Contact is a registry contact record scoped to one domain and one role.
// The RegistryID is the identifier the registry knows the object by; for
// contacts created locally it is generated before the first create command.
type Contact struct {
	RegistryID string      `json:"registry_id"`
	DomainName string      `json:"domain_name"`
	Role       ContactRole `json:"role"`

	Name  string `json:"name"`
	Org   string `json:"org,omitempty"`
	Email string `json:"email"`
	Voice string `json:"voice,omitempty"`
	Fax   string `json:"fax,omitempty"`

	Street     []string `json:"street,omitempty"`
	City       string   `json:"city,omitempty"`
	StateProv  string   `json:"state_province,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
	Country    string   `json:"country,omitempty"`
}

// ResolvedContact is one domain contact with its detail fetched from the
// registry, as held in the cache's "contacts" projection.
type ResolvedContact struct {
	ID    string      `json:"id"`
	Role  ContactRole `json:"role"`
	Email string      `json:"email"`
	Voice string      `json:"voice,omitempty"`
	Fax   string      `json:"fax,omitempty"`
}

// ContactInfo is the response payload of an InfoContact command.
type ContactInfo struct {
	ID    string
	Email string
	Voice string
	Fax   string
	Name  string
	Org   string
}

// Ref returns the association payload used on UpdateDomain commands.
func (c *Contact) Ref() ContactRef {
	return ContactRef{ID: c.RegistryID, Role: c.Role}
}

// DiscloseEmail reports whether the contact's email address may be published.
// Postal address, voice and fax are always withheld; email is withheld too,
// except for a security contact with a non-default address, which exists
// precisely to be reachable.
func (c *Contact) DiscloseEmail() bool {
	return c.Role == RoleSecurity && c.Email != DefaultSecurityEmail
}

// NewRegistryID generates an identifier for a locally created contact.
// Registry object IDs are capped at 16 characters.
func NewRegistryID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

func defaultContact(domainName string, role ContactRole, email string) *Contact {
	return &Contact{
		RegistryID: NewRegistryID(),
		DomainName: domainName,
		Role:       role,
		Name:       "Registry Customer Service",
		Org:        "Registry Operations Center",
		Email:      email,
		Voice:      "+1.8885554370",
		Street:     []string{"4200 Wilson Blvd."},
		City:       "Arlington",
		StateProv:  "VA",
		PostalCode: "22203",
		Country:    "US",
	}
}

// DefaultSecurityContact returns the placeholder security contact bound to
// domains without a custom one. Domains are never left without a security
// contact record.
func DefaultSecurityContact(domainName string) *Contact {
	return defaultContact(domainName, RoleSecurity, DefaultSecurityEmail)
}

// DefaultTechnicalContact returns the default technical contact for a new domain.
func DefaultTechnicalContact(domainName string) *Contact {
	return defaultContact(domainName, RoleTechnical, "registry-help@registry.example")
}

// DefaultAdministrativeContact returns the default administrative contact for a new domain.
func DefaultAdministrativeContact(domainName string) *Contact {
	return defaultContact(domainName, RoleAdministrative, "registry-help@registry.example")
}

// DefaultRegistrantContact returns the generated registrant used when a
// domain object is first created in the registry.
func DefaultRegistrantContact(domainName string) *Contact {
	return defaultContact(domainName, RoleRegistrant, "registry-help@registry.example")
}
