// Package domain contains the core business entities for the registrar:
// the locally persisted domain record, the registry-derived info snapshots,
// and the vocabulary shared between the reconciliation services and the
// registry protocol adapters.
package domain

import (
	"time"
)

// State captures the lifecycle of a domain object as tracked locally.
// The registry is the source of truth for everything else; the state only
// records how far along the provisioning pipeline this domain is.
type State string

const (
	// StateUnknown is the initial, purely local placeholder. Nothing exists
	// in the registry yet.
	StateUnknown State = "unknown"
	// StateDNSNeeded means the domain object exists in the registry but does
	// not have enough nameservers to resolve.
	StateDNSNeeded State = "dns needed"
	// StateReady means the domain has at least two nameservers and may be
	// live on the internet.
	StateReady State = "ready"
	// StateOnHold means an operator placed a client hold; the domain should
	// not resolve until the hold is reverted.
	StateOnHold State = "on hold"
	// StateDeleted is terminal: the remote object was deleted but the local
	// record is kept for bookkeeping.
	StateDeleted State = "deleted"
)

// Status is a status value attached to a domain object by the registry.
// These are detailed in RFC 5731 section 2.3.
type Status string

const (
	StatusClientDeleteProhibited   Status = "clientDeleteProhibited"
	StatusServerDeleteProhibited   Status = "serverDeleteProhibited"
	StatusClientHold               Status = "clientHold"
	StatusServerHold               Status = "serverHold"
	StatusClientRenewProhibited    Status = "clientRenewProhibited"
	StatusServerRenewProhibited    Status = "serverRenewProhibited"
	StatusClientTransferProhibited Status = "clientTransferProhibited"
	StatusServerTransferProhibited Status = "serverTransferProhibited"
	StatusClientUpdateProhibited   Status = "clientUpdateProhibited"
	StatusServerUpdateProhibited   Status = "serverUpdateProhibited"

	// StatusInactive is set by the server while no host objects are
	// associated with the domain.
	StatusInactive Status = "inactive"
	// StatusOK is the normal status for an object with no pending
	// operations or prohibitions.
	StatusOK Status = "ok"

	StatusPendingCreate   Status = "pendingCreate"
	StatusPendingDelete   Status = "pendingDelete"
	StatusPendingRenew    Status = "pendingRenew"
	StatusPendingTransfer Status = "pendingTransfer"
	StatusPendingUpdate   Status = "pendingUpdate"
)

const (
	// MaxNameLength is the longest fully qualified domain name we accept.
	MaxNameLength = 253
	// MaxNameservers is the registry-imposed upper bound on host
	// associations per domain.
	MaxNameservers = 13
	// MinResolvableNameservers is how many nameservers a domain needs
	// before it can be considered live.
	MinResolvableNameservers = 2

	// AuthInfoPW is sent as the auth_info element on create commands.
	// The protocol requires it but the registry uses its own access control;
	// this value provides no security and is not a secret.
	AuthInfoPW = "2fooBAR123fooBaz"
)

// Record is the locally persisted slice of a domain. Only the name and the
// lifecycle state must survive a restart; every other property is
// re-derivable from the registry and must not be treated as authoritative
// once stale.
type Record struct {
	Name      string    `json:"name"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Nameserver is one desired host association: a hostname plus the glue
// addresses that go with it. Subordinate hosts (ns1.under.this.domain) must
// carry at least one address, delegated hosts must carry none.
type Nameserver struct {
	Hostname  string   `json:"hostname"`
	Addresses []string `json:"addresses,omitempty"`
}

// ContactRef is a domain→contact association as reported by the registry.
type ContactRef struct {
	ID   string      `json:"id"`
	Role ContactRole `json:"role"`
}

// Info is the scalar bundle an InfoDomain round trip returns. Optional
// elements are pointers (or nil slices) so that "the registry did not return
// this element" stays distinguishable from a present-but-empty value.
type Info struct {
	Name          string
	AuthInfo      *string
	Registrant    *string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	ExpiresAt     *time.Time
	TransferredAt *time.Time
	Statuses      []Status
	Contacts      []ContactRef
	Hosts         []string
}

// HostInfo is the response payload of an InfoHost command.
type HostInfo struct {
	Name          string
	Addresses     []string
	Statuses      []Status
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	TransferredAt *time.Time
}

// Update is the payload of an UpdateDomain command. Only the non-zero parts
// are sent on the wire.
type Update struct {
	Name           string
	AddStatuses    []Status
	RemoveStatuses []Status
	AddContacts    []ContactRef
	RemoveContacts []ContactRef
	AddHosts       []string
	RemoveHosts    []string
	Registrant     *string
}

// IsEmpty reports whether the update carries no changes at all.
func (u Update) IsEmpty() bool {
	return len(u.AddStatuses) == 0 && len(u.RemoveStatuses) == 0 &&
		len(u.AddContacts) == 0 && len(u.RemoveContacts) == 0 &&
		len(u.AddHosts) == 0 && len(u.RemoveHosts) == 0 &&
		u.Registrant == nil
}

// Detail is the assembled read model served by the management API: the
// local record plus the registry-derived properties of interest.
type Detail struct {
	Name           string       `json:"name"`
	State          State        `json:"state"`
	Statuses       []Status     `json:"statuses,omitempty"`
	CreationDate   *time.Time   `json:"creation_date,omitempty"`
	ExpirationDate *time.Time   `json:"expiration_date,omitempty"`
	LastUpdated    *time.Time   `json:"last_updated,omitempty"`
	Nameservers    []Nameserver `json:"nameservers"`
	SecurityEmail  string       `json:"security_email,omitempty"`
}
