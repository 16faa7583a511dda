package domain

// HostFailure records one nameserver operation that did not take effect.
// The batch keeps going; these are reported back so callers can tell a
// partial success from a clean one.
type HostFailure struct {
	Hostname string `json:"hostname"`
	Op       string `json:"op"` // "create", "update", "delete", "attach"
	Reason   string `json:"reason"`
}

// NameserverResult reports the outcome of one reconciliation run against
// the registry's host set.
type NameserverResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`

	// InUse lists hosts that could not be detached because the registry
	// reports them in use by another domain. The association is left in
	// place; this is a legitimate remote constraint, not a failure of the
	// run.
	InUse []string `json:"in_use,omitempty"`

	Failures []HostFailure `json:"failures,omitempty"`

	// Effective is the recomputed nameserver count after the run:
	// previous count minus successful deletes plus successful creates.
	Effective int `json:"effective"`

	// State is the lifecycle state the domain ended the run in.
	State State `json:"state"`
}
