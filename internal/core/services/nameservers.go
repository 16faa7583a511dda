package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/regkit/registrar/internal/core/domain"
	"github.com/regkit/registrar/internal/infrastructure/metrics"
)

type nameserverChanges struct {
	deleted  []domain.Nameserver
	updated  []domain.Nameserver
	created  []domain.Nameserver
	previous map[string][]string
}

// SetNameservers reconciles the registry's host set for this domain toward
// the desired list. Validation happens before any registry call; after
// that the run is best-effort: per-host failures are recorded in the result
// and the batch keeps going, because a partial success against a live
// registry must not discard already-applied changes. Deletions are applied
// first, then updates, then creations. The effective nameserver count is
// recomputed afterwards and drives the READY / DNS_NEEDED transition; a
// transition refused by the current state is logged, not raised, since the
// host writes themselves already succeeded.
func (d *Domain) SetNameservers(ctx context.Context, desired []domain.Nameserver) (*domain.NameserverResult, error) {
	defer d.invalidate()

	if len(desired) > domain.MaxNameservers {
		return nil, domain.ErrTooManyNameservers
	}
	normalized := make([]domain.Nameserver, len(desired))
	for i, ns := range desired {
		if err := domain.ValidateNameserver(d.record.Name, ns); err != nil {
			return nil, err
		}
		normalized[i] = domain.Nameserver{Hostname: strings.ToLower(ns.Hostname), Addresses: ns.Addresses}
	}

	changes, err := d.nameserverChanges(ctx, normalized)
	if err != nil {
		return nil, err
	}

	d.svc.logger.Info("setting nameservers", "domain", d.record.Name,
		"desired", len(normalized), "delete", len(changes.deleted),
		"update", len(changes.updated), "create", len(changes.created))

	result := &domain.NameserverResult{}

	for _, ns := range changes.deleted {
		deleted, inUse, derr := d.deleteHost(ctx, ns.Hostname)
		switch {
		case deleted:
			result.Deleted++
			metrics.NameserverOps.WithLabelValues("delete", "ok").Inc()
		case inUse:
			result.InUse = append(result.InUse, ns.Hostname)
			metrics.NameserverOps.WithLabelValues("delete", "in_use").Inc()
			d.svc.logger.Info("did not remove host because it is in use on another domain", "domain", d.record.Name, "host", ns.Hostname)
		default:
			result.Failures = append(result.Failures, domain.HostFailure{Hostname: ns.Hostname, Op: "delete", Reason: derr.Error()})
			metrics.NameserverOps.WithLabelValues("delete", "error").Inc()
			d.svc.logger.Error("error deleting host", "domain", d.record.Name, "host", ns.Hostname, "error", derr)
		}
	}

	for _, ns := range changes.updated {
		if uerr := d.updateHost(ctx, ns.Hostname, ns.Addresses, changes.previous[ns.Hostname]); uerr != nil {
			result.Failures = append(result.Failures, domain.HostFailure{Hostname: ns.Hostname, Op: "update", Reason: uerr.Error()})
			metrics.NameserverOps.WithLabelValues("update", "error").Inc()
			d.svc.logger.Warn("could not update host", "domain", d.record.Name, "host", ns.Hostname, "error", uerr)
		} else {
			result.Updated++
			metrics.NameserverOps.WithLabelValues("update", "ok").Inc()
		}
	}

	for _, ns := range changes.created {
		created, failure := d.createHost(ctx, ns)
		if created {
			result.Created++
			metrics.NameserverOps.WithLabelValues("create", "ok").Inc()
		} else {
			result.Failures = append(result.Failures, *failure)
			metrics.NameserverOps.WithLabelValues(failure.Op, "error").Inc()
			d.svc.logger.Error("error adding nameserver", "domain", d.record.Name, "host", ns.Hostname, "reason", failure.Reason)
		}
	}

	// The local state is a best-effort reflection of remote reality:
	// recompute rather than trust the plan.
	result.Effective = len(changes.previous) - result.Deleted + result.Created

	if result.Effective < domain.MinResolvableNameservers {
		if terr := d.markDNSNeeded(ctx); terr != nil {
			d.svc.logger.Info("nameserver change did not transition to dns needed", "domain", d.record.Name, "error", terr)
		}
	} else if result.Effective <= domain.MaxNameservers {
		if terr := d.markReady(ctx); terr != nil {
			d.svc.logger.Info("nameserver change did not transition to ready", "domain", d.record.Name, "error", terr)
		}
	}
	result.State = d.record.State

	return result, nil
}

// nameserverChanges diffs the current host set (cache-backed, may cost a
// registry round trip) against the desired one, keyed by hostname. Address
// comparison is set-wise, not order-sensitive.
func (d *Domain) nameserverChanges(ctx context.Context, desired []domain.Nameserver) (nameserverChanges, error) {
	current, err := d.Nameservers(ctx)
	if err != nil {
		return nameserverChanges{}, fmt.Errorf("fetching current nameservers: %w", err)
	}

	previous := make(map[string][]string, len(current))
	for _, ns := range current {
		previous[strings.ToLower(ns.Hostname)] = ns.Addresses
	}
	wanted := make(map[string][]string, len(desired))
	for _, ns := range desired {
		wanted[ns.Hostname] = ns.Addresses
	}

	changes := nameserverChanges{previous: previous}

	for host, addrs := range previous {
		newAddrs, keep := wanted[host]
		if !keep {
			changes.deleted = append(changes.deleted, domain.Nameserver{Hostname: host, Addresses: addrs})
			continue
		}
		if !sameAddrSet(addrs, newAddrs) {
			changes.updated = append(changes.updated, domain.Nameserver{Hostname: host, Addresses: newAddrs})
		}
	}

	for _, ns := range desired {
		if _, existed := previous[ns.Hostname]; !existed {
			changes.created = append(changes.created, ns)
		}
	}

	return changes, nil
}

func sameAddrSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, addr := range a {
		set[addr] = struct{}{}
	}
	for _, addr := range b {
		if _, ok := set[addr]; !ok {
			return false
		}
	}
	return true
}

// deleteHost detaches the host from the domain and then deletes the host
// object. A registry refusal because the host is in use by another domain
// is a legitimate constraint: the association is left in place and the
// host is reported as in-use rather than failed.
func (d *Domain) deleteHost(ctx context.Context, hostname string) (deleted, inUse bool, err error) {
	err = d.svc.client.UpdateDomain(ctx, domain.Update{Name: d.record.Name, RemoveHosts: []string{hostname}})
	if err != nil {
		if domain.IsCode(err, domain.CodeAssociationProhibitsOperation) {
			return false, true, nil
		}
		return false, false, fmt.Errorf("detaching host: %w", err)
	}

	err = d.svc.client.DeleteHost(ctx, hostname)
	if err != nil {
		if domain.IsCode(err, domain.CodeAssociationProhibitsOperation) {
			return false, true, nil
		}
		return false, false, fmt.Errorf("deleting host object: %w", err)
	}
	return true, false, nil
}

// updateHost pushes only the address delta for a host whose address set
// changed. An empty delta or an empty new set against a populated old one
// is nothing to do, which is success.
func (d *Domain) updateHost(ctx context.Context, hostname string, newAddrs, oldAddrs []string) error {
	if len(newAddrs) == 0 && len(oldAddrs) != 0 {
		return nil
	}

	added := addrDiff(newAddrs, oldAddrs)
	removed := addrDiff(oldAddrs, newAddrs)
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	err := d.svc.client.UpdateHost(ctx, hostname, added, removed)
	if err != nil && !domain.IsCode(err, domain.CodeObjectExists) {
		return err
	}
	return nil
}

// addrDiff returns the elements of a that are not in b.
func addrDiff(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, addr := range b {
		set[addr] = struct{}{}
	}
	var out []string
	for _, addr := range a {
		if _, ok := set[addr]; !ok {
			out = append(out, addr)
		}
	}
	return out
}

// createHost creates the host object (idempotently) and attaches it to the
// domain. An attach failure after a successful create is reported but the
// creation is not rolled back; the core does not invent compensating
// actions it cannot guarantee are safe.
func (d *Domain) createHost(ctx context.Context, ns domain.Nameserver) (bool, *domain.HostFailure) {
	err := d.svc.client.CreateHost(ctx, ns.Hostname, ns.Addresses)
	if err != nil && !domain.IsCode(err, domain.CodeObjectExists) {
		return false, &domain.HostFailure{Hostname: ns.Hostname, Op: "create", Reason: err.Error()}
	}

	err = d.svc.client.UpdateDomain(ctx, domain.Update{Name: d.record.Name, AddHosts: []string{ns.Hostname}})
	if err != nil {
		return false, &domain.HostFailure{Hostname: ns.Hostname, Op: "attach", Reason: err.Error()}
	}
	return true, nil
}
