package services

import (
	"context"
	"fmt"
	"time"

	"github.com/regkit/registrar/internal/core/domain"
	"github.com/regkit/registrar/internal/infrastructure/metrics"
)

// The lifecycle is a closed table: a transition is only legal from its
// declared source states. State is never written outside applyTransition.
type transitionName string

const (
	transitionMaterialize   transitionName = "materialize"
	transitionMarkReady     transitionName = "mark-ready"
	transitionMarkDNSNeeded transitionName = "mark-dns-needed"
	transitionPlaceHold     transitionName = "place-hold"
	transitionRevertHold    transitionName = "revert-hold"
	transitionDelete        transitionName = "delete"
)

type transitionRule struct {
	from []domain.State
	to   domain.State
}

var transitionTable = map[transitionName]transitionRule{
	transitionMaterialize:   {from: []domain.State{domain.StateUnknown}, to: domain.StateDNSNeeded},
	transitionMarkReady:     {from: []domain.State{domain.StateDNSNeeded}, to: domain.StateReady},
	transitionMarkDNSNeeded: {from: []domain.State{domain.StateReady}, to: domain.StateDNSNeeded},
	transitionPlaceHold:     {from: []domain.State{domain.StateReady, domain.StateOnHold}, to: domain.StateOnHold},
	transitionRevertHold:    {from: []domain.State{domain.StateReady, domain.StateOnHold}, to: domain.StateReady},
	transitionDelete:        {from: []domain.State{domain.StateOnHold}, to: domain.StateDeleted},
}

func (r transitionRule) allows(s domain.State) bool {
	for _, from := range r.from {
		if from == s {
			return true
		}
	}
	return false
}

// applyTransition guards the state change, runs the side effect, and only
// then writes and persists the new state. A failing side effect leaves the
// state untouched.
func (d *Domain) applyTransition(ctx context.Context, name transitionName, effect func(context.Context) error) error {
	rule, ok := transitionTable[name]
	if !ok || !rule.allows(d.record.State) {
		metrics.StateTransitions.WithLabelValues(string(name), "illegal").Inc()
		return &domain.IllegalTransitionError{Transition: string(name), From: d.record.State}
	}

	if effect != nil {
		if err := effect(ctx); err != nil {
			metrics.StateTransitions.WithLabelValues(string(name), "error").Inc()
			return err
		}
	}

	d.record.State = rule.to
	d.record.UpdatedAt = time.Now()
	if err := d.svc.domains.Save(ctx, d.record); err != nil {
		return err
	}

	metrics.StateTransitions.WithLabelValues(string(name), "ok").Inc()
	d.svc.logger.Info("state transition", "domain", d.record.Name, "transition", string(name), "state", string(rule.to))
	return nil
}

// materialize creates the remote domain object with a generated registrant
// and binds the default security, technical and administrative contacts.
// The registrant rides on the create command itself; it is a named field on
// the domain object, not an attachable contact record. An object-exists
// response from the registry is treated as success; any other error aborts
// without a state change.
func (d *Domain) materialize(ctx context.Context) error {
	return d.applyTransition(ctx, transitionMaterialize, func(ctx context.Context) error {
		registrant := domain.DefaultRegistrantContact(d.record.Name)
		if err := d.svc.contacts.Save(ctx, registrant); err != nil {
			return fmt.Errorf("saving registrant record: %w", err)
		}

		err := d.svc.client.CreateDomain(ctx, d.record.Name, registrant.RegistryID, domain.AuthInfoPW)
		if err != nil && !domain.IsCode(err, domain.CodeObjectExists) {
			return err
		}

		return d.addAllDefaults(ctx)
	})
}

// addAllDefaults binds the three default non-registrant contacts to a
// freshly created domain.
func (d *Domain) addAllDefaults(ctx context.Context) error {
	defaults := []*domain.Contact{
		domain.DefaultSecurityContact(d.record.Name),
		domain.DefaultTechnicalContact(d.record.Name),
		domain.DefaultAdministrativeContact(d.record.Name),
	}
	for _, contact := range defaults {
		if err := d.setSingletonContact(ctx, contact, contact.Role); err != nil {
			return err
		}
	}
	return nil
}

// markReady records that the domain has enough nameservers to resolve.
// Pure bookkeeping, no registry call.
func (d *Domain) markReady(ctx context.Context) error {
	return d.applyTransition(ctx, transitionMarkReady, nil)
}

// markDNSNeeded records that the domain dropped below two nameservers.
func (d *Domain) markDNSNeeded(ctx context.Context) error {
	return d.applyTransition(ctx, transitionMarkDNSNeeded, nil)
}

// PlaceHold pushes a client hold status to the registry; the domain should
// stop resolving until the hold is reverted.
func (d *Domain) PlaceHold(ctx context.Context) error {
	defer d.invalidate()
	return d.applyTransition(ctx, transitionPlaceHold, func(ctx context.Context) error {
		return d.svc.client.UpdateDomain(ctx, domain.Update{
			Name:        d.record.Name,
			AddStatuses: []domain.Status{domain.StatusClientHold},
		})
	})
}

// RevertHold removes the client hold status.
func (d *Domain) RevertHold(ctx context.Context) error {
	defer d.invalidate()
	return d.applyTransition(ctx, transitionRevertHold, func(ctx context.Context) error {
		return d.svc.client.UpdateDomain(ctx, domain.Update{
			Name:           d.record.Name,
			RemoveStatuses: []domain.Status{domain.StatusClientHold},
		})
	})
}

// Delete removes the domain object from the registry. The local record is
// kept in the terminal DELETED state.
func (d *Domain) Delete(ctx context.Context) error {
	defer d.invalidate()
	return d.applyTransition(ctx, transitionDelete, func(ctx context.Context) error {
		return d.svc.client.DeleteDomain(ctx, d.record.Name)
	})
}
