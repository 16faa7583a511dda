package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/regkit/registrar/internal/core/domain"
	"github.com/regkit/registrar/internal/infrastructure/metrics"
)

// setSingletonContact enforces the registry invariant that at most one
// contact of a given role is bound to a domain. The sequence:
//
//  1. reject a contact whose role does not match the slot being set
//  2. look up any other contact occupying the role in the local store
//  3. push the contact to the registry (create is idempotent; an
//     object-exists response is success)
//  4. displace the conflicting contact, if any: registrants are a named
//     field on the remote domain object so the reference is changed with a
//     domain update, other roles are detached then deleted
//  5. attach the new contact, or update the remote contact in place when
//     the registry already knew this ID under a changed email
//
// An empty-email security contact means "no custom security contact": the
// existing real contact is detached and deleted and the well-known default
// is bound instead, so a domain is never left without a security contact.
//
// The local store is only written after the registry sequence succeeds.
func (d *Domain) setSingletonContact(ctx context.Context, contact *domain.Contact, expectedRole domain.ContactRole) error {
	if contact.Role != expectedRole {
		return fmt.Errorf("%w: expected %s, got %s", domain.ErrWrongContactRole, expectedRole, contact.Role)
	}

	if contact.Role == domain.RoleSecurity && contact.Email == "" {
		return d.resetSecurityContact(ctx)
	}

	isRegistrant := contact.Role == domain.RoleRegistrant

	other, err := d.svc.contacts.FindOther(ctx, d.record.Name, contact.Role, contact.RegistryID)
	hasOther := err == nil
	if err != nil && !errors.Is(err, domain.ErrContactNotFound) {
		return fmt.Errorf("looking up existing %s contact: %w", contact.Role, err)
	}

	err = d.svc.client.CreateContact(ctx, contact)
	alreadyExists := domain.IsCode(err, domain.CodeObjectExists)
	if err != nil && !alreadyExists {
		metrics.ContactOps.WithLabelValues(string(contact.Role), "error").Inc()
		return fmt.Errorf("unable to add contact %s to registry: %w", contact.RegistryID, err)
	}
	if alreadyExists {
		d.svc.logger.Warn("tried to create duplicate contact", "domain", d.record.Name, "contact", contact.RegistryID)
	}

	if hasOther {
		d.svc.logger.Info("displacing existing contact", "domain", d.record.Name, "role", string(contact.Role), "old", other.RegistryID)
		if isRegistrant {
			// The registrant is not an attachable contact record; change the
			// reference on the domain object directly.
			id := contact.RegistryID
			if err := d.svc.client.UpdateDomain(ctx, domain.Update{Name: d.record.Name, Registrant: &id}); err != nil {
				metrics.ContactOps.WithLabelValues(string(contact.Role), "error").Inc()
				return fmt.Errorf("changing registrant on %s: %w", d.record.Name, err)
			}
			if err := d.svc.contacts.Delete(ctx, other.RegistryID); err != nil {
				return fmt.Errorf("removing displaced registrant record: %w", err)
			}
		} else {
			if err := d.detachContact(ctx, other); err != nil {
				metrics.ContactOps.WithLabelValues(string(contact.Role), "error").Inc()
				return err
			}
			if err := d.svc.contacts.Delete(ctx, other.RegistryID); err != nil {
				return fmt.Errorf("removing displaced %s contact record: %w", contact.Role, err)
			}
		}
	}

	if !alreadyExists && !isRegistrant {
		if err := d.attachContact(ctx, contact); err != nil {
			metrics.ContactOps.WithLabelValues(string(contact.Role), "error").Inc()
			return err
		}
	} else if alreadyExists {
		// The binding already exists; only the contact object itself may
		// have drifted.
		current, err := d.svc.contacts.Get(ctx, contact.RegistryID)
		if err != nil {
			d.svc.logger.Error("contact exists remotely but not in local store", "contact", contact.RegistryID, "error", err)
		} else if current.Email != contact.Email {
			if err := d.svc.client.UpdateContact(ctx, contact); err != nil {
				d.svc.logger.Error("error updating contact", "contact", contact.RegistryID, "error", err)
			}
		}
	}

	if err := d.svc.contacts.Save(ctx, contact); err != nil {
		return fmt.Errorf("saving %s contact record: %w", contact.Role, err)
	}
	metrics.ContactOps.WithLabelValues(string(contact.Role), "ok").Inc()
	return nil
}

// resetSecurityContact handles an empty-email security contact: if a real
// security contact is on file it is detached and deleted, and the
// well-known default is bound in its place.
func (d *Domain) resetSecurityContact(ctx context.Context) error {
	current, err := d.svc.contacts.FindOther(ctx, d.record.Name, domain.RoleSecurity, "")
	if err != nil && !errors.Is(err, domain.ErrContactNotFound) {
		return fmt.Errorf("looking up security contact for %s: %w", d.record.Name, err)
	}

	if err == nil {
		// The default must not be removable without a replacement.
		if current.Email == domain.DefaultSecurityEmail {
			metrics.ContactOps.WithLabelValues(string(domain.RoleSecurity), "ok").Inc()
			return nil
		}
		d.svc.logger.Info("removing security contact and restoring default", "domain", d.record.Name, "contact", current.RegistryID)
		if err := d.detachContact(ctx, current); err != nil {
			metrics.ContactOps.WithLabelValues(string(domain.RoleSecurity), "error").Inc()
			return err
		}
		if err := d.svc.contacts.Delete(ctx, current.RegistryID); err != nil {
			return fmt.Errorf("removing cleared security contact record: %w", err)
		}
	}

	return d.setSingletonContact(ctx, domain.DefaultSecurityContact(d.record.Name), domain.RoleSecurity)
}

func (d *Domain) attachContact(ctx context.Context, contact *domain.Contact) error {
	err := d.svc.client.UpdateDomain(ctx, domain.Update{
		Name:        d.record.Name,
		AddContacts: []domain.ContactRef{contact.Ref()},
	})
	if err != nil {
		return fmt.Errorf("can't add the contact of type %s: %w", contact.Role, err)
	}
	return nil
}

func (d *Domain) detachContact(ctx context.Context, contact *domain.Contact) error {
	err := d.svc.client.UpdateDomain(ctx, domain.Update{
		Name:           d.record.Name,
		RemoveContacts: []domain.ContactRef{contact.Ref()},
	})
	if err != nil {
		return fmt.Errorf("can't remove the contact of type %s: %w", contact.Role, err)
	}
	return nil
}
