package services

import (
	"context"
	"errors"
	"testing"

	"github.com/regkit/registrar/internal/core/domain"
)

func TestEnsureExistsMaterializes(t *testing.T) {
	svc, reg := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureExists(ctx, "example.gov"); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	d, err := svc.Domain(ctx, "example.gov")
	if err != nil {
		t.Fatalf("Domain failed: %v", err)
	}
	if d.State() != domain.StateDNSNeeded {
		t.Errorf("expected state %q, got %q", domain.StateDNSNeeded, d.State())
	}

	if got := reg.CallCount("CreateDomain"); got != 1 {
		t.Errorf("expected 1 CreateDomain, got %d", got)
	}
	// The registrant rides on CreateDomain; only the three default
	// contacts need their own create commands.
	if got := reg.CallCount("CreateContact"); got != 3 {
		t.Errorf("expected 3 CreateContact, got %d", got)
	}
}

func TestEnsureExistsIsIdempotent(t *testing.T) {
	svc, reg := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.EnsureExists(ctx, "example.gov"); err != nil {
			t.Fatalf("EnsureExists run %d failed: %v", i, err)
		}
	}

	if got := reg.CallCount("CreateDomain"); got != 1 {
		t.Errorf("expected 1 CreateDomain after repeated calls, got %d", got)
	}
}

func TestDeleteRequiresHold(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureExists(ctx, "example.gov"); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	err := svc.Delete(ctx, "example.gov")
	var illegal *domain.IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if illegal.From != domain.StateDNSNeeded {
		t.Errorf("expected From %q, got %q", domain.StateDNSNeeded, illegal.From)
	}
}

func TestHoldLifecycle(t *testing.T) {
	svc, reg := newTestService(t)
	ctx := context.Background()
	name := "example.gov"

	desired := []domain.Nameserver{
		{Hostname: "ns1.provider.net"},
		{Hostname: "ns2.provider.net"},
	}
	result, err := svc.SetNameservers(ctx, name, desired)
	if err != nil {
		t.Fatalf("SetNameservers failed: %v", err)
	}
	if result.State != domain.StateReady {
		t.Fatalf("expected state %q after nameservers, got %q", domain.StateReady, result.State)
	}

	if err := svc.PlaceHold(ctx, name); err != nil {
		t.Fatalf("PlaceHold failed: %v", err)
	}
	d, _ := svc.Domain(ctx, name)
	if d.State() != domain.StateOnHold {
		t.Errorf("expected state %q, got %q", domain.StateOnHold, d.State())
	}

	info, err := reg.InfoDomain(ctx, name)
	if err != nil {
		t.Fatalf("InfoDomain failed: %v", err)
	}
	if !hasStatus(info.Statuses, domain.StatusClientHold) {
		t.Error("expected clientHold status on the remote object")
	}

	if err := svc.RevertHold(ctx, name); err != nil {
		t.Fatalf("RevertHold failed: %v", err)
	}
	d, _ = svc.Domain(ctx, name)
	if d.State() != domain.StateReady {
		t.Errorf("expected state %q after revert, got %q", domain.StateReady, d.State())
	}
	info, _ = reg.InfoDomain(ctx, name)
	if hasStatus(info.Statuses, domain.StatusClientHold) {
		t.Error("clientHold should be gone after revert")
	}

	if err := svc.PlaceHold(ctx, name); err != nil {
		t.Fatalf("second PlaceHold failed: %v", err)
	}
	if err := svc.Delete(ctx, name); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	d, _ = svc.Domain(ctx, name)
	if d.State() != domain.StateDeleted {
		t.Errorf("expected state %q, got %q", domain.StateDeleted, d.State())
	}
	if got := reg.CallCount("DeleteDomain"); got != 1 {
		t.Errorf("expected 1 DeleteDomain, got %d", got)
	}
}

func TestPlaceHoldRefusedBeforeReady(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureExists(ctx, "example.gov"); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	err := svc.PlaceHold(ctx, "example.gov")
	var illegal *domain.IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
}

func TestFailedEffectLeavesStateUntouched(t *testing.T) {
	svc, reg := newTestService(t)
	ctx := context.Background()
	name := "example.gov"

	if _, err := svc.SetNameservers(ctx, name, []domain.Nameserver{
		{Hostname: "ns1.provider.net"},
		{Hostname: "ns2.provider.net"},
	}); err != nil {
		t.Fatalf("SetNameservers failed: %v", err)
	}

	reg.Fail["UpdateDomain"] = domain.CodeCommandFailed
	if err := svc.PlaceHold(ctx, name); err == nil {
		t.Fatal("expected PlaceHold to fail")
	}
	delete(reg.Fail, "UpdateDomain")

	d, _ := svc.Domain(ctx, name)
	if d.State() != domain.StateReady {
		t.Errorf("state should remain %q after failed hold, got %q", domain.StateReady, d.State())
	}
}

func hasStatus(statuses []domain.Status, want domain.Status) bool {
	for _, s := range statuses {
		if s == want {
			return true
		}
	}
	return false
}
