package services

import (
	"context"
	"testing"

	"github.com/regkit/registrar/internal/core/domain"
)

func TestPropertyFetchIsLazyAndCached(t *testing.T) {
	svc, reg := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureExists(ctx, "example.gov"); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if got := reg.CallCount("InfoDomain"); got != 0 {
		t.Fatalf("materialization alone should not fetch info, got %d InfoDomain", got)
	}

	d, err := svc.Domain(ctx, "example.gov")
	if err != nil {
		t.Fatalf("Domain failed: %v", err)
	}

	created, err := d.CreationDate(ctx)
	if err != nil {
		t.Fatalf("CreationDate failed: %v", err)
	}
	if created == nil {
		t.Fatal("expected a creation date")
	}
	if _, err := d.ExpirationDate(ctx); err != nil {
		t.Fatalf("ExpirationDate failed: %v", err)
	}

	if got := reg.CallCount("InfoDomain"); got != 1 {
		t.Errorf("expected 1 InfoDomain for both reads, got %d", got)
	}
}

func TestFirstFetchMaterializesOnce(t *testing.T) {
	svc, reg := newTestService(t)
	ctx := context.Background()

	d, err := svc.Domain(ctx, "example.gov")
	if err != nil {
		t.Fatalf("Domain failed: %v", err)
	}
	if d.State() != domain.StateUnknown {
		t.Fatalf("expected fresh record in %q, got %q", domain.StateUnknown, d.State())
	}

	created, err := d.CreationDate(ctx)
	if err != nil {
		t.Fatalf("CreationDate failed: %v", err)
	}
	if created == nil {
		t.Fatal("expected a creation date after on-demand materialization")
	}
	if d.State() != domain.StateDNSNeeded {
		t.Errorf("expected state %q, got %q", domain.StateDNSNeeded, d.State())
	}
	if got := reg.CallCount("CreateDomain"); got != 1 {
		t.Errorf("expected exactly 1 CreateDomain, got %d", got)
	}
	// First info misses, the retry after creation succeeds.
	if got := reg.CallCount("InfoDomain"); got != 2 {
		t.Errorf("expected 2 InfoDomain, got %d", got)
	}
}

func TestNameserversEmptyForNewDomain(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureExists(ctx, "example.gov"); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	d, _ := svc.Domain(ctx, "example.gov")

	hosts, err := d.Nameservers(ctx)
	if err != nil {
		t.Fatalf("Nameservers failed: %v", err)
	}
	if len(hosts) != 0 {
		t.Errorf("expected no nameservers, got %v", hosts)
	}
}

func TestMutationInvalidatesCache(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	name := "example.gov"

	if _, err := svc.SetNameservers(ctx, name, []domain.Nameserver{
		{Hostname: "ns1.provider.net"},
		{Hostname: "ns2.provider.net"},
	}); err != nil {
		t.Fatalf("SetNameservers failed: %v", err)
	}

	d, _ := svc.Domain(ctx, name)
	statuses, err := d.Statuses(ctx)
	if err != nil {
		t.Fatalf("Statuses failed: %v", err)
	}
	if hasStatus(statuses, domain.StatusClientHold) {
		t.Fatal("clientHold should not be set yet")
	}

	if err := d.PlaceHold(ctx); err != nil {
		t.Fatalf("PlaceHold failed: %v", err)
	}

	// The hold must be visible through the same aggregate without a manual
	// refresh.
	statuses, err = d.Statuses(ctx)
	if err != nil {
		t.Fatalf("Statuses after hold failed: %v", err)
	}
	if !hasStatus(statuses, domain.StatusClientHold) {
		t.Error("expected clientHold after mutation dropped the cache")
	}
}

func TestConnectionFailureSurfaces(t *testing.T) {
	svc, reg := newTestService(t)
	ctx := context.Background()

	reg.Fail["InfoDomain"] = domain.CodeConnectionFailure
	d, err := svc.Domain(ctx, "example.gov")
	if err != nil {
		t.Fatalf("Domain failed: %v", err)
	}

	_, err = d.CreationDate(ctx)
	if !domain.IsCode(err, domain.CodeConnectionFailure) {
		t.Fatalf("expected connection failure to surface, got %v", err)
	}
	if d.State() != domain.StateUnknown {
		t.Errorf("a failed fetch must not advance state, got %q", d.State())
	}
}

func TestIsActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	name := "example.gov"

	d, _ := svc.Domain(ctx, name)
	if d.IsActive() {
		t.Error("fresh domain should not be active")
	}

	if _, err := svc.SetNameservers(ctx, name, []domain.Nameserver{
		{Hostname: "ns1.provider.net"},
		{Hostname: "ns2.provider.net"},
	}); err != nil {
		t.Fatalf("SetNameservers failed: %v", err)
	}

	d, _ = svc.Domain(ctx, name)
	if !d.IsActive() {
		t.Error("domain with enough nameservers should be active")
	}
}

func TestInfoAssemblesDetail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	name := "example.gov"

	if _, err := svc.SetNameservers(ctx, name, []domain.Nameserver{
		{Hostname: "ns1.provider.net"},
		{Hostname: "ns2.provider.net"},
	}); err != nil {
		t.Fatalf("SetNameservers failed: %v", err)
	}

	detail, err := svc.Info(ctx, name)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if detail.Name != name {
		t.Errorf("expected name %q, got %q", name, detail.Name)
	}
	if detail.State != domain.StateReady {
		t.Errorf("expected state %q, got %q", domain.StateReady, detail.State)
	}
	if len(detail.Nameservers) != 2 {
		t.Errorf("expected 2 nameservers, got %v", detail.Nameservers)
	}
	if detail.CreationDate == nil || detail.ExpirationDate == nil {
		t.Error("expected creation and expiration dates")
	}
	if detail.SecurityEmail != domain.DefaultSecurityEmail {
		t.Errorf("expected default security email, got %q", detail.SecurityEmail)
	}
}
