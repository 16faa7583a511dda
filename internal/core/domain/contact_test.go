package domain

import "testing"

func TestDiscloseEmail(t *testing.T) {
	security := &Contact{Role: RoleSecurity, Email: "security@example.gov"}
	if !security.DiscloseEmail() {
		t.Error("custom security email should be disclosed")
	}

	defaultSecurity := DefaultSecurityContact("example.gov")
	if defaultSecurity.DiscloseEmail() {
		t.Error("default security email should stay withheld")
	}

	tech := DefaultTechnicalContact("example.gov")
	if tech.DiscloseEmail() {
		t.Error("technical contact email should stay withheld")
	}
}

func TestNewRegistryID(t *testing.T) {
	id := NewRegistryID()
	if len(id) != 16 {
		t.Errorf("expected 16 character registry ID, got %d (%q)", len(id), id)
	}
	if id == NewRegistryID() {
		t.Error("expected distinct IDs on successive calls")
	}
}

func TestDefaultContacts(t *testing.T) {
	cases := []struct {
		contact *Contact
		role    ContactRole
	}{
		{DefaultSecurityContact("example.gov"), RoleSecurity},
		{DefaultTechnicalContact("example.gov"), RoleTechnical},
		{DefaultAdministrativeContact("example.gov"), RoleAdministrative},
		{DefaultRegistrantContact("example.gov"), RoleRegistrant},
	}
	for _, tc := range cases {
		if tc.contact.Role != tc.role {
			t.Errorf("expected role %s, got %s", tc.role, tc.contact.Role)
		}
		if tc.contact.DomainName != "example.gov" {
			t.Errorf("expected domain example.gov, got %s", tc.contact.DomainName)
		}
		if tc.contact.RegistryID == "" || tc.contact.Email == "" {
			t.Errorf("default %s contact missing registry ID or email", tc.role)
		}
	}

	if DefaultSecurityContact("example.gov").Email != DefaultSecurityEmail {
		t.Error("default security contact must carry the well-known email")
	}
}

func TestContactRoleValid(t *testing.T) {
	for _, role := range []ContactRole{RoleRegistrant, RoleAdministrative, RoleTechnical, RoleSecurity} {
		if !role.Valid() {
			t.Errorf("expected %s to be valid", role)
		}
	}
	if ContactRole("billing").Valid() {
		t.Error("expected billing to be invalid")
	}
}
