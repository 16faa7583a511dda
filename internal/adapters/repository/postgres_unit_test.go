package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/regkit/registrar/internal/core/domain"
)

func TestPostgresDomainStore_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	store := NewPostgresDomainStore(db)
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{"name", "state", "created_at", "updated_at"}).
			AddRow("example.gov", "ready", now, now)

		mock.ExpectQuery(`SELECT name, state, created_at, updated_at FROM domains WHERE LOWER\(name\) = LOWER\(\$1\)`).
			WithArgs("example.gov").
			WillReturnRows(rows)

		rec, err := store.Load(ctx, "example.gov")
		if err != nil {
			t.Errorf("Load failed: %v", err)
		}
		if rec == nil || rec.State != domain.StateReady {
			t.Errorf("Unexpected record: %+v", rec)
		}
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT name, state, created_at, updated_at FROM domains`).
			WithArgs("missing.gov").
			WillReturnError(sql.ErrNoRows)

		_, err := store.Load(ctx, "missing.gov")
		if !errors.Is(err, domain.ErrDomainNotFound) {
			t.Errorf("expected ErrDomainNotFound, got %v", err)
		}
	})

	t.Run("Save", func(t *testing.T) {
		rec := &domain.Record{Name: "example.gov", State: domain.StateDNSNeeded, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		mock.ExpectExec(`INSERT INTO domains`).
			WithArgs(rec.Name, "dns needed", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := store.Save(ctx, rec); err != nil {
			t.Errorf("Save failed: %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{"name", "state", "created_at", "updated_at"}).
			AddRow("alpha.gov", "ready", now, now).
			AddRow("beta.gov", "dns needed", now, now)

		mock.ExpectQuery(`SELECT name, state, created_at, updated_at FROM domains ORDER BY name`).
			WillReturnRows(rows)

		records, err := store.List(ctx)
		if err != nil {
			t.Errorf("List failed: %v", err)
		}
		if len(records) != 2 || records[0].Name != "alpha.gov" {
			t.Errorf("Unexpected records: %+v", records)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresContactStore_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	store := NewPostgresContactStore(db)
	ctx := context.Background()

	contactRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"registry_id", "domain_name", "role", "name", "org", "email",
			"voice", "fax", "street", "city", "state_province", "postal_code", "country",
		}).AddRow("abc123def456gh78", "example.gov", "security", "Jane Roe", "City IT", "security@example.gov",
			"+1.5551234567", "", "100 Main St\nSuite 2", "Springfield", "IL", "62701", "US")
	}

	t.Run("Get", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM public_contacts WHERE registry_id = \$1`).
			WithArgs("abc123def456gh78").
			WillReturnRows(contactRow())

		c, err := store.Get(ctx, "abc123def456gh78")
		if err != nil {
			t.Errorf("Get failed: %v", err)
		}
		if c == nil || c.Role != domain.RoleSecurity {
			t.Fatalf("Unexpected contact: %+v", c)
		}
		if len(c.Street) != 2 || c.Street[1] != "Suite 2" {
			t.Errorf("street lines not split: %v", c.Street)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM public_contacts WHERE registry_id = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := store.Get(ctx, "nope")
		if !errors.Is(err, domain.ErrContactNotFound) {
			t.Errorf("expected ErrContactNotFound, got %v", err)
		}
	})

	t.Run("FindOther", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM public_contacts`).
			WithArgs("example.gov", "security", "otherid").
			WillReturnRows(contactRow())

		c, err := store.FindOther(ctx, "example.gov", domain.RoleSecurity, "otherid")
		if err != nil {
			t.Errorf("FindOther failed: %v", err)
		}
		if c == nil || c.RegistryID != "abc123def456gh78" {
			t.Errorf("Unexpected contact: %+v", c)
		}
	})

	t.Run("Save", func(t *testing.T) {
		c := &domain.Contact{
			RegistryID: "abc123def456gh78",
			DomainName: "example.gov",
			Role:       domain.RoleSecurity,
			Email:      "security@example.gov",
			Street:     []string{"100 Main St", "Suite 2"},
		}
		mock.ExpectExec(`INSERT INTO public_contacts`).
			WithArgs(c.RegistryID, c.DomainName, "security", c.Name, c.Org, c.Email,
				c.Voice, c.Fax, "100 Main St\nSuite 2", c.City, c.StateProv, c.PostalCode, c.Country).
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := store.Save(ctx, c); err != nil {
			t.Errorf("Save failed: %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM public_contacts WHERE registry_id = \$1`).
			WithArgs("abc123def456gh78").
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := store.Delete(ctx, "abc123def456gh78"); err != nil {
			t.Errorf("Delete failed: %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
