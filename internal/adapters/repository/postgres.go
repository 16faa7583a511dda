// Package repository contains the persistence adapters for the local
// domain record and contact stores. The registry remains the source of
// truth for everything except the domain name and its lifecycle state.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/regkit/registrar/internal/core/domain"
)

// PostgresDomainStore implements ports.DomainRepository using PostgreSQL.
type PostgresDomainStore struct {
	db *sql.DB
}

// NewPostgresDomainStore creates and returns a new PostgresDomainStore instance.
func NewPostgresDomainStore(db *sql.DB) *PostgresDomainStore {
	return &PostgresDomainStore{db: db}
}

func (s *PostgresDomainStore) Load(ctx context.Context, name string) (*domain.Record, error) {
	query := `SELECT name, state, created_at, updated_at FROM domains WHERE LOWER(name) = LOWER($1)`
	var rec domain.Record
	err := s.db.QueryRowContext(ctx, query, name).Scan(&rec.Name, &rec.State, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDomainNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresDomainStore) Save(ctx context.Context, record *domain.Record) error {
	query := `INSERT INTO domains (name, state, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (name) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, query, record.Name, string(record.State), record.CreatedAt, record.UpdatedAt)
	return err
}

func (s *PostgresDomainStore) List(ctx context.Context) ([]domain.Record, error) {
	query := `SELECT name, state, created_at, updated_at FROM domains ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.Name, &rec.State, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresDomainStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// PostgresContactStore implements ports.ContactRepository using PostgreSQL.
type PostgresContactStore struct {
	db *sql.DB
}

// NewPostgresContactStore creates and returns a new PostgresContactStore instance.
func NewPostgresContactStore(db *sql.DB) *PostgresContactStore {
	return &PostgresContactStore{db: db}
}

const contactColumns = `registry_id, domain_name, role, name, org, email, voice, fax, street, city, state_province, postal_code, country`

func scanContact(row *sql.Row) (*domain.Contact, error) {
	var c domain.Contact
	var street string
	err := row.Scan(&c.RegistryID, &c.DomainName, &c.Role, &c.Name, &c.Org, &c.Email,
		&c.Voice, &c.Fax, &street, &c.City, &c.StateProv, &c.PostalCode, &c.Country)
	if err != nil {
		return nil, err
	}
	if street != "" {
		c.Street = strings.Split(street, "\n")
	}
	return &c, nil
}

func (s *PostgresContactStore) Get(ctx context.Context, registryID string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM public_contacts WHERE registry_id = $1`
	c, err := scanContact(s.db.QueryRowContext(ctx, query, registryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrContactNotFound, registryID)
	}
	return c, err
}

func (s *PostgresContactStore) FindOther(ctx context.Context, domainName string, role domain.ContactRole, excludeID string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM public_contacts
	          WHERE LOWER(domain_name) = LOWER($1) AND role = $2 AND registry_id != $3
	          LIMIT 1`
	c, err := scanContact(s.db.QueryRowContext(ctx, query, domainName, string(role), excludeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no other %s contact for %s", domain.ErrContactNotFound, role, domainName)
	}
	return c, err
}

func (s *PostgresContactStore) Save(ctx context.Context, contact *domain.Contact) error {
	query := `INSERT INTO public_contacts (` + contactColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          ON CONFLICT (registry_id) DO UPDATE SET
	            domain_name = EXCLUDED.domain_name, role = EXCLUDED.role,
	            name = EXCLUDED.name, org = EXCLUDED.org, email = EXCLUDED.email,
	            voice = EXCLUDED.voice, fax = EXCLUDED.fax, street = EXCLUDED.street,
	            city = EXCLUDED.city, state_province = EXCLUDED.state_province,
	            postal_code = EXCLUDED.postal_code, country = EXCLUDED.country`
	_, err := s.db.ExecContext(ctx, query,
		contact.RegistryID, contact.DomainName, string(contact.Role), contact.Name,
		contact.Org, contact.Email, contact.Voice, contact.Fax,
		strings.Join(contact.Street, "\n"), contact.City, contact.StateProv,
		contact.PostalCode, contact.Country)
	return err
}

func (s *PostgresContactStore) Delete(ctx context.Context, registryID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM public_contacts WHERE registry_id = $1`, registryID)
	return err
}
