package customer

import (
	"context"
	"database/sql"

	"finbase/internal/storage"
	"finbase/pkg/domain"
)

// Postgres persists the identity cluster. Uniqueness and referential
// integrity are enforced by the schema; this store maps engine failures to
// the shared sentinels.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, core *Core) error {
	query := `
		INSERT INTO customer_core (tax_id, birthdate, marital_status, dependents_count, pep_flag)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		core.TaxID,
		storage.NullTime(core.Birthdate),
		nullStatus(core.MaritalStatus),
		storage.NullInt(core.DependentsCount),
		core.PEPFlag,
	).Scan(&core.ID)
	return storage.MapError(err)
}

func (s *Postgres) FindByID(ctx context.Context, id domain.CustomerID) (*Core, error) {
	return s.findBy(ctx, `WHERE id = $1`, int64(id))
}

func (s *Postgres) FindByTaxID(ctx context.Context, taxID string) (*Core, error) {
	return s.findBy(ctx, `WHERE tax_id = $1`, taxID)
}

func (s *Postgres) findBy(ctx context.Context, where string, arg any) (*Core, error) {
	query := `
		SELECT id, tax_id, birthdate, marital_status, dependents_count, pep_flag
		FROM customer_core ` + where

	var (
		core       Core
		birthdate  sql.NullTime
		status     sql.NullString
		dependents sql.NullInt64
	)
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query, arg).Scan(
		&core.ID,
		&core.TaxID,
		&birthdate,
		&status,
		&dependents,
		&core.PEPFlag,
	)
	if err != nil {
		return nil, storage.MapError(err)
	}
	if birthdate.Valid {
		t := birthdate.Time
		core.Birthdate = &t
	}
	if status.Valid {
		m := MaritalStatus(status.String)
		core.MaritalStatus = &m
	}
	if dependents.Valid {
		n := int(dependents.Int64)
		core.DependentsCount = &n
	}
	return &core, nil
}

func (s *Postgres) Update(ctx context.Context, core *Core) error {
	query := `
		UPDATE customer_core
		SET tax_id = $2, birthdate = $3, marital_status = $4, dependents_count = $5, pep_flag = $6
		WHERE id = $1
	`
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx, query,
		int64(core.ID),
		core.TaxID,
		storage.NullTime(core.Birthdate),
		nullStatus(core.MaritalStatus),
		storage.NullInt(core.DependentsCount),
		core.PEPFlag,
	)
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

// Delete removes the customer row; the schema cascades every owned row
// across all clusters. Callers go through Service.Purge so the delete runs
// inside one transaction and is an explicit, audited operation.
func (s *Postgres) Delete(ctx context.Context, id domain.CustomerID) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM customer_core WHERE id = $1`, int64(id))
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

func (s *Postgres) Exists(ctx context.Context, id domain.CustomerID) (bool, error) {
	var exists bool
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM customer_core WHERE id = $1)`, int64(id)).Scan(&exists)
	if err != nil {
		return false, storage.MapError(err)
	}
	return exists, nil
}

func (s *Postgres) AddContact(ctx context.Context, contact *Contact) error {
	query := `
		INSERT INTO customer_contacts (customer_id, type, value, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(contact.CustomerID),
		contact.Type,
		contact.Value,
		contact.CreatedAt,
	).Scan(&contact.ID)
	return storage.MapError(err)
}

func (s *Postgres) ListContacts(ctx context.Context, id domain.CustomerID) ([]*Contact, error) {
	query := `
		SELECT id, customer_id, type, value, created_at
		FROM customer_contacts
		WHERE customer_id = $1
		ORDER BY id
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(id))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Contact
	for rows.Next() {
		var contact Contact
		if err := rows.Scan(&contact.ID, &contact.CustomerID, &contact.Type, &contact.Value, &contact.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &contact)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteContact(ctx context.Context, id domain.ContactID) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM customer_contacts WHERE id = $1`, int64(id))
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

func nullStatus(m *MaritalStatus) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*m), Valid: true}
}
