package consent

import (
	"context"
	"database/sql"
	"time"

	"finbase/internal/storage"
	"finbase/pkg/domain"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, consent *Consent) error {
	query := `
		INSERT INTO consents (customer_id, granted_at, expires_at, revoked_at, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(consent.CustomerID),
		consent.GrantedAt,
		storage.NullTime(consent.ExpiresAt),
		storage.NullTime(consent.RevokedAt),
		storage.NullString(consent.Description),
	).Scan(&consent.ID)
	return storage.MapError(err)
}

const consentColumns = `id, customer_id, granted_at, expires_at, revoked_at, description`

func (s *Postgres) Find(ctx context.Context, id domain.ConsentID) (*Consent, error) {
	row := storage.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+consentColumns+` FROM consents WHERE id = $1`, int64(id))
	return scanConsent(row)
}

func (s *Postgres) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]*Consent, error) {
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+consentColumns+` FROM consents WHERE customer_id = $1 ORDER BY id`, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Consent
	for rows.Next() {
		consent, err := scanConsent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, consent)
	}
	return out, rows.Err()
}

// Revoke stamps revoked_at once; a consent already revoked keeps its
// original revocation instant.
func (s *Postgres) Revoke(ctx context.Context, id domain.ConsentID, revokedAt time.Time) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE consents SET revoked_at = COALESCE(revoked_at, $2) WHERE id = $1`,
		int64(id), revokedAt.UTC())
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

func (s *Postgres) AddScopes(ctx context.Context, consentID domain.ConsentID, scopes []*Scope) error {
	query := `
		INSERT INTO consent_scopes (consent_id, scope, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	for _, scope := range scopes {
		scope.ConsentID = consentID
		err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
			int64(consentID), scope.Scope, scope.CreatedAt).Scan(&scope.ID)
		if err != nil {
			return storage.MapError(err)
		}
	}
	return nil
}

func (s *Postgres) ListScopes(ctx context.Context, consentID domain.ConsentID) ([]*Scope, error) {
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT id, consent_id, scope, created_at FROM consent_scopes WHERE consent_id = $1 ORDER BY id`,
		int64(consentID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Scope
	for rows.Next() {
		var scope Scope
		if err := rows.Scan(&scope.ID, &scope.ConsentID, &scope.Scope, &scope.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &scope)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error {
	_, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM consents WHERE customer_id = $1`, int64(customerID))
	return storage.MapError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsent(row rowScanner) (*Consent, error) {
	var (
		consent Consent
		expires sql.NullTime
		revoked sql.NullTime
		desc    sql.NullString
	)
	err := row.Scan(&consent.ID, &consent.CustomerID, &consent.GrantedAt, &expires, &revoked, &desc)
	if err != nil {
		return nil, storage.MapError(err)
	}
	consent.ExpiresAt = storage.TimePtr(expires)
	consent.RevokedAt = storage.TimePtr(revoked)
	consent.Description = storage.StringPtr(desc)
	return &consent, nil
}
