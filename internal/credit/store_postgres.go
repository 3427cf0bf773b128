package credit

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"finbase/internal/storage"
	"finbase/pkg/domain"
)

// Postgres persists the credit-obligation cluster. The schema cascades
// schedules and collaterals from the contract and declares the
// (contract_id, installment_number) unique key.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateContract(ctx context.Context, contract *Contract) error {
	query := `
		INSERT INTO credit_contracts (customer_id, product_type, principal_amount, rate_nominal, maturity_date, installment_amount, balloon, guarantee_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(contract.CustomerID),
		string(contract.Product),
		contract.PrincipalAmount,
		contract.RateNominal,
		contract.MaturityDate,
		contract.InstallmentAmount,
		contract.Balloon,
		storage.NullString(contract.GuaranteeType),
		contract.CreatedAt,
	).Scan(&contract.ID)
	return storage.MapError(err)
}

const contractColumns = `id, customer_id, product_type, principal_amount, rate_nominal, maturity_date, installment_amount, balloon, guarantee_type, created_at`

func (s *Postgres) FindContract(ctx context.Context, id domain.ContractID) (*Contract, error) {
	row := storage.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM credit_contracts WHERE id = $1`, int64(id))
	return scanContract(row)
}

func (s *Postgres) ListContracts(ctx context.Context, customerID domain.CustomerID) ([]*Contract, error) {
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+contractColumns+` FROM credit_contracts WHERE customer_id = $1 ORDER BY id`, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, contract)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteContract(ctx context.Context, id domain.ContractID) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM credit_contracts WHERE id = $1`, int64(id))
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

func (s *Postgres) InsertSchedules(ctx context.Context, contractID domain.ContractID, schedules []*Schedule) error {
	query := `
		INSERT INTO credit_schedules (contract_id, installment_number, due_date, installment_amount, paid_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	for _, sched := range schedules {
		sched.ContractID = contractID
		err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
			int64(contractID),
			sched.InstallmentNumber,
			sched.DueDate,
			sched.InstallmentAmount,
			storage.NullDecimal(sched.PaidAmount),
			sched.Status,
			sched.CreatedAt,
		).Scan(&sched.ID)
		if err != nil {
			return storage.MapError(err)
		}
	}
	return nil
}

func (s *Postgres) ReplaceSchedules(ctx context.Context, contractID domain.ContractID, schedules []*Schedule) error {
	if _, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM credit_schedules WHERE contract_id = $1`, int64(contractID)); err != nil {
		return storage.MapError(err)
	}
	return s.InsertSchedules(ctx, contractID, schedules)
}

func (s *Postgres) ListSchedules(ctx context.Context, contractID domain.ContractID) ([]*Schedule, error) {
	query := `
		SELECT id, contract_id, installment_number, due_date, installment_amount, paid_amount, status, created_at
		FROM credit_schedules
		WHERE contract_id = $1
		ORDER BY installment_number
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(contractID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		var (
			sched Schedule
			paid  decimal.NullDecimal
		)
		if err := rows.Scan(&sched.ID, &sched.ContractID, &sched.InstallmentNumber,
			&sched.DueDate, &sched.InstallmentAmount, &paid, &sched.Status, &sched.CreatedAt); err != nil {
			return nil, err
		}
		sched.PaidAmount = storage.DecimalPtr(paid)
		out = append(out, &sched)
	}
	return out, rows.Err()
}

func (s *Postgres) UpdateScheduleStatus(ctx context.Context, id domain.ScheduleID, status string, paidAmount *decimal.Decimal) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE credit_schedules SET status = $2, paid_amount = $3 WHERE id = $1`,
		int64(id), status, storage.NullDecimal(paidAmount))
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

func (s *Postgres) AddCollateral(ctx context.Context, collateral *Collateral) error {
	query := `
		INSERT INTO collaterals (contract_id, collateral_type, collateral_value, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(collateral.ContractID),
		collateral.CollateralType,
		collateral.CollateralValue,
		storage.NullString(collateral.Description),
		collateral.CreatedAt,
	).Scan(&collateral.ID)
	return storage.MapError(err)
}

func (s *Postgres) ListCollaterals(ctx context.Context, contractID domain.ContractID) ([]*Collateral, error) {
	query := `
		SELECT id, contract_id, collateral_type, collateral_value, description, created_at
		FROM collaterals
		WHERE contract_id = $1
		ORDER BY id
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(contractID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Collateral
	for rows.Next() {
		var (
			collateral Collateral
			desc       sql.NullString
		)
		if err := rows.Scan(&collateral.ID, &collateral.ContractID, &collateral.CollateralType,
			&collateral.CollateralValue, &desc, &collateral.CreatedAt); err != nil {
			return nil, err
		}
		collateral.Description = storage.StringPtr(desc)
		out = append(out, &collateral)
	}
	return out, rows.Err()
}

func (s *Postgres) ReassessCollateral(ctx context.Context, id domain.CollateralID, value decimal.Decimal) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE collaterals SET collateral_value = $2 WHERE id = $1`, int64(id), value)
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

func (s *Postgres) DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error {
	_, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM credit_contracts WHERE customer_id = $1`, int64(customerID))
	return storage.MapError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*Contract, error) {
	var (
		contract  Contract
		guarantee sql.NullString
	)
	err := row.Scan(&contract.ID, &contract.CustomerID, &contract.Product,
		&contract.PrincipalAmount, &contract.RateNominal, &contract.MaturityDate,
		&contract.InstallmentAmount, &contract.Balloon, &guarantee, &contract.CreatedAt)
	if err != nil {
		return nil, storage.MapError(err)
	}
	contract.GuaranteeType = storage.StringPtr(guarantee)
	return &contract, nil
}
