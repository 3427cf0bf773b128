package investment

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"finbase/internal/storage"
	"finbase/pkg/domain"
)

// Postgres persists the investment cluster. Position upserts ride the
// per-class (customer_id, identifier) unique indexes via ON CONFLICT;
// movements are plain inserts.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) UpsertFund(ctx context.Context, position *PositionFund) error {
	query := `
		INSERT INTO positions_funds (customer_id, fund_cnpj, quantity, avg_price, mark_to_market, liquidity_bucket, last_event)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (customer_id, fund_cnpj) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			avg_price = EXCLUDED.avg_price,
			mark_to_market = EXCLUDED.mark_to_market,
			liquidity_bucket = EXCLUDED.liquidity_bucket,
			last_event = EXCLUDED.last_event
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(position.CustomerID),
		position.FundCNPJ,
		position.Quantity,
		position.AvgPrice,
		storage.NullDecimal(position.MarkToMarket),
		storage.NullString(position.LiquidityBucket),
		storage.NullTime(position.LastEvent),
	).Scan(&position.ID)
	return storage.MapError(err)
}

func (s *Postgres) ListFunds(ctx context.Context, customerID domain.CustomerID) ([]*PositionFund, error) {
	query := `
		SELECT id, customer_id, fund_cnpj, quantity, avg_price, mark_to_market, liquidity_bucket, last_event
		FROM positions_funds
		WHERE customer_id = $1
		ORDER BY id
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*PositionFund
	for rows.Next() {
		var (
			position PositionFund
			mtm      decimal.NullDecimal
			bucket   sql.NullString
			event    sql.NullTime
		)
		if err := rows.Scan(&position.ID, &position.CustomerID, &position.FundCNPJ,
			&position.Quantity, &position.AvgPrice, &mtm, &bucket, &event); err != nil {
			return nil, err
		}
		position.MarkToMarket = storage.DecimalPtr(mtm)
		position.LiquidityBucket = storage.StringPtr(bucket)
		position.LastEvent = storage.TimePtr(event)
		out = append(out, &position)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertFixedIncome(ctx context.Context, position *PositionFixedIncome) error {
	query := `
		INSERT INTO positions_fixed_income (customer_id, instrument_id, quantity, avg_price, mark_to_market, liquidity_bucket, maturity_date, last_event)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (customer_id, instrument_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			avg_price = EXCLUDED.avg_price,
			mark_to_market = EXCLUDED.mark_to_market,
			liquidity_bucket = EXCLUDED.liquidity_bucket,
			maturity_date = EXCLUDED.maturity_date,
			last_event = EXCLUDED.last_event
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(position.CustomerID),
		position.InstrumentID,
		position.Quantity,
		position.AvgPrice,
		storage.NullDecimal(position.MarkToMarket),
		storage.NullString(position.LiquidityBucket),
		storage.NullTime(position.MaturityDate),
		storage.NullTime(position.LastEvent),
	).Scan(&position.ID)
	return storage.MapError(err)
}

func (s *Postgres) ListFixedIncome(ctx context.Context, customerID domain.CustomerID) ([]*PositionFixedIncome, error) {
	query := `
		SELECT id, customer_id, instrument_id, quantity, avg_price, mark_to_market, liquidity_bucket, maturity_date, last_event
		FROM positions_fixed_income
		WHERE customer_id = $1
		ORDER BY id
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*PositionFixedIncome
	for rows.Next() {
		var (
			position PositionFixedIncome
			mtm      decimal.NullDecimal
			bucket   sql.NullString
			maturity sql.NullTime
			event    sql.NullTime
		)
		if err := rows.Scan(&position.ID, &position.CustomerID, &position.InstrumentID,
			&position.Quantity, &position.AvgPrice, &mtm, &bucket, &maturity, &event); err != nil {
			return nil, err
		}
		position.MarkToMarket = storage.DecimalPtr(mtm)
		position.LiquidityBucket = storage.StringPtr(bucket)
		position.MaturityDate = storage.TimePtr(maturity)
		position.LastEvent = storage.TimePtr(event)
		out = append(out, &position)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertEquity(ctx context.Context, position *PositionEquity) error {
	query := `
		INSERT INTO positions_equity (customer_id, ticker, quantity, avg_price, mark_to_market, liquidity_bucket, last_event)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (customer_id, ticker) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			avg_price = EXCLUDED.avg_price,
			mark_to_market = EXCLUDED.mark_to_market,
			liquidity_bucket = EXCLUDED.liquidity_bucket,
			last_event = EXCLUDED.last_event
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(position.CustomerID),
		position.Ticker,
		position.Quantity,
		position.AvgPrice,
		storage.NullDecimal(position.MarkToMarket),
		storage.NullString(position.LiquidityBucket),
		storage.NullTime(position.LastEvent),
	).Scan(&position.ID)
	return storage.MapError(err)
}

func (s *Postgres) ListEquities(ctx context.Context, customerID domain.CustomerID) ([]*PositionEquity, error) {
	query := `
		SELECT id, customer_id, ticker, quantity, avg_price, mark_to_market, liquidity_bucket, last_event
		FROM positions_equity
		WHERE customer_id = $1
		ORDER BY id
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*PositionEquity
	for rows.Next() {
		var (
			position PositionEquity
			mtm      decimal.NullDecimal
			bucket   sql.NullString
			event    sql.NullTime
		)
		if err := rows.Scan(&position.ID, &position.CustomerID, &position.Ticker,
			&position.Quantity, &position.AvgPrice, &mtm, &bucket, &event); err != nil {
			return nil, err
		}
		position.MarkToMarket = storage.DecimalPtr(mtm)
		position.LiquidityBucket = storage.StringPtr(bucket)
		position.LastEvent = storage.TimePtr(event)
		out = append(out, &position)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertTreasury(ctx context.Context, position *PositionTreasury) error {
	query := `
		INSERT INTO positions_treasury (customer_id, instrument_id, quantity, avg_price, mark_to_market, liquidity_bucket, maturity_date, last_event)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (customer_id, instrument_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			avg_price = EXCLUDED.avg_price,
			mark_to_market = EXCLUDED.mark_to_market,
			liquidity_bucket = EXCLUDED.liquidity_bucket,
			maturity_date = EXCLUDED.maturity_date,
			last_event = EXCLUDED.last_event
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(position.CustomerID),
		position.InstrumentID,
		position.Quantity,
		position.AvgPrice,
		storage.NullDecimal(position.MarkToMarket),
		storage.NullString(position.LiquidityBucket),
		storage.NullTime(position.MaturityDate),
		storage.NullTime(position.LastEvent),
	).Scan(&position.ID)
	return storage.MapError(err)
}

func (s *Postgres) ListTreasuries(ctx context.Context, customerID domain.CustomerID) ([]*PositionTreasury, error) {
	query := `
		SELECT id, customer_id, instrument_id, quantity, avg_price, mark_to_market, liquidity_bucket, maturity_date, last_event
		FROM positions_treasury
		WHERE customer_id = $1
		ORDER BY id
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*PositionTreasury
	for rows.Next() {
		var (
			position PositionTreasury
			mtm      decimal.NullDecimal
			bucket   sql.NullString
			maturity sql.NullTime
			event    sql.NullTime
		)
		if err := rows.Scan(&position.ID, &position.CustomerID, &position.InstrumentID,
			&position.Quantity, &position.AvgPrice, &mtm, &bucket, &maturity, &event); err != nil {
			return nil, err
		}
		position.MarkToMarket = storage.DecimalPtr(mtm)
		position.LiquidityBucket = storage.StringPtr(bucket)
		position.MaturityDate = storage.TimePtr(maturity)
		position.LastEvent = storage.TimePtr(event)
		out = append(out, &position)
	}
	return out, rows.Err()
}

func (s *Postgres) InsertMovement(ctx context.Context, movement *Movement) error {
	query := `
		INSERT INTO investment_movements (customer_id, instrument_id, movement_type, quantity, price, amount, transaction_date, settlement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(movement.CustomerID),
		movement.InstrumentID,
		movement.MovementType,
		movement.Quantity,
		movement.Price,
		movement.Amount,
		movement.TransactionDate,
		storage.NullTime(movement.SettlementDate),
		movement.CreatedAt,
	).Scan(&movement.ID)
	return storage.MapError(err)
}

func (s *Postgres) ListMovements(ctx context.Context, customerID domain.CustomerID) ([]*Movement, error) {
	query := `
		SELECT id, customer_id, instrument_id, movement_type, quantity, price, amount, transaction_date, settlement_date, created_at
		FROM investment_movements
		WHERE customer_id = $1
		ORDER BY id
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Movement
	for rows.Next() {
		var (
			movement   Movement
			settlement sql.NullTime
		)
		if err := rows.Scan(&movement.ID, &movement.CustomerID, &movement.InstrumentID,
			&movement.MovementType, &movement.Quantity, &movement.Price, &movement.Amount,
			&movement.TransactionDate, &settlement, &movement.CreatedAt); err != nil {
			return nil, err
		}
		movement.SettlementDate = storage.TimePtr(settlement)
		out = append(out, &movement)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error {
	tables := []string{
		"positions_funds",
		"positions_fixed_income",
		"positions_equity",
		"positions_treasury",
		"investment_movements",
	}
	for _, table := range tables {
		if _, err := storage.Exec(ctx, s.db).ExecContext(ctx,
			`DELETE FROM `+table+` WHERE customer_id = $1`, int64(customerID)); err != nil {
			return storage.MapError(err)
		}
	}
	return nil
}
