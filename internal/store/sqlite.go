package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"bewustetrader/internal/errors"
	"bewustetrader/internal/models"
)

// SQLiteStore implements JournalStore using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	retry RetryConfig
}

// NewSQLiteStore creates a new SQLite-based journal store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db, retry: DefaultRetryConfig()}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Prop-firm accounts
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		firm TEXT,
		size TEXT NOT NULL,
		phase TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	-- Submitted trades; money columns hold decimal strings
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		account_id TEXT,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price TEXT NOT NULL,
		stop_loss TEXT NOT NULL,
		risk_amount TEXT NOT NULL,
		position_size TEXT NOT NULL,
		commission TEXT NOT NULL,
		exits TEXT NOT NULL,
		closed_volume TEXT NOT NULL,
		pnl TEXT NOT NULL,
		r_multiple TEXT NOT NULL,
		discipline_score INTEGER DEFAULT 0,
		over_allocated INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		setup TEXT,
		notes TEXT,
		source TEXT,
		closed_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);

	-- Payouts withdrawn from accounts
	CREATE TABLE IF NOT EXISTS payouts (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		date DATETIME NOT NULL,
		note TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
	CREATE INDEX IF NOT EXISTS idx_trades_closed_at ON trades(closed_at);
	CREATE INDEX IF NOT EXISTS idx_payouts_account ON payouts(account_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades Methods
// ============================================================================

const insertTradeSQL = `
	INSERT OR REPLACE INTO trades (id, account_id, symbol, direction, entry_price, stop_loss, risk_amount, position_size, commission, exits, closed_volume, pnl, r_multiple, discipline_score, over_allocated, status, setup, notes, source, closed_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectTradeSQL = `SELECT id, account_id, symbol, direction, entry_price, stop_loss, risk_amount, position_size, commission, exits, closed_volume, pnl, r_multiple, discipline_score, over_allocated, status, setup, notes, source, closed_at, created_at FROM trades`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertTrade(ctx context.Context, db execer, t *models.TradeRecord) error {
	exits, err := json.Marshal(t.Exits)
	if err != nil {
		return fmt.Errorf("failed to encode exits: %w", err)
	}
	overAllocated := 0
	if t.OverAllocated {
		overAllocated = 1
	}

	_, err = db.ExecContext(ctx, insertTradeSQL,
		t.ID, t.AccountID, t.Symbol, t.Direction,
		t.EntryPrice, t.StopLoss, t.RiskAmount, t.PositionSize, t.Commission, string(exits),
		t.ClosedVolume, t.PnL, t.RMultiple, t.DisciplineScore, overAllocated, t.Status,
		t.Setup, t.Notes, t.Source, t.ClosedAt.UTC(), t.CreatedAt.UTC())
	return err
}

// SaveTrade saves a trade to the database.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.TradeRecord) error {
	err := retryBusy(ctx, s.retry, func() error {
		return insertTrade(ctx, s.db, trade)
	})
	if err != nil {
		return errors.NewStoreError("save_trade", err)
	}
	return nil
}

// SaveTrades saves a batch of trades in a single transaction.
func (s *SQLiteStore) SaveTrades(ctx context.Context, trades []models.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	err := retryBusy(ctx, s.retry, func() error {
		return s.saveTradesTx(ctx, trades)
	})
	if err != nil {
		return errors.NewStoreError("save_trades", err)
	}
	return nil
}

func (s *SQLiteStore) saveTradesTx(ctx context.Context, trades []models.TradeRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range trades {
		if err := insertTrade(ctx, tx, &trades[i]); err != nil {
			return fmt.Errorf("failed to insert trade %s: %w", trades[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTrade retrieves a single trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.TradeRecord, error) {
	row := s.db.QueryRowContext(ctx, selectTradeSQL+" WHERE id = ?", id)
	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrTradeNotFound, "trade %s", id)
	}
	if err != nil {
		return nil, errors.NewStoreError("get_trade", err)
	}
	return t, nil
}

// GetTrades retrieves trades from the database, newest first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error) {
	query := selectTradeSQL + " WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND closed_at >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += " AND closed_at <= ?"
		args = append(args, filter.EndDate.UTC())
	}

	query += " ORDER BY closed_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("get_trades", err)
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, errors.NewStoreError("get_trades", err)
		}
		trades = append(trades, *t)
	}

	return trades, rows.Err()
}

// DeleteTrade removes a trade.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return errors.NewStoreError("delete_trade", err)
	}
	return checkDeleted(result, id)
}

// checkDeleted maps a delete that touched no rows to ErrTradeNotFound.
func checkDeleted(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewStoreError("delete_trade", err)
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrTradeNotFound, "trade %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row scanner) (*models.TradeRecord, error) {
	var t models.TradeRecord
	var accountID, setup, notes, source sql.NullString
	var exitsJSON string
	var overAllocated int

	if err := row.Scan(&t.ID, &accountID, &t.Symbol, &t.Direction,
		&t.EntryPrice, &t.StopLoss, &t.RiskAmount, &t.PositionSize, &t.Commission, &exitsJSON,
		&t.ClosedVolume, &t.PnL, &t.RMultiple, &t.DisciplineScore, &overAllocated, &t.Status,
		&setup, &notes, &source, &t.ClosedAt, &t.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(exitsJSON), &t.Exits); err != nil {
		return nil, fmt.Errorf("failed to decode exits of trade %s: %w", t.ID, err)
	}
	t.AccountID = accountID.String
	t.Setup = setup.String
	t.Notes = notes.String
	t.Source = source.String
	t.OverAllocated = overAllocated == 1
	return &t, nil
}

// ============================================================================
// Accounts Methods
// ============================================================================

// SaveAccount saves an account to the database.
func (s *SQLiteStore) SaveAccount(ctx context.Context, account *models.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO accounts (id, name, firm, size, phase, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, account.ID, account.Name, account.Firm, account.Size, account.Phase, account.CreatedAt.UTC())
	if err != nil {
		return errors.NewStoreError("save_account", err)
	}
	return nil
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	var firm sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, firm, size, phase, created_at FROM accounts WHERE id = ?
	`, id).Scan(&a.ID, &a.Name, &firm, &a.Size, &a.Phase, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrAccountNotFound, "account %s", id)
	}
	if err != nil {
		return nil, errors.NewStoreError("get_account", err)
	}
	a.Firm = firm.String
	return &a, nil
}

// ListAccounts returns all accounts, oldest first.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, firm, size, phase, created_at FROM accounts ORDER BY created_at
	`)
	if err != nil {
		return nil, errors.NewStoreError("list_accounts", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		var firm sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &firm, &a.Size, &a.Phase, &a.CreatedAt); err != nil {
			return nil, errors.NewStoreError("list_accounts", err)
		}
		a.Firm = firm.String
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ============================================================================
// Payouts Methods
// ============================================================================

// SavePayout saves a payout to the database.
func (s *SQLiteStore) SavePayout(ctx context.Context, payout *models.Payout) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO payouts (id, account_id, amount, date, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, payout.ID, payout.AccountID, payout.Amount, payout.Date.UTC(), payout.Note, payout.CreatedAt.UTC())
	if err != nil {
		return errors.NewStoreError("save_payout", err)
	}
	return nil
}

// GetPayouts returns the payouts of an account, newest first.
func (s *SQLiteStore) GetPayouts(ctx context.Context, accountID string) ([]models.Payout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, amount, date, note, created_at FROM payouts WHERE account_id = ? ORDER BY date DESC
	`, accountID)
	if err != nil {
		return nil, errors.NewStoreError("get_payouts", err)
	}
	defer rows.Close()

	var payouts []models.Payout
	for rows.Next() {
		var p models.Payout
		var note sql.NullString
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Amount, &p.Date, &note, &p.CreatedAt); err != nil {
			return nil, errors.NewStoreError("get_payouts", err)
		}
		p.Note = note.String
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}
