package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// PgxPool is the subset of *pgxpool.Pool the repository uses. pgxmock
// implements the same surface for tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository on PostgreSQL. The seq bigserial
// column preserves insertion order across restarts.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository creates a ledger repository backed by the given pool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Add(ctx context.Context, tx Transaction) error {
	query := `
		INSERT INTO transactions (id, description, amount, kind, category, tx_date)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.Description,
		tx.Amount.StringFixed(2),
		string(tx.Kind),
		tx.Category,
		tx.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to add transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Transaction, error) {
	query := `
		SELECT id, description, amount::text, kind, category, tx_date
		FROM transactions
		ORDER BY seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var (
			tx        Transaction
			amountStr string
			kindStr   string
		)
		if err := rows.Scan(&tx.ID, &tx.Description, &amountStr, &kindStr, &tx.Category, &tx.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q for %s: %w", amountStr, tx.ID, err)
		}
		tx.Kind = Kind(kindStr)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txs, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
