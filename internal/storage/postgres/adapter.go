package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/casbin-net/efcore-adapter-sub001/internal/filter"
	"github.com/casbin-net/efcore-adapter-sub001/internal/rules"
	"github.com/casbin-net/efcore-adapter-sub001/internal/storage"
)

const ruleColumns = "id, ptype, v0, v1, v2, v3, v4, v5"

type Adapter struct {
	db     *sql.DB
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL config: %w", err)
	}

	db, err := sql.Open("pgx", config.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		db:     db,
		config: config,
	}

	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) Connect(config storage.StoreConfig) error {
	pgConfig, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("invalid config type for PostgreSQL store")
	}

	newAdapter, err := NewAdapter(pgConfig)
	if err != nil {
		return err
	}

	// Close existing connection
	if a.db != nil {
		a.db.Close()
	}

	a.db = newAdapter.db
	a.config = newAdapter.config

	return nil
}

func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *Adapter) Health() error {
	return a.db.Ping()
}

func (a *Adapter) Dialect() string {
	return filter.DialectPostgres
}

func (a *Adapter) TableName() string {
	return a.config.TableName
}

func (a *Adapter) Conn() *sql.DB {
	return a.db
}

func (a *Adapter) migrate() error {
	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			ptype TEXT NOT NULL DEFAULT '',
			v0 TEXT NOT NULL DEFAULT '',
			v1 TEXT NOT NULL DEFAULT '',
			v2 TEXT NOT NULL DEFAULT '',
			v3 TEXT NOT NULL DEFAULT '',
			v4 TEXT NOT NULL DEFAULT '',
			v5 TEXT NOT NULL DEFAULT ''
		)`, a.config.TableName),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_ptype ON %s(ptype)`,
			a.config.TableName, a.config.TableName),
	}

	for _, query := range queries {
		if _, err := a.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration query: %w", err)
		}
	}

	return nil
}

func (a *Adapter) QueryRules(ctx context.Context, where *filter.Clause) ([]rules.Rule, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", ruleColumns, a.config.TableName)
	var args []interface{}

	if where != nil {
		clause, clauseArgs := where.SQL(filter.DialectPostgres, 1)
		query += " WHERE " + clause
		args = clauseArgs
	}

	query += " ORDER BY id"

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var result []rules.Rule
	for rows.Next() {
		var r rules.Rule
		if err := rows.Scan(&r.ID, &r.PType, &r.V[0], &r.V[1], &r.V[2], &r.V[3], &r.V[4], &r.V[5]); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		result = append(result, r)
	}

	return result, rows.Err()
}

func (a *Adapter) Tx(ctx context.Context, fn func(tx storage.RuleTx) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&ruleTx{tx: tx, table: a.config.TableName}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ruleTx implements storage.RuleTx over one postgres transaction.
type ruleTx struct {
	tx    *sql.Tx
	table string
}

func (t *ruleTx) Insert(r rules.Rule) error {
	query := fmt.Sprintf(`INSERT INTO %s (ptype, v0, v1, v2, v3, v4, v5)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`, t.table)

	_, err := t.tx.Exec(query, r.PType, r.V[0], r.V[1], r.V[2], r.V[3], r.V[4], r.V[5])
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}

	return nil
}

func (t *ruleTx) InsertBatch(rs []rules.Rule) error {
	for _, r := range rs {
		if err := t.Insert(r); err != nil {
			return err
		}
	}
	return nil
}

func (t *ruleTx) Delete(where *filter.Clause) (int64, error) {
	clause, args := where.SQL(filter.DialectPostgres, 1)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", t.table, clause)

	result, err := t.tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rules: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected, nil
}

func (t *ruleTx) DeleteByIDs(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)",
		t.table, strings.Join(placeholders, ", "))

	result, err := t.tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rules: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected, nil
}

func (t *ruleTx) First(where *filter.Clause) (rules.Rule, bool, error) {
	clause, args := where.SQL(filter.DialectPostgres, 1)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id LIMIT 1",
		ruleColumns, t.table, clause)

	row := t.tx.QueryRow(query, args...)

	var r rules.Rule
	err := row.Scan(&r.ID, &r.PType, &r.V[0], &r.V[1], &r.V[2], &r.V[3], &r.V[4], &r.V[5])
	if err == sql.ErrNoRows {
		return rules.Rule{}, false, nil
	}
	if err != nil {
		return rules.Rule{}, false, fmt.Errorf("failed to scan rule: %w", err)
	}

	return r, true, nil
}

func (t *ruleTx) UpdateFields(id int64, r rules.Rule) error {
	query := fmt.Sprintf(`UPDATE %s SET ptype = $1, v0 = $2, v1 = $3, v2 = $4, v3 = $5, v4 = $6, v5 = $7
			  WHERE id = $8`, t.table)

	_, err := t.tx.Exec(query, r.PType, r.V[0], r.V[1], r.V[2], r.V[3], r.V[4], r.V[5], id)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	return nil
}
