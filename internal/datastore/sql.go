package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type SQLGateway struct {
	db *sqlx.DB
}

func NewSQLGateway(db *sqlx.DB) *SQLGateway {
	return &SQLGateway{db: db}
}

func (g *SQLGateway) Select(ctx context.Context, table string, q Query, dest any) error {
	query, args := buildSelect(table, q)
	if err := g.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("datastore: failed to select from %s: %w", table, classify(err))
	}
	return nil
}

func (g *SQLGateway) Get(ctx context.Context, table string, q Query, dest any) error {
	q.Limit = 1
	query, args := buildSelect(table, q)
	err := g.db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("datastore: failed to get from %s: %w", table, classify(err))
	}
	return nil
}

func (g *SQLGateway) Insert(ctx context.Context, table string, record Record) error {
	if len(record) == 0 {
		return fmt.Errorf("datastore: empty insert into %s", table)
	}
	query, args := buildInsert(table, record)
	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		log.Warn().Err(err).Str("table", table).Msg("datastore: insert failed")
		return fmt.Errorf("datastore: failed to insert into %s: %w", table, classify(err))
	}
	return nil
}

func (g *SQLGateway) Update(ctx context.Context, table string, patch Record, where ...Filter) (int64, error) {
	if len(patch) == 0 {
		return 0, fmt.Errorf("datastore: empty update of %s", table)
	}
	if len(where) == 0 {
		return 0, fmt.Errorf("datastore: refusing unfiltered update of %s", table)
	}
	query, args := buildUpdate(table, patch, where)
	res, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Warn().Err(err).Str("table", table).Msg("datastore: update failed")
		return 0, fmt.Errorf("datastore: failed to update %s: %w", table, classify(err))
	}
	return res.RowsAffected()
}

func (g *SQLGateway) Delete(ctx context.Context, table string, where ...Filter) (int64, error) {
	if len(where) == 0 {
		return 0, fmt.Errorf("datastore: refusing unfiltered delete from %s", table)
	}
	query, args := buildDelete(table, where)
	res, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Warn().Err(err).Str("table", table).Msg("datastore: delete failed")
		return 0, fmt.Errorf("datastore: failed to delete from %s: %w", table, classify(err))
	}
	return res.RowsAffected()
}

// classify maps postgres constraint violations onto the package sentinels
// while keeping the driver error in the chain.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	case pgerrcode.InvalidTextRepresentation:
		// malformed uuid in a filter can't match anything
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func buildSelect(table string, q Query) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(quoteAll(q.Columns))
	}
	b.WriteString(" FROM ")
	b.WriteString(pq.QuoteIdentifier(table))

	args := make([]any, 0, len(q.Where))
	args = writeWhere(&b, q.Where, args)

	if q.OrderBy != nil {
		b.WriteString(" ORDER BY ")
		b.WriteString(pq.QuoteIdentifier(q.OrderBy.Column))
		if q.OrderBy.Ascending {
			b.WriteString(" ASC")
		} else {
			b.WriteString(" DESC")
		}
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	return b.String(), args
}

func buildInsert(table string, record Record) (string, []any) {
	columns := sortedColumns(record)
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = record[c]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(table), quoteAll(columns), strings.Join(placeholders, ", "))
	return query, args
}

func buildUpdate(table string, patch Record, where []Filter) (string, []any) {
	columns := sortedColumns(patch)
	sets := make([]string, len(columns))
	args := make([]any, 0, len(columns)+len(where))
	for i, c := range columns {
		args = append(args, patch[c])
		sets[i] = pq.QuoteIdentifier(c) + " = $" + strconv.Itoa(len(args))
	}

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(pq.QuoteIdentifier(table))
	b.WriteString(" SET ")
	b.WriteString(strings.Join(sets, ", "))
	args = writeWhere(&b, where, args)
	return b.String(), args
}

func buildDelete(table string, where []Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(pq.QuoteIdentifier(table))
	args := writeWhere(&b, where, make([]any, 0, len(where)))
	return b.String(), args
}

func writeWhere(b *strings.Builder, where []Filter, args []any) []any {
	for i, f := range where {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(pq.QuoteIdentifier(f.Column))
		if f.Value == nil {
			b.WriteString(" IS NULL")
			continue
		}
		args = append(args, f.Value)
		b.WriteString(" = $")
		b.WriteString(strconv.Itoa(len(args)))
	}
	return args
}

func sortedColumns(r Record) []string {
	columns := make([]string, 0, len(r))
	for c := range r {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}

func quoteAll(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}
