package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE values the storefront tables can raise.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Messages for the constraints declared by the storefront migrations.
var constraintMessages = map[string]string{
	"products_price_check":          "price must not be negative",
	"products_count_in_stock_check": "stock must not be negative",
	"order_items_quantity_check":    "quantity must be at least 1",
	"order_items_order_id_fkey":     "order no longer exists",
	"cart_snapshots_pkey":           "cart snapshot already stored for session",
	"order_items_pkey":              "order item already recorded",
	"orders_pkey":                   "order already recorded",
	"products_pkey":                 "product already exists",
}

// pgError is the driver-neutral view of a Postgres error.
type pgError struct {
	Code, Constraint, Table, Column, Detail, Message string
}

func postgresError(err error) (pgError, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgError{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pgError{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}, true
	}
	return pgError{}, false
}

// FromStore codes a repository failure. Constraint violations on the
// storefront tables become client errors; anything else, Postgres or not, is
// a dependency failure described by message.
func FromStore(err error, message string) error {
	if err == nil {
		return nil
	}
	if typed := As(err); typed != nil {
		return err
	}
	pg, ok := postgresError(err)
	if !ok {
		return Wrap(CodeDependency, err, message)
	}

	text, known := constraintMessages[pg.Constraint]
	if !known {
		text = message
	}
	details := map[string]any{"constraint": pg.Constraint}

	switch {
	case pg.Code == pgCheckViolation:
		return Wrap(CodeValidation, err, text).WithDetails(details)
	case pg.Code == pgUniqueViolation:
		return Wrap(CodeConflict, err, text)
	case pg.Code == pgForeignKeyViolation:
		return Wrap(CodeStateConflict, err, text).WithDetails(details)
	case strings.HasPrefix(pg.Code, "08"), strings.HasPrefix(pg.Code, "57P"):
		return Wrap(CodeDependency, err, message).WithDetails(map[string]any{"pg_code": pg.Code})
	default:
		return Wrap(CodeDependency, err, message)
	}
}

// ErrorDump is the flattened view of an error chain written to logs.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// Dump walks err's chain and pulls out the Postgres fields if a driver error
// is inside it.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	if pg, ok := postgresError(err); ok {
		d.PGCode = pg.Code
		d.PGConstraint = pg.Constraint
		d.PGTable = pg.Table
		d.PGColumn = pg.Column
		d.PGDetail = pg.Detail
		d.PGMessage = pg.Message
	}
	return d
}
