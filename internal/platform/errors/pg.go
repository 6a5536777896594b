package errors

import (
	"context"
	stderrs "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlstate classes the report and search repos can run into
var pgCodes = map[string]ErrorCode{
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation
	"22003": ErrorCodeInvalidArgument, // numeric_value_out_of_range
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"57014": ErrorCodeTimeout,         // query_canceled, statement_timeout
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
	"53300": ErrorCodeUnavailable,     // too_many_connections
	"42P01": ErrorCodeUnavailable,     // undefined_table, view not deployed
}

// PgCode maps err to an ErrorCode
// ok is false when err carries no postgres error
func PgCode(err error) (code ErrorCode, ok bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeDB, false
	}
	if c, found := pgCodes[pgErr.Code]; found {
		return c, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a driver error with msg and its mapped code
// nil stays nil, deadline and cancel become ErrorCodeTimeout
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrorCodeTimeout, msg)
	}
	code, _ := PgCode(err)
	return Wrap(err, code, msg)
}

// FromPostgresf is FromPostgres with formatting
func FromPostgresf(err error, format string, a ...any) error {
	return FromPostgres(err, fmt.Sprintf(format, a...))
}
