package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Failure reasons reported by Reason.
const (
	ReasonNone            = ""
	ReasonUnsupported     = "unsupported_kind"
	ReasonAccessDenied    = "access_denied"
	ReasonUnknownDatabase = "unknown_database"
	ReasonTimeout         = "timeout"
	ReasonCanceled        = "canceled"
	ReasonUnavailable     = "unavailable"
)

// Reason classifies a collaborator failure across vendors for logs and
// health reports. Unrecognised failures are ReasonUnavailable.
func Reason(err error) string {
	if err == nil {
		return ReasonNone
	}
	if errors.Is(err, ErrUnsupportedKind) {
		return ReasonUnsupported
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil {
		switch myErr.Number {
		case 1044, 1045, 1142, 1227:
			return ReasonAccessDenied
		case 1049:
			return ReasonUnknownDatabase
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		switch {
		case pgErr.Code == "42501", strings.HasPrefix(pgErr.Code, "28"):
			return ReasonAccessDenied
		case pgErr.Code == "3D000", pgErr.Code == "3F000":
			return ReasonUnknownDatabase
		case pgErr.Code == "57014":
			return ReasonTimeout
		}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "access denied"), strings.Contains(lower, "permission denied"):
		return ReasonAccessDenied
	case strings.Contains(lower, "unknown database"), strings.Contains(lower, "no such table"):
		return ReasonUnknownDatabase
	}
	return ReasonUnavailable
}
