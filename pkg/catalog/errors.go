package catalog

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// isNoRows reports whether err is pgx.ErrNoRows, the expected outcome of a
// reference lookup miss (§4.3 step 1).
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
