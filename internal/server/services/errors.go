package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// domainErrors pass through storeError untouched.
var domainErrors = []error{
	common.ErrInvalidInput,
	common.ErrNotFound,
	common.ErrDuplicateUser,
	common.ErrEmptyCollection,
	common.ErrNotLiked,
}

// storeError classifies an error coming back from a repository. Timeouts and
// lost connections become ErrStoreUnavailable, anything unrecognised becomes
// ErrInternal. The original error stays in the message for logs only.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}

	var (
		netErr     net.Error
		connectErr *pgconn.ConnectError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.As(err, &connectErr),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
}

// storeContext bounds a single store round trip.
func storeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidInput, msg)
}
