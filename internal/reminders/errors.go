package reminders

import (
	"errors"
	"fmt"

	"github.com/ukydev/vehicle-upkeep/internal/db"
)

// Caller-facing failure classes. Validation failures reject the call
// before any write; gateway failures are propagated unchanged and the
// manager performs no retries itself.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("reminder not found")
	ErrConflict           = errors.New("conflicting reminder update")
	ErrGatewayUnavailable = errors.New("persistence gateway unavailable")
)

// validationErr names the offending field in the error message.
func validationErr(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// mapStorageErr converts storage-level error classes into the manager's
// caller-facing ones, keeping the cause in the chain.
func mapStorageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, db.ErrConflict), errors.Is(err, db.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
}
