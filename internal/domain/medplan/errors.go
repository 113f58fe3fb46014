package medplan

import (
	"errors"
	"fmt"

	"github.com/carehome/medplan/internal/platform/planvalidation"
)

var (
	ErrPlanRejected     = errors.New("medical plan rejected")
	ErrPlanNotFound     = errors.New("medical plan not found")
	ErrResidentRequired = errors.New("resident_id is required")
	ErrInvalidStatus    = errors.New("invalid status")
)

// RejectedError carries every diagnostic from a plan that failed validation.
// errors.Is(err, ErrPlanRejected) matches it.
type RejectedError struct {
	Diagnostics []planvalidation.Diagnostic
}

func (e *RejectedError) Error() string {
	n := planvalidation.CountBySeverity(e.Diagnostics)[planvalidation.SeverityError]
	return fmt.Sprintf("%s: %d error(s)", ErrPlanRejected, n)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrPlanRejected
}
