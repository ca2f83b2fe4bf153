package wizard

import (
	"errors"

	"declaration-service/internal/models"
)

type ErrorKind string

const (
	KindValidationBlocked ErrorKind = "validation_blocked"
	KindValidationPending ErrorKind = "validation_in_progress"
	KindComplianceBlocked ErrorKind = "compliance_blocked"
	KindSubmissionFailed  ErrorKind = "submission_failed"
	KindInternal          ErrorKind = "internal"
)

// BlockedError is returned when a transition or submission is refused. It is
// recoverable: the wizard state is left untouched.
type BlockedError struct {
	Kind    ErrorKind
	Step    Step
	Title   string
	Message string
}

func (e *BlockedError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Notification renders the error for the notification sink. An in-progress
// block is advisory and uses the default severity.
func (e *BlockedError) Notification() models.Notification {
	if e.Kind == KindValidationPending {
		return models.NewNotification(e.Title, e.Message)
	}
	return models.NewDestructiveNotification(e.Title, e.Message)
}

// AsBlocked unwraps err into a *BlockedError if it is one.
func AsBlocked(err error) (*BlockedError, bool) {
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return blocked, true
	}
	return nil, false
}

func validationError(step Step, message string) *BlockedError {
	return &BlockedError{Kind: KindValidationBlocked, Step: step, Title: "Validation Error", Message: message}
}
