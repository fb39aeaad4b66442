// errors.go - Sentinel errors for room operations.
//
// The API layer maps these onto HTTP statuses; everything else uses
// errors.Is. Stores return ErrRoomNotFound / ErrConcurrentModification,
// the service adds the authorization and validation errors on top.
package room

import (
	"errors"
	"fmt"

	"github.com/listerineh/payplay-app/accounting"
)

var (
	// ErrRoomNotFound is returned when the referenced room does not exist
	// (or was deleted underneath the caller).
	ErrRoomNotFound = errors.New("saving room not found")

	// ErrUserNotFound is returned when a referenced user is missing from
	// the directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotCreator guards the creator-only operations: editing, deleting,
	// and recording payments.
	ErrNotCreator = errors.New("only the room creator may perform this action")

	// ErrNotParticipant is returned when a non-member tries to act on a room.
	ErrNotParticipant = errors.New("user is not a participant of this room")

	// ErrConcurrentModification is returned when the compare-and-swap
	// update path detects a version mismatch. The service does not retry;
	// the caller decides whether to re-read and resubmit.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrUnknownParticipant is returned when a payment targets a user with
	// no payment record in the room.
	ErrUnknownParticipant = errors.New("participant has no payment record in this room")

	// ErrInvalidAmount rejects zero or negative payment amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrEmptyComment rejects blank discussion posts.
	ErrEmptyComment = errors.New("comment text must not be empty")

	// ErrNoPayments is returned when an edit cannot derive the
	// per-participant due amount because the room has no payment records.
	ErrNoPayments = errors.New("room has no payment records")
)

// AmountExceedsOwedError rejects payments above the participant's
// currently owed balance. This bound is enforced here, caller-side; the
// accounting engine itself never re-validates it.
type AmountExceedsOwedError struct {
	Requested accounting.Money
	Owed      accounting.Money
}

func (e *AmountExceedsOwedError) Error() string {
	return fmt.Sprintf("payment of %s exceeds owed balance of %s", e.Requested, e.Owed)
}

// ValidationError reports a bad field on a create/edit request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
