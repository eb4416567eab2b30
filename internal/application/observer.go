package application

// Outcome labels reported to an Observer.
const (
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"

	LookupFound = "found"
	LookupEmpty = "empty"
)

// Observer receives service outcomes, typically to update metrics.
type Observer interface {
	ReservationAttempt(outcome string)
	LookupAttempt(outcome string)
	RoomCacheAccess(hit bool)
}

type nopObserver struct{}

func (nopObserver) ReservationAttempt(string) {}
func (nopObserver) LookupAttempt(string)      {}
func (nopObserver) RoomCacheAccess(bool)      {}

func outcomeFor(err error) string {
	switch ErrorKind(err) {
	case "":
		return OutcomeCreated
	case "conflict":
		return OutcomeConflict
	case "validation", "duplicate_submission":
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
