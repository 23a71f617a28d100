package model

// RequestStatus is the state of an adoption request. The lifecycle per
// (applicant, cat) pair is PENDING -> {APPROVED | REJECTED}, with
// REJECTED -> PENDING re-entry permitted when the applicant re-applies.
// APPROVED is terminal except for the rival sweep: when a competing request
// for the same cat is approved, this request moves to REJECTED regardless
// of its prior state.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// Valid reports whether s is one of the known states
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to the given state is legal.
// Rejecting an already-rejected request is allowed so that admin rejection
// stays idempotent.
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusRejected:
		return to == StatusPending || to == StatusRejected
	case StatusApproved:
		return to == StatusRejected
	}
	return false
}
