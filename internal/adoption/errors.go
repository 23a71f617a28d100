package adoption

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCatNotFound     = errors.New("cat not found")
	ErrRequestNotFound = errors.New("request not found")

	// ErrProfileIncomplete is the eligibility gate failure; handlers surface
	// it with the machine-readable code PROFILE_INCOMPLETE.
	ErrProfileIncomplete = errors.New("profile incomplete")

	ErrCatAlreadyAdopted = errors.New("cat already adopted")
	ErrDuplicatePending  = errors.New("request already under review")
	ErrAlreadyApproved   = errors.New("request already approved")

	// ErrCatNotAdopted guards the claim transition: a cat can only be
	// marked taken after an approval locked it.
	ErrCatNotAdopted = errors.New("cat has not been adopted")

	ErrInvalidTransition = errors.New("invalid status transition")
)
