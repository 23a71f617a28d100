package adoption

import (
	"strings"

	"adoption-service/internal/model"
)

// occupationPlaceholder is what the mobile client writes into untouched
// profile fields
const occupationPlaceholder = "-"

// CheckProfile validates that a user's profile satisfies the preconditions
// for requesting an adoption: a non-placeholder occupation and a positive
// income. It runs before a request is persisted and is the only gate on
// request creation; approval does not re-validate.
func CheckProfile(u *model.User) error {
	occupation := strings.TrimSpace(u.Occupation)
	if occupation == "" || occupation == occupationPlaceholder {
		return ErrProfileIncomplete
	}
	if u.Salary <= 0 {
		return ErrProfileIncomplete
	}
	return nil
}
