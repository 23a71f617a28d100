package adoption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adoption-service/internal/model"

	"gorm.io/gorm"
)

const (
	defaultSubmitMessage   = "I would love to adopt this cat"
	defaultResubmitMessage = "Applying again, please reconsider"
)

// Service implements the adoption-request lifecycle: submission and
// re-submission, the atomic approve/reject-rivals/lock-cat transaction,
// single rejection and the claim finalizer. The gorm handle is injected at
// construction; the clock is a field so tests can pin it.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// Submit creates or revives the (applicant, cat) adoption request. The
// second return value reports whether an earlier rejected request was
// revived rather than a new row created.
//
// The cat's adoption flag is re-validated inside the same transaction that
// writes the request row, closing the window against a concurrent approval
// of the same cat.
func (s *Service) Submit(ctx context.Context, catID uint, username, message string) (model.AdoptionRequest, bool, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.AdoptionRequest{}, false, ErrUserNotFound
		}
		return model.AdoptionRequest{}, false, fmt.Errorf("load user: %w", err)
	}

	if err := CheckProfile(&user); err != nil {
		return model.AdoptionRequest{}, false, err
	}

	var (
		req      model.AdoptionRequest
		resubmit bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat model.Cat
		if err := tx.First(&cat, catID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCatNotFound
			}
			return fmt.Errorf("load cat: %w", err)
		}
		if cat.Adopted {
			return ErrCatAlreadyAdopted
		}

		var existing model.AdoptionRequest
		err := tx.Where("cat_id = ? AND username = ?", catID, username).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First request for this pair
			req = model.AdoptionRequest{
				CatID:    catID,
				Username: username,
				Status:   model.StatusPending,
				Message:  orDefault(message, defaultSubmitMessage),
				Date:     s.now(),
			}
			if err := tx.Create(&req).Error; err != nil {
				return fmt.Errorf("create request: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("load request: %w", err)
		}

		switch existing.Status {
		case model.StatusPending:
			return ErrDuplicatePending
		case model.StatusApproved:
			return ErrAlreadyApproved
		}

		if !existing.Status.CanTransition(model.StatusPending) {
			return ErrInvalidTransition
		}

		// Revive the rejected row; the refreshed date re-sorts it to the
		// top of the admin queue.
		existing.Status = model.StatusPending
		existing.Message = orDefault(message, defaultResubmitMessage)
		existing.Date = s.now()
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("revive request: %w", err)
		}
		req = existing
		resubmit = true
		return nil
	})
	if err != nil {
		return model.AdoptionRequest{}, false, err
	}
	return req, resubmit, nil
}

// Approve executes the allocation transaction for one request: the target
// becomes APPROVED, every other request for the same cat becomes REJECTED
// regardless of prior state, and the cat is locked to the applicant. The
// three writes commit together or not at all.
//
// The cat's adoption flag is deliberately not re-checked here; admins are
// trusted to approve at most one request per cat.
func (s *Service) Approve(ctx context.Context, requestID uint) error {
	var target model.AdoptionRequest
	if err := s.db.WithContext(ctx).First(&target, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("load request: %w", err)
	}

	if target.Status == model.StatusApproved {
		return ErrAlreadyApproved
	}
	if !target.Status.CanTransition(model.StatusApproved) {
		return ErrInvalidTransition
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.AdoptionRequest{}).
			Where("id = ?", target.ID).
			Update("status", model.StatusApproved).Error; err != nil {
			return fmt.Errorf("approve request: %w", err)
		}

		if err := tx.Model(&model.AdoptionRequest{}).
			Where("cat_id = ? AND id <> ?", target.CatID, target.ID).
			Update("status", model.StatusRejected).Error; err != nil {
			return fmt.Errorf("reject rivals: %w", err)
		}

		res := tx.Model(&model.Cat{}).
			Where("id = ?", target.CatID).
			Updates(map[string]interface{}{
				"adopted":    true,
				"adopter":    target.Username,
				"adopt_date": s.now(),
				"taken":      false,
			})
		if res.Error != nil {
			return fmt.Errorf("lock cat: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrCatNotFound
		}
		return nil
	})
}

// Reject sets a single request to REJECTED. It has no side effects on the
// cat or on other requests and is idempotent for already-rejected rows.
func (s *Service) Reject(ctx context.Context, requestID uint) error {
	var target model.AdoptionRequest
	if err := s.db.WithContext(ctx).First(&target, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("load request: %w", err)
	}

	if !target.Status.CanTransition(model.StatusRejected) {
		return ErrInvalidTransition
	}

	if err := s.db.WithContext(ctx).Model(&model.AdoptionRequest{}).
		Where("id = ?", target.ID).
		Update("status", model.StatusRejected).Error; err != nil {
		return fmt.Errorf("reject request: %w", err)
	}
	return nil
}

// MarkTaken finalizes a claim: the approved applicant confirms physical
// receipt of the cat and it moves into their history view. Unlike the
// legacy behavior this requires the cat to have been adopted first.
func (s *Service) MarkTaken(ctx context.Context, catID uint) (model.Cat, error) {
	var cat model.Cat
	if err := s.db.WithContext(ctx).First(&cat, catID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Cat{}, ErrCatNotFound
		}
		return model.Cat{}, fmt.Errorf("load cat: %w", err)
	}

	if !cat.Adopted {
		return model.Cat{}, ErrCatNotAdopted
	}
	if cat.Taken {
		// Claiming twice is a no-op
		return cat, nil
	}

	if err := s.db.WithContext(ctx).Model(&cat).Update("taken", true).Error; err != nil {
		return model.Cat{}, fmt.Errorf("mark taken: %w", err)
	}
	cat.Taken = true
	return cat, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
