package adoption

import (
	"context"
	"fmt"
	"time"

	"adoption-service/internal/model"
)

// PendingCat is a cat as shown in the applicant's "adoption status" list:
// the cat's data overlaid with the state of this applicant's request.
// AdoptDate shadows the cat's own field; it is only populated once the
// request is approved, which is the signal the client uses to unlock the
// claim button.
type PendingCat struct {
	model.Cat
	AdoptDate     *time.Time          `json:"adopt_date,omitempty"`
	StatusRequest model.RequestStatus `json:"status_request"`
}

// PendingForUser lists the applicant's open requests (PENDING or APPROVED)
// joined with cat data, newest first. Cats already claimed are excluded;
// they belong to the history view.
func (s *Service) PendingForUser(ctx context.Context, username string) ([]PendingCat, error) {
	var requests []model.AdoptionRequest
	err := s.db.WithContext(ctx).
		Preload("Cat").
		Where("username = ? AND status IN ?", username, []model.RequestStatus{model.StatusPending, model.StatusApproved}).
		Order("date DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	out := make([]PendingCat, 0, len(requests))
	for _, req := range requests {
		if req.Cat.Taken {
			continue
		}

		entry := PendingCat{
			Cat:           req.Cat,
			StatusRequest: req.Status,
		}
		if req.Status == model.StatusApproved {
			if req.Cat.AdoptDate != nil {
				entry.AdoptDate = req.Cat.AdoptDate
			} else {
				now := s.now()
				entry.AdoptDate = &now
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// HistoryForUser lists the cats the user has adopted and physically
// collected, most recent adoption first.
func (s *Service) HistoryForUser(ctx context.Context, username string) ([]model.Cat, error) {
	var cats []model.Cat
	err := s.db.WithContext(ctx).
		Where("adopted = ? AND adopter = ? AND taken = ?", true, username, true).
		Order("adopt_date DESC").
		Find(&cats).Error
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return cats, nil
}

// PendingQueue is the admin work queue: every PENDING request joined with
// its cat and the applicant's profile, newest first.
func (s *Service) PendingQueue(ctx context.Context) ([]model.AdoptionRequest, error) {
	var requests []model.AdoptionRequest
	err := s.db.WithContext(ctx).
		Preload("Cat").
		Preload("User").
		Where("status = ?", model.StatusPending).
		Order("date DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("list request queue: %w", err)
	}
	return requests, nil
}
