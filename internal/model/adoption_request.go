package model

import "time"

// AdoptionRequest is one applicant's request for one cat. The composite
// unique index enforces at most one row per (applicant, cat) pair;
// re-application after a rejection revives this row instead of inserting
// a new one.
type AdoptionRequest struct {
	ID       uint          `json:"id" gorm:"primaryKey"`
	CatID    uint          `json:"cat_id" gorm:"not null;uniqueIndex:idx_applicant_cat"`
	Username string        `json:"username" gorm:"type:varchar(100);not null;uniqueIndex:idx_applicant_cat"`
	Status   RequestStatus `json:"status" gorm:"type:varchar(20);index;default:PENDING"`
	Message  string        `json:"message"`
	Date     time.Time     `json:"date" gorm:"index"`

	Cat  Cat  `json:"cat" gorm:"foreignKey:CatID"`
	User User `json:"user" gorm:"foreignKey:Username;references:Username"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
