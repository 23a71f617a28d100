package model

import "time"

// Donation is a single recorded contribution. Bookkeeping only; payment
// processing happens outside this service.
type Donation struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Username string    `json:"username" gorm:"type:varchar(100);index;not null"`
	Amount   int64     `json:"amount" gorm:"not null"`
	Method   string    `json:"method" gorm:"type:varchar(50)"`
	Note     string    `json:"note"`
	ProofURL string    `json:"proof_url" gorm:"type:varchar(255)"`
	Date     time.Time `json:"date" gorm:"index"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
