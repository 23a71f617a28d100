package model

import (
	"time"

	"gorm.io/gorm"
)

// Cat represents an adoptable cat and its adoption/claim flags.
//
// Adopted, Adopter and AdoptDate are written exactly once, by the approval
// transaction. Taken is written once, by the claim action, and is only ever
// true when Adopted is true. None of these fields are reverted.
type Cat struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"type:varchar(100)"`
	Age         int    `json:"age"`
	Gender      string `json:"gender" gorm:"type:varchar(20)"`
	Breed       string `json:"breed" gorm:"type:varchar(100)"`
	Temperament string `json:"temperament"`
	ImageURL    string `json:"image_url" gorm:"type:varchar(255)"`
	Vaccinated  bool   `json:"vaccinated"`

	Adopted   bool       `json:"adopted" gorm:"index"`
	Adopter   *string    `json:"adopter,omitempty" gorm:"type:varchar(100);index"`
	AdoptDate *time.Time `json:"adopt_date,omitempty"`
	Taken     bool       `json:"taken"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
