package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a platform account together with the profile fields the
// adoption eligibility check reads (salary, occupation, housing situation).
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"type:varchar(100);uniqueIndex"`
	Email    string `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Name     string `json:"name" gorm:"type:varchar(100)"`
	Password string `json:"-" gorm:"type:varchar(255)"`
	Phone    string `json:"phone" gorm:"type:varchar(30)"`
	Bio      string `json:"bio"`
	Address  string `json:"address"`
	ImageURL string `json:"image_url" gorm:"type:varchar(255)"`
	Role     string `json:"role" gorm:"type:varchar(20);default:USER"`

	// Password reset: a short-lived code issued by forgot-password and
	// cleared once the reset completes
	ResetToken   *string    `json:"-" gorm:"type:varchar(10);index"`
	ResetExpires *time.Time `json:"-"`

	// Adoption profile
	Salary     float64 `json:"salary"`
	Occupation string  `json:"occupation" gorm:"type:varchar(100)"`
	HouseSize  string  `json:"house_size" gorm:"type:varchar(50)"`
	HasYard    bool    `json:"has_yard"`
	CatCount   int     `json:"cat_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsAdmin reports whether the account has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == "ADMIN"
}
