package model

import "time"

// Responsibility is one post-adoption check-in: weekly proof that the
// adopter is caring for the cat, as three image references (food, activity,
// litter). The image fields hold stored-file names only; upload and storage
// happen outside this service. One row per (cat, week).
type Responsibility struct {
	ID    uint `json:"id" gorm:"primaryKey"`
	CatID uint `json:"cat_id" gorm:"not null;uniqueIndex:idx_cat_week"`
	Week  int  `json:"week" gorm:"not null;uniqueIndex:idx_cat_week"`

	FoodImage     string `json:"food_image" gorm:"type:varchar(255)"`
	ActivityImage string `json:"activity_image" gorm:"type:varchar(255)"`
	LitterImage   string `json:"litter_image" gorm:"type:varchar(255)"`

	Date time.Time `json:"date" gorm:"index"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
