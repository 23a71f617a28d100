package model

import "time"

// ReportStatus is the state of a stray-cat report
type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportHandled  ReportStatus = "HANDLED"
	ReportRejected ReportStatus = "REJECTED"
)

// Report is a stray-cat sighting filed by a user. Admins answer it by
// setting a status and a response text.
type Report struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	Username string       `json:"username" gorm:"type:varchar(100);index;not null"`
	Title    string       `json:"title" gorm:"type:varchar(200)"`
	Body     string       `json:"body"`
	Location string       `json:"location" gorm:"type:varchar(255)"`
	ImageURL string       `json:"image_url" gorm:"type:varchar(255)"`
	Status   ReportStatus `json:"status" gorm:"type:varchar(20);default:PENDING"`
	Response string       `json:"response"`
	Date     time.Time    `json:"date" gorm:"index"`

	User User `json:"user" gorm:"foreignKey:Username;references:Username"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
