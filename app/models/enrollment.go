package models

import "time"

// EnrollmentRecord grants a user access to a course. The composite unique
// index on (user_id, course_id) makes re-granting a no-op instead of a
// duplicate row.
type EnrollmentRecord struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index:ux_enrollments_user_course,unique,priority:1" json:"user_id"`
	CourseID    uint       `gorm:"not null;index:ux_enrollments_user_course,unique,priority:2" json:"course_id"`
	Course      Course     `gorm:"foreignKey:CourseID" json:"course"`
	EnrolledAt  time.Time  `gorm:"autoCreateTime" json:"enrolled_at"`
	Completed   bool       `gorm:"type:tinyint(1);default:0" json:"completed"`
	CompletedAt *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
}

// TableName specifies the table name for the EnrollmentRecord model
func (EnrollmentRecord) TableName() string {
	return "enrollments"
}
