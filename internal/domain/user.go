package domain

import "time"

type UserRole string

const (
	RoleStudent     UserRole = "student"
	RoleLabManager  UserRole = "lab_manager"
	RoleSchoolAdmin UserRole = "school_admin"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Name         string    `json:"name"`
	StudentCode  string    `json:"student_code,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
