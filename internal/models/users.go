package models

import "time"

type User struct {
	UserID          int64     `json:"user_id" db:"user_id"`
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty" db:"profile_image_url"`
	Status          *string   `json:"status,omitempty" db:"status"`
	LastSeen        time.Time `json:"last_seen" db:"last_seen"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type UserRegister struct {
	Email    string `validate:"required,email,max=255"`
	Name     string `validate:"required,max=100"`
	Password string `validate:"required"`
}

type UserLogin struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}
