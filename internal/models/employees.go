package models

import "time"

type Employee struct {
	ID          int64     `db:"id"`
	FullName    string    `db:"full_name"`
	JoiningDate time.Time `db:"joining_date"`
}
