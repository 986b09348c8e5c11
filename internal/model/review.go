package model

import "time"

type Review struct {
	ID           int64     `json:"id"`
	InstructorID int64     `json:"instructor_id"`
	UserID       int64     `json:"user_id"`
	StudentName  string    `json:"student_name"`
	Rating       int       `json:"rating"` // 1..5
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}
