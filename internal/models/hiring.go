package models

import "time"

// JobOpening is posted by a subadmin and broadcast to their employees.
type JobOpening struct {
	ID         string    `json:"id"`
	SubadminID string    `json:"subadminId"`
	Title      string    `json:"title"`
	Position   string    `json:"position"`
	Salary     string    `json:"salary"`
	PostedAt   time.Time `json:"postedAt"`
}

// Resume is a resume submission by an employee toward a job opening.
type Resume struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	OpeningID  string `json:"openingId"`
	FileURL    string `json:"fileUrl"`
}
