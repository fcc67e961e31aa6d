package models

import "time"

// LeaveRequest is the business record for a leave application. The backend
// embeds the counterpart's last known push token so the client can hand it
// back on approve/reject without an extra lookup.
type LeaveRequest struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	SubadminID string    `json:"subadminId"`
	Reason     string    `json:"reason"`
	FromDate   time.Time `json:"fromDate"`
	ToDate     time.Time `json:"toDate"`
	Status     string    `json:"status"`

	Employee *Employee `json:"employee,omitempty"`
	Subadmin *Subadmin `json:"subadmin,omitempty"`
}

// Employee carries the subset of the employee record this core cares about.
type Employee struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	FCMToken string `json:"fcmToken"`
}

// Subadmin carries the subset of the subadmin record this core cares about.
type Subadmin struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	FCMToken    string `json:"fcmToken"`
}
