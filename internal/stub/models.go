package stub

import (
	"time"

	"gorm.io/gorm"
)

// Account is a login identity seeded into the stub for local development.
type Account struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string `gorm:"size:255" json:"-"`
	UserType     string `gorm:"size:20;index"`
	Name         string `gorm:"size:255"`
	CreatedAt    time.Time
}

// Subscription is the server-side association of a push token with a user.
// Registration overwrites; the backend fully owns the lifecycle.
type Subscription struct {
	Token     string `gorm:"primaryKey;size:512"`
	UserID    string `gorm:"index;size:36"`
	UserType  string `gorm:"size:20;index"`
	UpdatedAt time.Time
}

// Notification is the persisted ledger entry the client reconciles against.
type Notification struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	NotificationType  string    `gorm:"size:50;index" json:"notificationType"`
	Title             string    `gorm:"size:255" json:"title"`
	Body              string    `gorm:"type:text" json:"body"`
	SentAt            time.Time `gorm:"index" json:"sentAt"`
	IsRead            bool      `gorm:"index" json:"isRead"`
	RecipientUserID   string    `gorm:"index;size:36" json:"recipientUserId"`
	RecipientUserType string    `gorm:"size:20" json:"recipientUserType"`
}

// LeaveRequest mirrors the business record; the subadmin's last known push
// token is embedded so clients can resolve the counterpart without a lookup.
type LeaveRequest struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	EmployeeID string    `gorm:"index;size:36" json:"employeeId"`
	SubadminID string    `gorm:"index;size:36" json:"subadminId"`
	Reason     string    `gorm:"type:text" json:"reason"`
	FromDate   time.Time `json:"fromDate"`
	ToDate     time.Time `json:"toDate"`
	Status     string    `gorm:"size:20;index" json:"status"`
}

type JobOpening struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	SubadminID string    `gorm:"index;size:36" json:"subadminId"`
	Title      string    `gorm:"size:255" json:"title"`
	Position   string    `gorm:"size:255" json:"position"`
	Salary     string    `gorm:"size:100" json:"salary"`
	PostedAt   time.Time `json:"postedAt"`
}

type Resume struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	EmployeeID string `gorm:"index;size:36" json:"employeeId"`
	OpeningID  string `gorm:"index;size:36" json:"openingId"`
	FileURL    string `gorm:"size:512" json:"fileUrl"`
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Account{},
		&Subscription{},
		&Notification{},
		&LeaveRequest{},
		&JobOpening{},
		&Resume{},
	)
}
