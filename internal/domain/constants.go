package domain

// User types known to the backend registration and notification endpoints.
const (
	UserTypeEmployee = "EMPLOYEE"
	UserTypeSubadmin = "SUBADMIN"
)

// Notification types carried in the push payload's data.type field and on
// persisted notification records. Anything else maps to TypeGeneric.
const (
	TypeLeaveApplied    = "LEAVE_APPLIED"
	TypeLeaveApproved   = "LEAVE_APPROVED"
	TypeLeaveRejected   = "LEAVE_REJECTED"
	TypeResumeSubmitted = "RESUME_SUBMITTED"
	TypeJobOpening      = "JOB_OPENING"
	TypeGeneric         = "GENERIC"
)

// KnownType reports whether t is one of the closed set of notification types.
func KnownType(t string) bool {
	switch t {
	case TypeLeaveApplied, TypeLeaveApproved, TypeLeaveRejected,
		TypeResumeSubmitted, TypeJobOpening, TypeGeneric:
		return true
	}
	return false
}

// Bus topics. The names are the application's in-process signaling contract:
// raw transport payloads, typed events, bell-badge invalidation, and an
// explicit refresh request all converge on the same reconciliation path.
const (
	TopicRawMessage  = "firebaseNotification"
	TopicEvent       = "notification"
	TopicBellUpdate  = "notificationBellUpdate"
	TopicForceResync = "forceNotificationRefresh"
)

// SentinelToken is supplied to domain-action endpoints when a push credential
// could not be resolved. The backend skips delivery for it; the business
// transaction still goes through.
const SentinelToken = "no-token"

// Leave request statuses as stored by the backend.
const (
	LeaveStatusPending  = "PENDING"
	LeaveStatusApproved = "APPROVED"
	LeaveStatusRejected = "REJECTED"
)

// DashboardRoute returns the fixed in-app location a background notification
// click should land on for the given user type.
func DashboardRoute(userType string) string {
	if userType == UserTypeSubadmin {
		return "/subadmin/dashboard"
	}
	return "/employee/dashboard"
}
