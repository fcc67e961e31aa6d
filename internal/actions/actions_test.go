package actions

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hrpulse/internal/api"
	"hrpulse/internal/domain"
	"hrpulse/internal/models"
	"hrpulse/internal/recipient"
	"hrpulse/internal/stub"
	"hrpulse/internal/token"
	"hrpulse/internal/transport/transporttest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T, tr *transporttest.Transport) (*Submitter, *gorm.DB) {
	t.Helper()
	db, err := stub.OpenDB("file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000")
	require.NoError(t, err)
	server := stub.NewServer(db, nil, "test-secret", time.Hour)
	srv := httptest.NewServer(server.Engine())
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, 5*time.Second)
	resolver := recipient.New(token.NewManager(tr, client, 5*time.Second))
	return NewSubmitter(client, resolver), db
}

func TestApplyLeaveNotifiesSubadmin(t *testing.T) {
	sub, db := setup(t, transporttest.New())

	leave, err := sub.ApplyLeave(context.Background(), api.LeaveSubmission{
		EmployeeID: "emp-1",
		SubadminID: "sub-1",
		Reason:     "vacation",
		FromDate:   time.Now(),
		ToDate:     time.Now().Add(48 * time.Hour),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.LeaveStatusPending, leave.Status)
	assert.NotEmpty(t, leave.ID)

	var recs []stub.Notification
	require.NoError(t, db.Where("recipient_user_id = ?", "sub-1").Find(&recs).Error)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.TypeLeaveApplied, recs[0].NotificationType)
	assert.False(t, recs[0].IsRead)
}

// The business transaction must succeed even when no push credential can be
// resolved at all; only the token path segments carry the sentinel.
func TestApplyLeaveSucceedsWithoutTokens(t *testing.T) {
	tr := transporttest.New()
	tr.Permission = false
	sub, db := setup(t, tr)

	leave, err := sub.ApplyLeave(context.Background(), api.LeaveSubmission{
		EmployeeID: "emp-1",
		SubadminID: "sub-1",
		Reason:     "sick leave",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.LeaveStatusPending, leave.Status)

	// The ledger entry still exists; only delivery was skipped.
	var count int64
	require.NoError(t, db.Model(&stub.Notification{}).
		Where("recipient_user_id = ?", "sub-1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApproveLeaveNotifiesEmployee(t *testing.T) {
	sub, db := setup(t, transporttest.New())
	ctx := context.Background()

	leave, err := sub.ApplyLeave(ctx, api.LeaveSubmission{
		EmployeeID: "emp-1",
		SubadminID: "sub-1",
		Reason:     "vacation",
	}, "")
	require.NoError(t, err)

	leave.Employee = &models.Employee{ID: "emp-1", FCMToken: "emp-device-tok"}
	resolved, err := sub.ApproveLeave(ctx, leave)
	require.NoError(t, err)
	assert.Equal(t, domain.LeaveStatusApproved, resolved.Status)

	var recs []stub.Notification
	require.NoError(t, db.Where("recipient_user_id = ?", "emp-1").Find(&recs).Error)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.TypeLeaveApproved, recs[0].NotificationType)
}

func TestRejectLeave(t *testing.T) {
	sub, db := setup(t, transporttest.New())
	ctx := context.Background()

	leave, err := sub.ApplyLeave(ctx, api.LeaveSubmission{
		EmployeeID: "emp-1",
		SubadminID: "sub-1",
		Reason:     "conference",
	}, "")
	require.NoError(t, err)

	resolved, err := sub.RejectLeave(ctx, leave)
	require.NoError(t, err)
	assert.Equal(t, domain.LeaveStatusRejected, resolved.Status)

	var rec stub.Notification
	require.NoError(t, db.Where("recipient_user_id = ?", "emp-1").First(&rec).Error)
	assert.Equal(t, domain.TypeLeaveRejected, rec.NotificationType)
}

func TestPostJobOpeningBroadcasts(t *testing.T) {
	sub, db := setup(t, transporttest.New())
	ctx := context.Background()

	// Two registered employee devices, one subadmin device.
	for _, s := range []stub.Subscription{
		{Token: "t-e1", UserID: "emp-1", UserType: domain.UserTypeEmployee},
		{Token: "t-e2", UserID: "emp-2", UserType: domain.UserTypeEmployee},
		{Token: "t-s1", UserID: "sub-1", UserType: domain.UserTypeSubadmin},
	} {
		require.NoError(t, db.Create(&s).Error)
	}

	opening, err := sub.PostJobOpening(ctx, models.JobOpening{
		SubadminID: "sub-1",
		Title:      "Backend Engineer",
		Position:   "Senior",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, opening.ID)

	var count int64
	require.NoError(t, db.Model(&stub.Notification{}).
		Where("notification_type = ?", domain.TypeJobOpening).Count(&count).Error)
	assert.EqualValues(t, 2, count, "every employee gets one record, the subadmin none")
}

func TestEmergencyBroadcast(t *testing.T) {
	sub, db := setup(t, transporttest.New())
	require.NoError(t, db.Create(&stub.Subscription{
		Token: "t-e1", UserID: "emp-1", UserType: domain.UserTypeEmployee,
	}).Error)

	require.NoError(t, sub.EmergencyBroadcast(context.Background(), "sub-1", "Office closed", "Storm warning"))

	var rec stub.Notification
	require.NoError(t, db.Where("recipient_user_id = ?", "emp-1").First(&rec).Error)
	assert.Equal(t, domain.TypeGeneric, rec.NotificationType)
	assert.Equal(t, "Office closed", rec.Title)
}

func TestSubmitResume(t *testing.T) {
	sub, db := setup(t, transporttest.New())
	ctx := context.Background()

	opening, err := sub.PostJobOpening(ctx, models.JobOpening{SubadminID: "sub-1", Title: "QA"})
	require.NoError(t, err)

	resume, err := sub.SubmitResume(ctx, models.Resume{
		EmployeeID: "emp-1",
		OpeningID:  opening.ID,
		FileURL:    "https://files.local/cv.pdf",
	}, "sub-device-tok")
	require.NoError(t, err)
	assert.NotEmpty(t, resume.ID)

	var rec stub.Notification
	require.NoError(t, db.Where("recipient_user_id = ?", "sub-1").First(&rec).Error)
	assert.Equal(t, domain.TypeResumeSubmitted, rec.NotificationType)
}
