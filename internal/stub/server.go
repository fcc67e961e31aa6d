// Package stub is a development stand-in for the HR backend: the notification
// REST contract, the domain-action endpoints that trigger pushes, and a
// WebSocket relay for foreground delivery. cmd/stubserver runs it against a
// file database; the integration tests run it in-memory.
package stub

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hrpulse/internal/domain"
	"hrpulse/internal/session"
)

type Server struct {
	db       *gorm.DB
	relay    *Relay
	notifier *notifier
	engine   *gin.Engine

	jwtSecret    string
	accessExpiry time.Duration
}

func NewServer(db *gorm.DB, fcm *FCMSender, jwtSecret string, accessExpiry time.Duration) *Server {
	relay := NewRelay()
	s := &Server{
		db:           db,
		relay:        relay,
		notifier:     &notifier{db: db, relay: relay, fcm: fcm},
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
	s.engine = s.setupRoutes()
	return s
}

// Engine exposes the router for http.Server and httptest.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Relay exposes the push relay, mainly so tests can inject deliveries.
func (s *Server) Relay() *Relay {
	return s.relay
}

func (s *Server) setupRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/auth/login", s.login)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	fcm := r.Group("/fcm")
	{
		fcm.POST("/register-token", s.registerToken)
		fcm.GET("/ws", s.relay.Upgrade)
		fcm.GET("/notifications/:userType/:userId", s.listNotifications)
		fcm.GET("/notifications/:userType/:userId/unread-count", s.unreadCount)
		fcm.PUT("/notifications/mark-all-read", s.markAllRead)
		fcm.PUT("/notifications/:id/mark-read", s.markRead)
		fcm.DELETE("/notifications/batch", s.deleteBatch)
		fcm.DELETE("/notifications/:id", s.deleteOne)
	}

	r.POST("/leave/apply/:actorToken/:counterpartToken", s.applyLeave)
	r.PUT("/leave/:id/resolve/:actorToken/:counterpartToken", s.resolveLeave)
	r.POST("/jobs/post/:actorToken", s.postJobOpening)
	r.POST("/resume/submit/:actorToken/:counterpartToken", s.submitResume)
	r.POST("/broadcast/:actorToken", s.broadcast)

	return r
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}
	var acct Account
	if err := s.db.Where("email = ?", req.Email).First(&acct).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	tok, err := session.GenerateAccessToken(s.jwtSecret, s.accessExpiry, acct.ID, acct.Email, acct.UserType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok, "userId": acct.ID, "userType": acct.UserType})
}

func (s *Server) registerToken(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		UserID   string `json:"userId" binding:"required"`
		UserType string `json:"userType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token, userId and userType required"})
		return
	}
	sub := Subscription{Token: req.Token, UserID: req.UserID, UserType: req.UserType, UpdatedAt: time.Now()}
	if err := s.db.Save(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}
	var list []Notification
	err := s.db.
		Where("recipient_user_type = ? AND recipient_user_id = ?", c.Param("userType"), c.Param("userId")).
		Order("sent_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (s *Server) unreadCount(c *gin.Context) {
	var count int64
	err := s.db.Model(&Notification{}).
		Where("recipient_user_type = ? AND recipient_user_id = ? AND is_read = ?",
			c.Param("userType"), c.Param("userId"), false).
		Count(&count).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) markRead(c *gin.Context) {
	res := s.db.Model(&Notification{}).Where("id = ?", c.Param("id")).Update("is_read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) markAllRead(c *gin.Context) {
	var req struct {
		UserType string `json:"userType" binding:"required"`
		UserID   string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userType and userId required"})
		return
	}
	res := s.db.Model(&Notification{}).
		Where("recipient_user_type = ? AND recipient_user_id = ? AND is_read = ?", req.UserType, req.UserID, false).
		Update("is_read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": res.RowsAffected})
}

func (s *Server) deleteOne(c *gin.Context) {
	res := s.db.Delete(&Notification{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteBatch(c *gin.Context) {
	var req struct {
		NotificationIDs []string `json:"notificationIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "notificationIds required"})
		return
	}
	res := s.db.Delete(&Notification{}, "id IN ?", req.NotificationIDs)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": res.RowsAffected})
}

func (s *Server) applyLeave(c *gin.Context) {
	var req struct {
		EmployeeID string    `json:"employeeId" binding:"required"`
		SubadminID string    `json:"subadminId" binding:"required"`
		Reason     string    `json:"reason"`
		FromDate   time.Time `json:"fromDate"`
		ToDate     time.Time `json:"toDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employeeId and subadminId required"})
		return
	}
	leave := LeaveRequest{
		ID:         uuid.NewString(),
		EmployeeID: req.EmployeeID,
		SubadminID: req.SubadminID,
		Reason:     req.Reason,
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
		Status:     domain.LeaveStatusPending,
	}
	if err := s.db.Create(&leave).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	s.notifier.notify(c.Request.Context(), leave.SubadminID, domain.UserTypeSubadmin,
		c.Param("counterpartToken"), domain.TypeLeaveApplied,
		"New leave application", "An employee applied for leave: "+leave.Reason)
	c.JSON(http.StatusOK, leave)
}

func (s *Server) resolveLeave(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	if req.Status != domain.LeaveStatusApproved && req.Status != domain.LeaveStatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be APPROVED or REJECTED"})
		return
	}
	var leave LeaveRequest
	if err := s.db.Where("id = ?", c.Param("id")).First(&leave).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "leave request not found"})
		return
	}
	leave.Status = req.Status
	if err := s.db.Save(&leave).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	ntype, title := domain.TypeLeaveApproved, "Leave approved"
	if req.Status == domain.LeaveStatusRejected {
		ntype, title = domain.TypeLeaveRejected, "Leave rejected"
	}
	s.notifier.notify(c.Request.Context(), leave.EmployeeID, domain.UserTypeEmployee,
		c.Param("counterpartToken"), ntype, title, "Your leave request has been "+req.Status)
	c.JSON(http.StatusOK, leave)
}

func (s *Server) postJobOpening(c *gin.Context) {
	var req struct {
		SubadminID string `json:"subadminId" binding:"required"`
		Title      string `json:"title" binding:"required"`
		Position   string `json:"position"`
		Salary     string `json:"salary"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subadminId and title required"})
		return
	}
	opening := JobOpening{
		ID:         uuid.NewString(),
		SubadminID: req.SubadminID,
		Title:      req.Title,
		Position:   req.Position,
		Salary:     req.Salary,
		PostedAt:   time.Now(),
	}
	if err := s.db.Create(&opening).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	s.notifier.broadcastToEmployees(c.Request.Context(), domain.TypeJobOpening,
		"New job opening", opening.Title+" - "+opening.Position)
	c.JSON(http.StatusOK, opening)
}

func (s *Server) submitResume(c *gin.Context) {
	var req struct {
		EmployeeID string `json:"employeeId" binding:"required"`
		OpeningID  string `json:"openingId" binding:"required"`
		FileURL    string `json:"fileUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employeeId and openingId required"})
		return
	}
	resume := Resume{
		ID:         uuid.NewString(),
		EmployeeID: req.EmployeeID,
		OpeningID:  req.OpeningID,
		FileURL:    req.FileURL,
	}
	if err := s.db.Create(&resume).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	recipient := ""
	var opening JobOpening
	if err := s.db.Where("id = ?", resume.OpeningID).First(&opening).Error; err == nil {
		recipient = opening.SubadminID
	}
	s.notifier.notify(c.Request.Context(), recipient, domain.UserTypeSubadmin,
		c.Param("counterpartToken"), domain.TypeResumeSubmitted,
		"Resume received", "A resume was submitted for your opening")
	c.JSON(http.StatusOK, resume)
}

func (s *Server) broadcast(c *gin.Context) {
	var req struct {
		SubadminID string `json:"subadminId" binding:"required"`
		Title      string `json:"title" binding:"required"`
		Body       string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subadminId and title required"})
		return
	}
	n := s.notifier.broadcastToEmployees(c.Request.Context(), domain.TypeGeneric, req.Title, req.Body)
	c.JSON(http.StatusOK, gin.H{"notified": n})
}
