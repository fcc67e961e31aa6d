// Package actions submits the domain operations that notify users as a side
// effect: leave lifecycle, job openings, resume intake, emergency broadcast.
// Token resolution failures never abort the business transaction.
package actions

import (
	"context"

	"hrpulse/internal/api"
	"hrpulse/internal/domain"
	"hrpulse/internal/models"
	"hrpulse/internal/recipient"
)

type Submitter struct {
	api      *api.Client
	resolver *recipient.Resolver
}

func NewSubmitter(client *api.Client, resolver *recipient.Resolver) *Submitter {
	return &Submitter{api: client, resolver: resolver}
}

// ApplyLeave submits a leave application. The subadmin's embedded token, when
// the caller has it from a fetched business record, avoids a fresh generation.
func (s *Submitter) ApplyLeave(ctx context.Context, sub api.LeaveSubmission, subadminToken string) (*models.LeaveRequest, error) {
	actor, counterpart := s.resolver.Resolve(ctx, subadminToken)
	return s.api.ApplyLeave(ctx, sub, actor, counterpart)
}

// ApproveLeave approves a pending request, notifying the employee.
func (s *Submitter) ApproveLeave(ctx context.Context, req *models.LeaveRequest) (*models.LeaveRequest, error) {
	return s.resolveLeave(ctx, req, domain.LeaveStatusApproved)
}

// RejectLeave rejects a pending request, notifying the employee.
func (s *Submitter) RejectLeave(ctx context.Context, req *models.LeaveRequest) (*models.LeaveRequest, error) {
	return s.resolveLeave(ctx, req, domain.LeaveStatusRejected)
}

func (s *Submitter) resolveLeave(ctx context.Context, req *models.LeaveRequest, status string) (*models.LeaveRequest, error) {
	embedded := ""
	if req.Employee != nil {
		embedded = req.Employee.FCMToken
	}
	actor, counterpart := s.resolver.Resolve(ctx, embedded)
	return s.api.ResolveLeave(ctx, req.ID, status, actor, counterpart)
}

// PostJobOpening publishes an opening; the backend fans the notification out
// to every employee under the subadmin.
func (s *Submitter) PostJobOpening(ctx context.Context, opening models.JobOpening) (*models.JobOpening, error) {
	return s.api.PostJobOpening(ctx, opening, s.resolver.Actor(ctx))
}

// SubmitResume sends a resume toward an opening, notifying the subadmin.
func (s *Submitter) SubmitResume(ctx context.Context, resume models.Resume, subadminToken string) (*models.Resume, error) {
	actor, counterpart := s.resolver.Resolve(ctx, subadminToken)
	return s.api.SubmitResume(ctx, resume, actor, counterpart)
}

// EmergencyBroadcast notifies all employees under the subadmin at once.
func (s *Submitter) EmergencyBroadcast(ctx context.Context, subadminID, title, body string) error {
	return s.api.EmergencyBroadcast(ctx, subadminID, title, body, s.resolver.Actor(ctx))
}
