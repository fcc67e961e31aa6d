package api

import (
	"context"
	"fmt"
	"time"

	"hrpulse/internal/models"
)

// Domain-action endpoints. The backend performs the push fan-out itself; the
// client only supplies the actor and counterpart tokens as opaque path
// segments.

// LeaveSubmission is the body of a leave application.
type LeaveSubmission struct {
	EmployeeID string    `json:"employeeId"`
	SubadminID string    `json:"subadminId"`
	Reason     string    `json:"reason"`
	FromDate   time.Time `json:"fromDate"`
	ToDate     time.Time `json:"toDate"`
}

func (c *Client) ApplyLeave(ctx context.Context, sub LeaveSubmission, actorToken, counterpartToken string) (*models.LeaveRequest, error) {
	var out models.LeaveRequest
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(sub).
		SetResult(&out).
		Post("/leave/apply/" + actorToken + "/" + counterpartToken)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("apply leave: %s", resp.Status())
	}
	return &out, nil
}

// ResolveLeave approves or rejects a pending leave request.
func (c *Client) ResolveLeave(ctx context.Context, id, status, actorToken, counterpartToken string) (*models.LeaveRequest, error) {
	var out models.LeaveRequest
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(map[string]string{"status": status}).
		SetResult(&out).
		Put("/leave/" + id + "/resolve/" + actorToken + "/" + counterpartToken)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("resolve leave: %s", resp.Status())
	}
	return &out, nil
}

func (c *Client) PostJobOpening(ctx context.Context, opening models.JobOpening, actorToken string) (*models.JobOpening, error) {
	var out models.JobOpening
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(opening).
		SetResult(&out).
		Post("/jobs/post/" + actorToken)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("post job opening: %s", resp.Status())
	}
	return &out, nil
}

func (c *Client) SubmitResume(ctx context.Context, resume models.Resume, actorToken, counterpartToken string) (*models.Resume, error) {
	var out models.Resume
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(resume).
		SetResult(&out).
		Post("/resume/submit/" + actorToken + "/" + counterpartToken)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("submit resume: %s", resp.Status())
	}
	return &out, nil
}

// EmergencyBroadcast asks the backend to notify every employee under the
// subadmin. Recipient expansion happens server-side.
func (c *Client) EmergencyBroadcast(ctx context.Context, subadminID, title, body, actorToken string) error {
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(map[string]string{"subadminId": subadminID, "title": title, "body": body}).
		Post("/broadcast/" + actorToken)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("emergency broadcast: %s", resp.Status())
	}
	return nil
}
