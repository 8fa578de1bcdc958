package models

import "time"

type ApplicationStatus string

const (
	StatusApplied          ApplicationStatus = "applied"
	StatusOnlineAssessment ApplicationStatus = "online_assessment"
	StatusInterview        ApplicationStatus = "interview"
	StatusOffer            ApplicationStatus = "offer"
	StatusRejected         ApplicationStatus = "rejected"
	StatusWishlist         ApplicationStatus = "wishlist"
)

// ApplicationStatuses lists every accepted status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	StatusApplied,
	StatusOnlineAssessment,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusWishlist,
}

func (s ApplicationStatus) Valid() bool {
	for _, candidate := range ApplicationStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Application is a single job application tracked by its owner.
// OwnerID is serialised as "user" to stay compatible with existing clients.
type Application struct {
	ID          string            `json:"_id" bson:"_id"`
	OwnerID     string            `json:"user" bson:"user"`
	Company     string            `json:"company" bson:"company"`
	Position    string            `json:"position" bson:"position"`
	JobLink     string            `json:"jobLink,omitempty" bson:"jobLink,omitempty"`
	Status      ApplicationStatus `json:"status" bson:"status"`
	AppliedDate time.Time         `json:"appliedDate" bson:"appliedDate"`
	Deadline    *time.Time        `json:"deadline,omitempty" bson:"deadline,omitempty"`
	Notes       string            `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// ApplicationPatch holds the fields an owner may change. Nil means unchanged.
type ApplicationPatch struct {
	Company     *string            `json:"company"`
	Position    *string            `json:"position"`
	JobLink     *string            `json:"jobLink"`
	Status      *ApplicationStatus `json:"status"`
	AppliedDate *time.Time         `json:"appliedDate"`
	Deadline    *time.Time         `json:"deadline"`
	Notes       *string            `json:"notes"`

	// ClearDeadline removes the deadline. Deadline is ignored when it is set.
	ClearDeadline bool `json:"-"`
}

func (p ApplicationPatch) Empty() bool {
	return p.Company == nil && p.Position == nil && p.JobLink == nil && p.Status == nil &&
		p.AppliedDate == nil && p.Deadline == nil && p.Notes == nil && !p.ClearDeadline
}

// Apply copies the supplied fields onto app. It does not touch UpdatedAt.
func (p ApplicationPatch) Apply(app *Application) {
	if p.Company != nil {
		app.Company = *p.Company
	}
	if p.Position != nil {
		app.Position = *p.Position
	}
	if p.JobLink != nil {
		app.JobLink = *p.JobLink
	}
	if p.Status != nil {
		app.Status = *p.Status
	}
	if p.AppliedDate != nil {
		app.AppliedDate = *p.AppliedDate
	}
	switch {
	case p.ClearDeadline:
		app.Deadline = nil
	case p.Deadline != nil:
		deadline := *p.Deadline
		app.Deadline = &deadline
	}
	if p.Notes != nil {
		app.Notes = *p.Notes
	}
}

// Sortable application fields, named as stored.
const (
	SortCreatedAt   = "createdAt"
	SortUpdatedAt   = "updatedAt"
	SortAppliedDate = "appliedDate"
	SortDeadline    = "deadline"
	SortCompany     = "company"
	SortPosition    = "position"
	SortStatus      = "status"
)

var SortFields = []string{
	SortCreatedAt,
	SortUpdatedAt,
	SortAppliedDate,
	SortDeadline,
	SortCompany,
	SortPosition,
	SortStatus,
}

// ListOptions narrows and orders a List call. SortBy must be one of SortFields.
type ListOptions struct {
	Status    string
	SortBy    string
	Ascending bool
}
