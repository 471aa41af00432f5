package model

import (
	"strings"
	"time"
)

// Application review statuses.
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusReviewing = "reviewing"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
)

// ValidApplicationStatus reports whether s is a known application status.
func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewing,
		ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// JobApplication is a candidate's submission for a Job posting.
type JobApplication struct {
	ID          string     `bson:"id" json:"id"`
	JobID       string     `bson:"jobId" json:"jobId"`
	FirstName   string     `bson:"firstName" json:"firstName"`
	LastName    string     `bson:"lastName" json:"lastName"`
	Email       string     `bson:"email" json:"email"`
	Phone       string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Address     string     `bson:"address,omitempty" json:"address,omitempty"`
	Position    string     `bson:"position,omitempty" json:"position,omitempty"`
	LinkedinURL string     `bson:"linkedinUrl,omitempty" json:"linkedinUrl,omitempty"`
	CoverLetter string     `bson:"coverLetter,omitempty" json:"coverLetter,omitempty"`
	Status      string     `bson:"status" json:"status"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	ReviewedAt  *time.Time `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
}

// ApplicationWithJob pairs an application with the posting it targets,
// resolved via $lookup on the jobs collection.
type ApplicationWithJob struct {
	JobApplication `bson:",inline"`
	JobDetails     *Job `bson:"jobDetails,omitempty" json:"jobDetails,omitempty"`
}

// ApplicationStats counts applications per review status.
type ApplicationStats struct {
	Pending   int64 `json:"pending"`
	Reviewing int64 `json:"reviewing"`
	Accepted  int64 `json:"accepted"`
	Rejected  int64 `json:"rejected"`
}

// JobApplicationGroup is a per-posting rollup of applications.
type JobApplicationGroup struct {
	JobID        string           `bson:"jobId" json:"jobId"`
	JobDetails   *Job             `bson:"jobDetails,omitempty" json:"jobDetails,omitempty"`
	Applications []JobApplication `bson:"applications" json:"applications"`
	Statistics   GroupStatistics  `bson:"statistics" json:"statistics"`
}

type GroupStatistics struct {
	Total     int64 `bson:"total" json:"total"`
	Pending   int64 `bson:"pending" json:"pending"`
	Reviewing int64 `bson:"reviewing" json:"reviewing"`
	Accepted  int64 `bson:"accepted" json:"accepted"`
	Rejected  int64 `bson:"rejected" json:"rejected"`
}

// ValidateApplication checks the fields for a new application.
func ValidateApplication(jobID, firstName, lastName, email string) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(jobID) == "" {
		errs["jobId"] = "Job ID is required"
	}
	if strings.TrimSpace(firstName) == "" {
		errs["firstName"] = "First name is required"
	}
	if strings.TrimSpace(lastName) == "" {
		errs["lastName"] = "Last name is required"
	}
	switch {
	case strings.TrimSpace(email) == "":
		errs["email"] = "Email is required"
	case !ValidEmail(email):
		errs["email"] = "Valid email is required"
	}

	return errs
}
