package model

import (
	"strings"
	"time"
)

// Job posting statuses.
const (
	JobStatusActive   = "active"
	JobStatusInactive = "inactive"
)

// Job is a career posting. IDs are human-readable strings of the form
// "job_<uuid prefix>" rather than ObjectIDs so they can be referenced from
// applications and shared in URLs.
type Job struct {
	ID           string    `bson:"id" json:"id"`
	Title        string    `bson:"title" json:"title"`
	Description  string    `bson:"description" json:"description"`
	Location     string    `bson:"location" json:"location"`
	Type         string    `bson:"type" json:"type"`
	Experience   string    `bson:"experience,omitempty" json:"experience,omitempty"`
	Requirements []string  `bson:"requirements" json:"requirements"`
	Salary       string    `bson:"salary,omitempty" json:"salary,omitempty"`
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// JobWithApplicationCount decorates a posting with the number of
// applications received, computed via a $lookup aggregation.
type JobWithApplicationCount struct {
	Job               `bson:",inline"`
	ApplicationsCount int64 `bson:"applicationsCount" json:"applicationsCount"`
}

// ValidateJob checks the fields for a new or updated posting.
func ValidateJob(title, description, location, jobType, status string) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(description) == "" {
		errs["description"] = "Description is required"
	}
	if strings.TrimSpace(location) == "" {
		errs["location"] = "Location is required"
	}
	if strings.TrimSpace(jobType) == "" {
		errs["type"] = "Job type is required"
	}
	if status != "" && status != JobStatusActive && status != JobStatusInactive {
		errs["status"] = "Status must be either active or inactive"
	}

	return errs
}
