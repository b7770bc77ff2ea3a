package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID            uuid.UUID
	Title         string
	Description   string
	EcoPoints     int
	RequiresPhoto bool
	IsActive      bool
	CreatedAt     time.Time
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	}
	return false
}

type TaskSubmission struct {
	ID            uuid.UUID
	TaskID        uuid.UUID
	TaskTitle     string
	UserID        int64
	PhotoRef      string
	Notes         string
	SubmittedAt   time.Time
	Status        SubmissionStatus
	ReviewerNotes string
	AwardedPoints int
	ReviewedAt    *time.Time
}

type SubmissionFilter struct {
	UserID *int64
	Status *SubmissionStatus
	Limit  uint64
}

type Review struct {
	Submission *TaskSubmission
	Progress   *ProgressChange
}
