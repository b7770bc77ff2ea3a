package model

type EventType string

const (
	EventPointsAwarded      EventType = "POINTS_AWARDED"
	EventLevelUp            EventType = "LEVEL_UP"
	EventSubmissionApproved EventType = "SUBMISSION_APPROVED"
	EventSubmissionRejected EventType = "SUBMISSION_REJECTED"
	EventQuizCompleted      EventType = "QUIZ_COMPLETED"
)

type Event struct {
	Type    EventType      `json:"type"`
	UserID  int64          `json:"-"`
	Payload map[string]any `json:"payload,omitempty"`
}
