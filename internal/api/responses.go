package api

import (
	"ecoverse_backend/internal/model"
)

type levelResponse struct {
	Number         int    `json:"number"`
	Name           string `json:"name"`
	RequiredPoints int    `json:"required_points"`
	BadgeColor     string `json:"badge_color"`
}

func newLevelResponse(l *model.LevelDefinition) *levelResponse {
	if l == nil {
		return nil
	}
	return &levelResponse{
		Number:         l.Number,
		Name:           l.Name,
		RequiredPoints: l.RequiredPoints,
		BadgeColor:     l.BadgeColor,
	}
}

func newLevelsResponse(levels model.LevelTable) []levelResponse {
	out := make([]levelResponse, 0, len(levels))
	for i := range levels {
		out = append(out, *newLevelResponse(&levels[i]))
	}
	return out
}

type progressResponse struct {
	UserID       int64          `json:"user_id"`
	TotalPoints  int            `json:"total_points"`
	CurrentLevel *levelResponse `json:"current_level"`
	UpdatedAt    int64          `json:"updated_at"`
}

func newProgressResponse(p *model.UserProgress) *progressResponse {
	if p == nil {
		return nil
	}
	return &progressResponse{
		UserID:       p.UserID,
		TotalPoints:  p.TotalPoints,
		CurrentLevel: newLevelResponse(p.CurrentLevel),
		UpdatedAt:    p.UpdatedAt.Unix(),
	}
}

type progressChangeResponse struct {
	Amount    int               `json:"amount"`
	LeveledUp bool              `json:"leveled_up"`
	Progress  *progressResponse `json:"progress"`
}

func newProgressChangeResponse(c *model.ProgressChange) *progressChangeResponse {
	if c == nil {
		return nil
	}
	return &progressChangeResponse{
		Amount:    c.Amount,
		LeveledUp: c.LeveledUp(),
		Progress:  newProgressResponse(c.Progress),
	}
}

type choiceResponse struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

type questionResponse struct {
	ID       int64            `json:"id"`
	Text     string           `json:"text"`
	Type     string           `json:"question_type"`
	Position int              `json:"position"`
	Choices  []choiceResponse `json:"choices"`
}

type quizResponse struct {
	ID               int64              `json:"id"`
	LessonSlug       string             `json:"lesson_slug"`
	Title            string             `json:"title"`
	EcoPoints        int                `json:"eco_points"`
	TimeLimitSeconds *int               `json:"time_limit_seconds"`
	IsActive         bool               `json:"is_active"`
	Questions        []questionResponse `json:"questions"`
}

// newQuizResponse renders a quiz. Players never see which choice is correct, so
// withAnswers is set only on reviewer routes.
func newQuizResponse(q *model.Quiz, withAnswers bool) quizResponse {
	out := quizResponse{
		ID:               q.ID,
		LessonSlug:       q.LessonSlug,
		Title:            q.Title,
		EcoPoints:        q.EcoPoints,
		TimeLimitSeconds: q.TimeLimitSeconds,
		IsActive:         q.IsActive,
		Questions:        make([]questionResponse, 0, len(q.Questions)),
	}

	for _, question := range q.Questions {
		qr := questionResponse{
			ID:       question.ID,
			Text:     question.Text,
			Type:     string(question.Type),
			Position: question.Position,
			Choices:  make([]choiceResponse, 0, len(question.Choices)),
		}
		for _, choice := range question.Choices {
			cr := choiceResponse{ID: choice.ID, Text: choice.Text}
			if withAnswers {
				correct := choice.IsCorrect
				cr.IsCorrect = &correct
			}
			qr.Choices = append(qr.Choices, cr)
		}
		out.Questions = append(out.Questions, qr)
	}

	return out
}

type attemptResponse struct {
	ID           string  `json:"id"`
	QuizID       int64   `json:"quiz_id"`
	StartedAt    int64   `json:"started_at"`
	CompletedAt  *int64  `json:"completed_at"`
	ScorePercent *string `json:"score_percent"`
	EarnedPoints int     `json:"earned_points"`
}

func newAttemptResponse(a *model.QuizAttempt) attemptResponse {
	out := attemptResponse{
		ID:           a.ID.String(),
		QuizID:       a.QuizID,
		StartedAt:    a.StartedAt.Unix(),
		CompletedAt:  unixPtr(a.CompletedAt),
		EarnedPoints: a.EarnedPoints,
	}
	if a.ScorePercent != nil {
		score := a.ScorePercent.StringFixed(2)
		out.ScorePercent = &score
	}
	return out
}

type taskResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	EcoPoints     int    `json:"eco_points"`
	RequiresPhoto bool   `json:"requires_photo"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     int64  `json:"created_at"`
}

func newTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:            t.ID.String(),
		Title:         t.Title,
		Description:   t.Description,
		EcoPoints:     t.EcoPoints,
		RequiresPhoto: t.RequiresPhoto,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt.Unix(),
	}
}

type submissionResponse struct {
	ID            string `json:"id"`
	TaskID        string `json:"task_id"`
	TaskTitle     string `json:"task_title"`
	UserID        int64  `json:"user_id"`
	PhotoRef      string `json:"photo_ref"`
	Notes         string `json:"notes"`
	SubmittedAt   int64  `json:"submitted_at"`
	Status        string `json:"status"`
	ReviewerNotes string `json:"reviewer_notes"`
	AwardedPoints int    `json:"awarded_points"`
	ReviewedAt    *int64 `json:"reviewed_at"`
}

func newSubmissionResponse(s *model.TaskSubmission) submissionResponse {
	return submissionResponse{
		ID:            s.ID.String(),
		TaskID:        s.TaskID.String(),
		TaskTitle:     s.TaskTitle,
		UserID:        s.UserID,
		PhotoRef:      s.PhotoRef,
		Notes:         s.Notes,
		SubmittedAt:   s.SubmittedAt.Unix(),
		Status:        string(s.Status),
		ReviewerNotes: s.ReviewerNotes,
		AwardedPoints: s.AwardedPoints,
		ReviewedAt:    unixPtr(s.ReviewedAt),
	}
}

func newSubmissionsResponse(submissions []*model.TaskSubmission) []submissionResponse {
	out := make([]submissionResponse, 0, len(submissions))
	for _, s := range submissions {
		out = append(out, newSubmissionResponse(s))
	}
	return out
}
