package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MCQ"
	QuestionTrueFalse      QuestionType = "TF"
)

type Quiz struct {
	ID               int64
	LessonSlug       string
	Title            string
	EcoPoints        int
	TimeLimitSeconds *int
	IsActive         bool
	Questions        []Question
}

type Question struct {
	ID       int64
	QuizID   int64
	Text     string
	Type     QuestionType
	Position int
	Choices  []Choice
}

type Choice struct {
	ID         int64
	QuestionID int64
	Text       string
	IsCorrect  bool
}

type QuizAttempt struct {
	ID           uuid.UUID
	UserID       int64
	QuizID       int64
	StartedAt    time.Time
	CompletedAt  *time.Time
	ScorePercent *decimal.Decimal
	EarnedPoints int
}

func (a *QuizAttempt) Completed() bool {
	return a.CompletedAt != nil
}

type QuizResult struct {
	Attempt  *QuizAttempt
	Correct  int
	Total    int
	Progress *ProgressChange
}
