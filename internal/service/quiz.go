package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecoverse_backend/internal/metrics"
	"ecoverse_backend/internal/model"
	"ecoverse_backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuizService struct {
	repo     QuizRepository
	notifier Notifier
	validate *validator.Validate
}

func NewQuizService(repo QuizRepository, notifier Notifier) *QuizService {
	v := validator.New()
	v.RegisterStructValidation(validateQuestionSpec, QuestionSpec{})

	return &QuizService{
		repo:     repo,
		notifier: notifier,
		validate: v,
	}
}

// QuizSpec holds the editable quiz fields.
type QuizSpec struct {
	LessonSlug       string `json:"lesson_slug" validate:"required,max=200"`
	Title            string `json:"title" validate:"required,max=200"`
	EcoPoints        int    `json:"eco_points" validate:"gte=0"`
	TimeLimitSeconds *int   `json:"time_limit_seconds" validate:"omitempty,gt=0"`
	IsActive         bool   `json:"is_active"`
}

// QuestionSpec describes one question of a quiz. True/false questions carry only Answer,
// their choices are generated.
type QuestionSpec struct {
	Text    string       `json:"text" validate:"required"`
	Type    string       `json:"question_type" validate:"required,oneof=MCQ TF"`
	Answer  *bool        `json:"answer"`
	Choices []ChoiceSpec `json:"choices" validate:"dive"`
}

type ChoiceSpec struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

func validateQuestionSpec(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuestionSpec)

	switch model.QuestionType(q.Type) {
	case model.QuestionTrueFalse:
		if q.Answer == nil {
			sl.ReportError(q.Answer, "Answer", "answer", "required_for_tf", "")
		}
	case model.QuestionMultipleChoice:
		if len(q.Choices) < 2 {
			sl.ReportError(q.Choices, "Choices", "choices", "min_choices", "2")
			return
		}
		for _, c := range q.Choices {
			if c.IsCorrect {
				return
			}
		}
		sl.ReportError(q.Choices, "Choices", "choices", "one_correct", "")
	}
}

// Grade scores answers against a quiz. A question counts as correct only when the
// chosen choice belongs to it and is marked correct. Earned points are
// floor(ecoPoints * correct / total).
func Grade(quiz *model.Quiz, answers map[int64]int64) (decimal.Decimal, int, int) {
	total := len(quiz.Questions)
	if total == 0 {
		return decimal.Zero, 0, 0
	}

	correct := 0
	for _, question := range quiz.Questions {
		choiceID, ok := answers[question.ID]
		if !ok {
			continue
		}
		for _, choice := range question.Choices {
			if choice.ID == choiceID {
				if choice.IsCorrect {
					correct++
				}
				break
			}
		}
	}

	score := decimal.NewFromInt(int64(correct * 100)).DivRound(decimal.NewFromInt(int64(total)), 2)
	earned := quiz.EcoPoints * correct / total

	return score, earned, correct
}

func (s *QuizService) GetQuiz(ctx context.Context, quizID int64) (*model.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizService) getActiveQuiz(ctx context.Context, quizID int64) (*model.Quiz, error) {
	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive {
		return nil, ErrQuizInactive
	}
	return quiz, nil
}

func (s *QuizService) StartAttempt(ctx context.Context, userID, quizID int64) (*model.QuizAttempt, error) {
	if _, err := s.getActiveQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		ID:     uuid.New(),
		UserID: userID,
		QuizID: quizID,
	}

	if err := s.repo.StartQuizAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to start attempt: %w", err)
	}

	return attempt, nil
}

// SubmitQuiz grades the answers, finalizes the attempt and credits the earned points in
// one transaction. Without an attemptID a completed attempt is recorded directly.
func (s *QuizService) SubmitQuiz(ctx context.Context, userID, quizID int64, answers map[int64]int64, attemptID *uuid.UUID) (*model.QuizResult, error) {
	quiz, err := s.getActiveQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	score, earned, correct := Grade(quiz, answers)

	attempt := &model.QuizAttempt{
		UserID:       userID,
		QuizID:       quizID,
		ScorePercent: &score,
		EarnedPoints: earned,
	}

	var change *model.ProgressChange
	if attemptID != nil {
		attempt.ID = *attemptID
		change, err = s.repo.CompleteQuizAttempt(ctx, attempt)
	} else {
		attempt.ID = uuid.New()
		change, err = s.repo.RecordQuizAttempt(ctx, attempt)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrAttemptNotFound
		case errors.Is(err, repository.ErrAlreadyCompleted):
			return nil, ErrAttemptAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to complete attempt: %w", err)
	}

	metrics.QuizzesGraded.Inc()
	recordAward(change, metrics.SourceQuiz)

	events := []model.Event{{
		Type:   model.EventQuizCompleted,
		UserID: userID,
		Payload: map[string]any{
			"quiz_id":       quizID,
			"score_percent": score.StringFixed(2),
			"earned_points": earned,
		},
	}}
	publish(ctx, s.notifier, append(events, progressEvents(userID, change, metrics.SourceQuiz)...)...)

	return &model.QuizResult{
		Attempt:  attempt,
		Correct:  correct,
		Total:    len(quiz.Questions),
		Progress: change,
	}, nil
}

func (s *QuizService) GetLatestAttempt(ctx context.Context, userID, quizID int64) (*model.QuizAttempt, error) {
	attempt, err := s.repo.GetLatestCompletedAttempt(ctx, userID, quizID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	}
	return attempt, nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, spec QuizSpec) (*model.Quiz, error) {
	if err := s.validate.Struct(spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}

	quiz := spec.toModel()
	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	return quiz, nil
}

func (s *QuizService) UpdateQuiz(ctx context.Context, quizID int64, spec QuizSpec) (*model.Quiz, error) {
	if err := s.validate.Struct(spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}

	quiz := spec.toModel()
	quiz.ID = quizID
	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	return s.GetQuiz(ctx, quizID)
}

// ReplaceQuestions validates the whole set first and stores it in one transaction, so a
// malformed entry leaves the existing questions untouched.
func (s *QuizService) ReplaceQuestions(ctx context.Context, quizID int64, specs []QuestionSpec) (*model.Quiz, error) {
	questions := make([]model.Question, len(specs))
	for i, spec := range specs {
		spec.Text = strings.TrimSpace(spec.Text)
		choices := make([]ChoiceSpec, len(spec.Choices))
		for j, c := range spec.Choices {
			choices[j] = ChoiceSpec{Text: strings.TrimSpace(c.Text), IsCorrect: c.IsCorrect}
		}
		spec.Choices = choices

		if err := s.validate.Struct(spec); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidQuestionSet, i+1, err)
		}

		questions[i] = spec.toModel(i + 1)
	}

	if err := s.repo.ReplaceQuestions(ctx, quizID, questions); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to replace questions: %w", err)
	}

	return s.GetQuiz(ctx, quizID)
}

func (q QuizSpec) toModel() *model.Quiz {
	return &model.Quiz{
		LessonSlug:       strings.TrimSpace(q.LessonSlug),
		Title:            strings.TrimSpace(q.Title),
		EcoPoints:        q.EcoPoints,
		TimeLimitSeconds: q.TimeLimitSeconds,
		IsActive:         q.IsActive,
	}
}

func (q QuestionSpec) toModel(position int) model.Question {
	question := model.Question{
		Text:     q.Text,
		Type:     model.QuestionType(q.Type),
		Position: position,
	}

	if question.Type == model.QuestionTrueFalse {
		question.Choices = []model.Choice{
			{Text: "True", IsCorrect: *q.Answer},
			{Text: "False", IsCorrect: !*q.Answer},
		}
		return question
	}

	question.Choices = make([]model.Choice, len(q.Choices))
	for i, c := range q.Choices {
		question.Choices[i] = model.Choice{Text: c.Text, IsCorrect: c.IsCorrect}
	}
	return question
}
