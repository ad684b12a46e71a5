package service

import (
	"errors"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GradingEnqueuer decouples the ledger from the grading pipeline: the
// ledger only hands over a submission id, the worker owns everything
// after that.
type GradingEnqueuer interface {
	Enqueue(submissionID uint)
}

// SubmissionService is the attempt ledger: it admits at most MaxAttempts
// submissions per (quiz, student) even under concurrent requests, and
// persists answers immutably once admitted.
type SubmissionService struct {
	Submissions *repository.SubmissionRepository
	Quizzes     *repository.QuizRepository
	Questions   *repository.QuestionRepository
	Courses     *repository.CourseRepository
	Grader      GradingEnqueuer
}

func NewSubmissionService(submissions *repository.SubmissionRepository, quizzes *repository.QuizRepository, questions *repository.QuestionRepository, courses *repository.CourseRepository) *SubmissionService {
	return &SubmissionService{Submissions: submissions, Quizzes: quizzes, Questions: questions, Courses: courses}
}

type SubmitRequest struct {
	Answers          []model.AnswerInput `json:"answers"`
	TimeSpentSeconds *int                `json:"timeSpentSeconds"`
}

// admitAttempt evaluates the three gating checks in their contractual
// order: published, deadline, attempt count. These are the only terminal
// rejection reasons for submission creation.
func admitAttempt(quiz *model.Quiz, now time.Time, priorAttempts int) error {
	if !quiz.IsPublished {
		return util.ErrQuizNotAvailable
	}
	if quiz.DueAt != nil && now.After(*quiz.DueAt) {
		return util.ErrDeadlinePassed
	}
	if priorAttempts >= quiz.MaxAttempts {
		return util.ErrAttemptsExceeded
	}
	return nil
}

// buildAnswerRows produces exactly one answer row per question of the
// quiz, in question order; questions the student did not answer are
// recorded as empty strings. Answers for unknown question ids are
// dropped.
func buildAnswerRows(questions []model.Question, answers []model.AnswerInput) []model.SubmissionAnswer {
	byQuestion := make(map[uint]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.AnswerText
	}

	rows := make([]model.SubmissionAnswer, len(questions))
	for i, q := range questions {
		rows[i] = model.SubmissionAnswer{
			QuestionID: q.ID,
			AnswerText: byQuestion[q.ID],
		}
	}
	return rows
}

// Submit admits one attempt. The count-and-insert is serialized per
// (quiz, student) by the unique index on (quiz_id, student_id,
// attempt_ordinal): a racing request that observes the same prior count
// inserts the same ordinal, loses with a duplicate-key error, and gets
// one retry with a recomputed ordinal. If the retry finds the limit
// reached it surfaces the regular attempts-exceeded rejection; a second
// conflict surfaces as a retryable conflict.
func (s *SubmissionService) Submit(actor model.Actor, quizID uint, req SubmitRequest) (*model.Submission, error) {
	if !actor.IsStudent() {
		return nil, util.ErrPermissionDenied
	}

	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	enrolled, err := s.Courses.IsEnrolled(actor.ID, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	questions, err := s.Questions.ListByQuiz(quiz.ID)
	if err != nil {
		return nil, err
	}

	maxScore := 0
	for _, q := range questions {
		maxScore += q.Points
	}

	const admissionTries = 2
	for try := 0; try < admissionTries; try++ {
		count, err := s.Submissions.CountByQuizAndStudent(quiz.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if err := admitAttempt(quiz, time.Now(), int(count)); err != nil {
			return nil, err
		}

		sub := &model.Submission{
			QuizID:           quiz.ID,
			StudentID:        actor.ID,
			AttemptOrdinal:   int(count) + 1,
			TimeSpentSeconds: req.TimeSpentSeconds,
			SubmittedAt:      time.Now(),
			MaxScore:         maxScore,
		}
		rows := buildAnswerRows(questions, req.Answers)

		err = s.Submissions.CreateWithAnswers(sub, rows)
		if err == nil {
			if quiz.IsGraded && s.Grader != nil {
				s.Grader.Enqueue(sub.ID)
			}
			return sub, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Log.Info("attempt admission lost a race, retrying",
				zap.Uint("quizId", quiz.ID),
				zap.Uint("studentId", actor.ID),
				zap.Int("ordinal", sub.AttemptOrdinal))
			continue
		}
		return nil, err
	}

	return nil, util.ErrAttemptConflict
}

// ListForQuiz returns all submissions of a quiz for its owning
// instructor, or the calling student's own attempts.
func (s *SubmissionService) ListForQuiz(actor model.Actor, quizID uint) ([]model.Submission, error) {
	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if actor.IsInstructor() {
		course, err := s.Courses.FindByID(quiz.CourseID)
		if err != nil {
			return nil, err
		}
		if err := requireCourseOwner(actor, course); err != nil {
			return nil, err
		}
		return s.Submissions.ListByQuiz(quiz.ID)
	}

	return s.Submissions.ListByQuizAndStudent(quiz.ID, actor.ID)
}

// GetSubmission serves one submission to its student or the course's
// instructor.
func (s *SubmissionService) GetSubmission(actor model.Actor, id uint) (*model.Submission, error) {
	sub, err := s.Submissions.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}

	if sub.StudentID == actor.ID {
		return sub, nil
	}

	quiz, err := s.Quizzes.FindByID(sub.QuizID)
	if err != nil {
		return nil, err
	}
	course, err := s.Courses.FindByID(quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseOwner(actor, course); err != nil {
		return nil, err
	}
	return sub, nil
}
