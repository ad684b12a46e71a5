package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scorer is the external scoring collaborator as the grading engine sees
// it. ScorerService implements it; tests substitute fakes.
type Scorer interface {
	ScoreSubmission(ctx context.Context, req ScoreRequest) (*ScoreResult, error)
}

// GradingService turns a submission into a score: objective types by
// exact comparison, subjective types through the external scorer. A
// failed pass leaves the submission ungraded and retryable; a successful
// pass is final.
type GradingService struct {
	Submissions *repository.SubmissionRepository
	Quizzes     *repository.QuizRepository
	Questions   *repository.QuestionRepository
	Scorer      Scorer
	// GradeShortAnswer reroutes SHORT_ANSWER through the external scorer
	// instead of exact matching.
	GradeShortAnswer bool
}

func NewGradingService(submissions *repository.SubmissionRepository, quizzes *repository.QuizRepository, questions *repository.QuestionRepository, scorer Scorer, gradeShortAnswer bool) *GradingService {
	return &GradingService{
		Submissions:      submissions,
		Quizzes:          quizzes,
		Questions:        questions,
		Scorer:           scorer,
		GradeShortAnswer: gradeShortAnswer,
	}
}

// subjective reports whether a question type is routed to the external
// scorer under the engine's configured policy.
func (s *GradingService) subjective(t model.QuestionType) bool {
	if t == model.Essay {
		return true
	}
	return t == model.ShortAnswer && s.GradeShortAnswer
}

// scoreObjective compares an answer to the reference under exact,
// case-sensitive equality. Full points or nothing.
func scoreObjective(q *model.Question, answer string) (bool, int) {
	if q.CorrectAnswer == nil {
		return false, 0
	}
	if answer == *q.CorrectAnswer {
		return true, q.Points
	}
	return false, 0
}

// ensureAnswerRows appends an empty row for any question the submission
// has no answer for, so grading marks exactly one row per question. A
// submit racing a question-add can leave such a gap.
func ensureAnswerRows(sub *model.Submission, questions []model.Question) {
	have := make(map[uint]bool, len(sub.Answers))
	for _, a := range sub.Answers {
		have[a.QuestionID] = true
	}
	for _, q := range questions {
		if !have[q.ID] {
			sub.Answers = append(sub.Answers, model.SubmissionAnswer{
				SubmissionID: sub.ID,
				QuestionID:   q.ID,
			})
		}
	}
}

func percentageOf(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return 100 * float64(score) / float64(maxScore)
}

// GradeSubmission runs one grading pass. It is idempotent: an already
// graded submission is a no-op, and the persistence layer guards against
// concurrent passes double-writing.
func (s *GradingService) GradeSubmission(ctx context.Context, submissionID uint) error {
	sub, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("grade submission %d: not found", submissionID)
		}
		return err
	}
	if sub.IsGraded {
		return nil
	}

	quiz, err := s.Quizzes.FindByID(sub.QuizID)
	if err != nil {
		return err
	}
	if !quiz.IsGraded {
		// Ungraded quizzes stay ungraded by design; not a failure.
		return nil
	}

	questions, err := s.Questions.ListByQuiz(quiz.ID)
	if err != nil {
		return err
	}

	// Extend the answer set before taking any pointers into it: appending
	// after the map is built would reallocate the backing array and strand
	// every mark written through the stale pointers.
	ensureAnswerRows(sub, questions)
	byQuestion := make(map[uint]*model.SubmissionAnswer, len(sub.Answers))
	for i := range sub.Answers {
		byQuestion[sub.Answers[i].QuestionID] = &sub.Answers[i]
	}

	totalMax := 0
	objectiveScore := 0
	var subjectiveQuestions []ScoreQuestion
	var subjectiveAnswers []model.AnswerInput

	for i := range questions {
		q := &questions[i]
		totalMax += q.Points
		answer := byQuestion[q.ID]

		if s.subjective(q.Type) {
			correct := ""
			if q.CorrectAnswer != nil {
				correct = *q.CorrectAnswer
			}
			subjectiveQuestions = append(subjectiveQuestions, ScoreQuestion{
				ID:            q.ID,
				Prompt:        q.Prompt,
				Type:          q.Type,
				CorrectAnswer: correct,
				Points:        q.Points,
			})
			subjectiveAnswers = append(subjectiveAnswers, model.AnswerInput{
				QuestionID: q.ID,
				AnswerText: answer.AnswerText,
			})
			continue
		}

		correct, points := scoreObjective(q, answer.AnswerText)
		answer.IsCorrect = correct
		answer.PointsAwarded = points
		objectiveScore += points
	}

	score := objectiveScore
	feedback := ""

	if len(subjectiveQuestions) > 0 {
		result, err := s.Scorer.ScoreSubmission(ctx, ScoreRequest{
			QuizTitle:      quiz.Title,
			Questions:      subjectiveQuestions,
			StudentAnswers: subjectiveAnswers,
		})
		if err != nil {
			// Partial-failure policy: no fabricated score, submission stays
			// ungraded and retryable. The student already got their submit
			// acknowledgment.
			if recErr := s.Submissions.RecordGradingError(sub.ID, err.Error()); recErr != nil {
				logger.Log.Error("failed to record grading error",
					zap.Uint("submissionId", sub.ID), zap.Error(recErr))
			}
			return fmt.Errorf("score submission %d of quiz %d: %w", sub.ID, quiz.ID, err)
		}

		score += result.Score
		feedback = result.Feedback
		for _, g := range result.QuestionGrades {
			if answer := byQuestion[g.QuestionID]; answer != nil {
				answer.IsCorrect = g.IsCorrect
				answer.PointsAwarded = g.Points
			}
		}
	}

	now := time.Now()
	sub.Score = &score
	sub.MaxScore = totalMax
	sub.Percentage = percentageOf(score, totalMax)
	sub.Feedback = feedback
	sub.IsGraded = true
	sub.GradedAt = &now

	record := &model.GradeRecord{
		StudentID:   sub.StudentID,
		CourseID:    quiz.CourseID,
		QuizID:      &quiz.ID,
		Score:       score,
		MaxScore:    totalMax,
		Percentage:  sub.Percentage,
		LetterGrade: LetterGrade(sub.Percentage),
		Category:    model.CategoryQuiz,
	}

	if err := s.Submissions.SaveGradingResult(sub, sub.Answers, record); err != nil {
		return err
	}

	logger.Log.Info("submission graded",
		zap.Uint("submissionId", sub.ID),
		zap.Uint("quizId", quiz.ID),
		zap.Int("score", score),
		zap.Int("maxScore", totalMax))
	return nil
}
