package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreObjective(t *testing.T) {
	answer := "4"
	q := &model.Question{Type: model.ShortAnswer, CorrectAnswer: &answer, Points: 3}

	t.Run("exact match earns full points", func(t *testing.T) {
		correct, points := scoreObjective(q, "4")
		assert.True(t, correct)
		assert.Equal(t, 3, points)
	})

	t.Run("comparison is case sensitive", func(t *testing.T) {
		tf := "True"
		q := &model.Question{Type: model.TrueFalse, CorrectAnswer: &tf, Points: 1}
		correct, points := scoreObjective(q, "true")
		assert.False(t, correct)
		assert.Equal(t, 0, points)
	})

	t.Run("wrong answer earns nothing", func(t *testing.T) {
		correct, points := scoreObjective(q, "5")
		assert.False(t, correct)
		assert.Equal(t, 0, points)
	})

	t.Run("empty answer earns nothing", func(t *testing.T) {
		correct, points := scoreObjective(q, "")
		assert.False(t, correct)
		assert.Equal(t, 0, points)
	})

	t.Run("missing reference answer earns nothing", func(t *testing.T) {
		q := &model.Question{Type: model.ShortAnswer, Points: 3}
		correct, points := scoreObjective(q, "anything")
		assert.False(t, correct)
		assert.Equal(t, 0, points)
	})
}

func TestEnsureAnswerRows(t *testing.T) {
	q1 := model.Question{}
	q1.ID = 1
	q2 := model.Question{}
	q2.ID = 2
	q3 := model.Question{}
	q3.ID = 3
	questions := []model.Question{q1, q2, q3}

	t.Run("missing rows appended with empty answers", func(t *testing.T) {
		sub := &model.Submission{}
		sub.ID = 42
		sub.Answers = []model.SubmissionAnswer{{QuestionID: 2, AnswerText: "kept"}}

		ensureAnswerRows(sub, questions)

		require.Len(t, sub.Answers, 3)
		assert.Equal(t, "kept", sub.Answers[0].AnswerText)
		for _, a := range sub.Answers[1:] {
			assert.Equal(t, uint(42), a.SubmissionID)
			assert.Equal(t, "", a.AnswerText)
		}
	})

	t.Run("complete set untouched", func(t *testing.T) {
		sub := &model.Submission{}
		sub.Answers = []model.SubmissionAnswer{
			{QuestionID: 1}, {QuestionID: 2}, {QuestionID: 3},
		}
		ensureAnswerRows(sub, questions)
		assert.Len(t, sub.Answers, 3)
	})

	t.Run("marks written through the pointer map reach the slice", func(t *testing.T) {
		// The answer slice arrives from the database at exact capacity; if
		// the set were extended after taking pointers, the append would
		// reallocate and the marks would land in the abandoned array.
		loaded := make([]model.SubmissionAnswer, 2, 2)
		loaded[0] = model.SubmissionAnswer{QuestionID: 1, AnswerText: "a"}
		loaded[1] = model.SubmissionAnswer{QuestionID: 2, AnswerText: "b"}
		loaded[0].ID = 10
		loaded[1].ID = 11
		sub := &model.Submission{Answers: loaded}

		ensureAnswerRows(sub, questions)
		byQuestion := make(map[uint]*model.SubmissionAnswer, len(sub.Answers))
		for i := range sub.Answers {
			byQuestion[sub.Answers[i].QuestionID] = &sub.Answers[i]
		}

		byQuestion[1].IsCorrect = true
		byQuestion[1].PointsAwarded = 3
		byQuestion[3].PointsAwarded = 1

		require.Len(t, sub.Answers, 3)
		assert.True(t, sub.Answers[0].IsCorrect)
		assert.Equal(t, 3, sub.Answers[0].PointsAwarded)
		assert.Equal(t, 1, sub.Answers[2].PointsAwarded)
	})
}

func TestObjectiveGradingMath(t *testing.T) {
	// One multiple choice question worth 5 points, answered correctly:
	// full marks, 100%, letter A.
	correct := "B"
	q := &model.Question{Type: model.MultipleChoice, Options: model.StringList{"A", "B", "C", "D"},
		CorrectAnswer: &correct, Points: 5}

	isCorrect, points := scoreObjective(q, "B")
	assert.True(t, isCorrect)
	assert.Equal(t, 5, points)

	pct := percentageOf(points, q.Points)
	assert.Equal(t, 100.0, pct)
	assert.Equal(t, "A", LetterGrade(pct))
}

func TestPercentageOf(t *testing.T) {
	assert.Equal(t, 0.0, percentageOf(5, 0))
	assert.Equal(t, 0.0, percentageOf(0, 10))
	assert.Equal(t, 100.0, percentageOf(10, 10))
	assert.InDelta(t, 66.666, percentageOf(2, 3), 0.001)
}

func TestSubjectiveRouting(t *testing.T) {
	exact := &GradingService{GradeShortAnswer: false}
	assert.True(t, exact.subjective(model.Essay))
	assert.False(t, exact.subjective(model.ShortAnswer))
	assert.False(t, exact.subjective(model.MultipleChoice))
	assert.False(t, exact.subjective(model.TrueFalse))
	assert.False(t, exact.subjective(model.FillInBlank))

	delegated := &GradingService{GradeShortAnswer: true}
	assert.True(t, delegated.subjective(model.Essay))
	assert.True(t, delegated.subjective(model.ShortAnswer))
	assert.False(t, delegated.subjective(model.MultipleChoice))
}

type fakeScorer struct {
	result *ScoreResult
	err    error
	calls  int
}

func (f *fakeScorer) ScoreSubmission(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// TestGradeSubmissionEndToEnd runs the full grading pass against MySQL:
// mixed objective and essay questions, scorer delegation, combined score
// persistence, and idempotence of a second pass.
//
// Requires a reachable database; enable with LEARNHUB_INTEGRATION=1.
func TestGradeSubmissionEndToEnd(t *testing.T) {
	db := integrationDB(t)

	quizzes := repository.NewQuizRepository(db)
	questions := repository.NewQuestionRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	grades := repository.NewGradeRepository(db)

	course := &model.Course{Title: fmt.Sprintf("grading-%d", time.Now().UnixNano()), InstructorID: 1}
	require.NoError(t, db.Create(course).Error)

	now := time.Now()
	quiz := &model.Quiz{
		CourseID:    course.ID,
		Title:       "mixed",
		MaxAttempts: 1,
		IsGraded:    true,
		IsPublished: true,
		PublishedAt: &now,
	}
	require.NoError(t, db.Create(quiz).Error)

	mcAnswer := "4"
	mc := &model.Question{QuizID: quiz.ID, Type: model.MultipleChoice, Prompt: "2+2?",
		Options: model.StringList{"3", "4"}, CorrectAnswer: &mcAnswer, Points: 2}
	require.NoError(t, questions.Create(mc))
	essay := &model.Question{QuizID: quiz.ID, Type: model.Essay, Prompt: "Explain recursion.", Points: 5}
	require.NoError(t, questions.Create(essay))

	studentID := uint(time.Now().UnixNano() % 1_000_000)
	sub := &model.Submission{QuizID: quiz.ID, StudentID: studentID, AttemptOrdinal: 1, SubmittedAt: now, MaxScore: 7}
	rows := []model.SubmissionAnswer{
		{QuestionID: mc.ID, AnswerText: "4"},
		{QuestionID: essay.ID, AnswerText: "A function that calls itself."},
	}
	require.NoError(t, submissions.CreateWithAnswers(sub, rows))

	scorer := &fakeScorer{result: &ScoreResult{
		Score:    4,
		MaxScore: 5,
		Feedback: "solid",
		QuestionGrades: []QuestionGrade{
			{QuestionID: essay.ID, IsCorrect: true, Points: 4},
		},
	}}
	grader := NewGradingService(submissions, quizzes, questions, scorer, false)

	require.NoError(t, grader.GradeSubmission(context.Background(), sub.ID))

	graded, err := submissions.FindByID(sub.ID)
	require.NoError(t, err)
	assert.True(t, graded.IsGraded)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 6, *graded.Score)
	assert.Equal(t, 7, graded.MaxScore)
	assert.InDelta(t, 100*6.0/7.0, graded.Percentage, 0.001)
	assert.Equal(t, "solid", graded.Feedback)
	require.NotNil(t, graded.GradedAt)

	records, total, err := grades.List(repository.GradeFilter{StudentID: studentID, QuizID: quiz.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, model.CategoryQuiz, records[0].Category)
	assert.Equal(t, "B", records[0].LetterGrade)

	// A second pass must be a no-op: no new record, scorer untouched.
	callsBefore := scorer.calls
	require.NoError(t, grader.GradeSubmission(context.Background(), sub.ID))
	assert.Equal(t, callsBefore, scorer.calls)

	_, total, err = grades.List(repository.GradeFilter{StudentID: studentID, QuizID: quiz.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// TestGradeSubmissionBackfillsMissingAnswerRow covers a submit that raced
// a question-add: the submission lands without a row for the new question.
// Grading must mark every stored row and insert the missing one, so the
// one-row-per-question shape holds afterwards.
//
// Requires a reachable database; enable with LEARNHUB_INTEGRATION=1.
func TestGradeSubmissionBackfillsMissingAnswerRow(t *testing.T) {
	db := integrationDB(t)

	quizzes := repository.NewQuizRepository(db)
	questions := repository.NewQuestionRepository(db)
	submissions := repository.NewSubmissionRepository(db)

	course := &model.Course{Title: fmt.Sprintf("backfill-%d", time.Now().UnixNano()), InstructorID: 1}
	require.NoError(t, db.Create(course).Error)

	now := time.Now()
	quiz := &model.Quiz{CourseID: course.ID, Title: "raced", MaxAttempts: 1,
		IsGraded: true, IsPublished: true, PublishedAt: &now}
	require.NoError(t, db.Create(quiz).Error)

	a1 := "4"
	q1 := &model.Question{QuizID: quiz.ID, Type: model.ShortAnswer, Prompt: "2+2?", CorrectAnswer: &a1, Points: 2}
	require.NoError(t, questions.Create(q1))

	// Submission carries a row for q1 only.
	sub := &model.Submission{QuizID: quiz.ID, StudentID: uint(time.Now().UnixNano() % 1_000_000),
		AttemptOrdinal: 1, SubmittedAt: now, MaxScore: 2}
	require.NoError(t, submissions.CreateWithAnswers(sub, []model.SubmissionAnswer{
		{QuestionID: q1.ID, AnswerText: "4"},
	}))

	// The question added after the submission landed.
	a2 := "9"
	q2 := &model.Question{QuizID: quiz.ID, Type: model.ShortAnswer, Prompt: "3*3?", CorrectAnswer: &a2, Points: 3}
	require.NoError(t, questions.Create(q2))

	grader := NewGradingService(submissions, quizzes, questions, &fakeScorer{}, false)
	require.NoError(t, grader.GradeSubmission(context.Background(), sub.ID))

	graded, err := submissions.FindByID(sub.ID)
	require.NoError(t, err)
	assert.True(t, graded.IsGraded)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 2, *graded.Score)
	assert.Equal(t, 5, graded.MaxScore)

	require.Len(t, graded.Answers, 2)
	byQuestion := map[uint]model.SubmissionAnswer{}
	for _, a := range graded.Answers {
		byQuestion[a.QuestionID] = a
	}
	assert.True(t, byQuestion[q1.ID].IsCorrect)
	assert.Equal(t, 2, byQuestion[q1.ID].PointsAwarded)
	assert.False(t, byQuestion[q2.ID].IsCorrect)
	assert.Equal(t, 0, byQuestion[q2.ID].PointsAwarded)
	assert.Equal(t, "", byQuestion[q2.ID].AnswerText)
}

// TestGradeSubmissionScorerFailure asserts the partial-failure policy:
// a scorer error leaves the submission ungraded with the error recorded.
//
// Requires a reachable database; enable with LEARNHUB_INTEGRATION=1.
func TestGradeSubmissionScorerFailure(t *testing.T) {
	db := integrationDB(t)

	quizzes := repository.NewQuizRepository(db)
	questions := repository.NewQuestionRepository(db)
	submissions := repository.NewSubmissionRepository(db)

	course := &model.Course{Title: fmt.Sprintf("scorer-down-%d", time.Now().UnixNano()), InstructorID: 1}
	require.NoError(t, db.Create(course).Error)

	now := time.Now()
	quiz := &model.Quiz{CourseID: course.ID, Title: "essay only", MaxAttempts: 1,
		IsGraded: true, IsPublished: true, PublishedAt: &now}
	require.NoError(t, db.Create(quiz).Error)

	essay := &model.Question{QuizID: quiz.ID, Type: model.Essay, Prompt: "Explain channels.", Points: 5}
	require.NoError(t, questions.Create(essay))

	sub := &model.Submission{QuizID: quiz.ID, StudentID: uint(time.Now().UnixNano() % 1_000_000),
		AttemptOrdinal: 1, SubmittedAt: now, MaxScore: 5}
	require.NoError(t, submissions.CreateWithAnswers(sub, []model.SubmissionAnswer{
		{QuestionID: essay.ID, AnswerText: "They synchronize goroutines."},
	}))

	scorer := &fakeScorer{err: errors.New("scorer timeout")}
	grader := NewGradingService(submissions, quizzes, questions, scorer, false)

	err := grader.GradeSubmission(context.Background(), sub.ID)
	require.Error(t, err)

	after, err := submissions.FindByID(sub.ID)
	require.NoError(t, err)
	assert.False(t, after.IsGraded)
	assert.Nil(t, after.Score)
	assert.Contains(t, after.GradingError, "scorer timeout")
}
