package service

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func publishedQuiz(maxAttempts int, dueAt *time.Time) *model.Quiz {
	return &model.Quiz{
		IsPublished: true,
		MaxAttempts: maxAttempts,
		DueAt:       dueAt,
	}
}

func TestAdmitAttempt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("unpublished quiz rejected first", func(t *testing.T) {
		quiz := &model.Quiz{IsPublished: false, MaxAttempts: 1, DueAt: &past}
		err := admitAttempt(quiz, now, 5)
		assert.ErrorIs(t, err, util.ErrQuizNotAvailable)
	})

	t.Run("deadline passed", func(t *testing.T) {
		err := admitAttempt(publishedQuiz(3, &past), now, 0)
		assert.ErrorIs(t, err, util.ErrDeadlinePassed)
	})

	t.Run("deadline beats attempt count", func(t *testing.T) {
		// Both rejections apply; the deadline check runs first.
		err := admitAttempt(publishedQuiz(1, &past), now, 1)
		assert.ErrorIs(t, err, util.ErrDeadlinePassed)
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		err := admitAttempt(publishedQuiz(2, &future), now, 2)
		assert.ErrorIs(t, err, util.ErrAttemptsExceeded)
	})

	t.Run("admitted with attempts remaining", func(t *testing.T) {
		assert.NoError(t, admitAttempt(publishedQuiz(2, &future), now, 1))
	})

	t.Run("no deadline means always open", func(t *testing.T) {
		assert.NoError(t, admitAttempt(publishedQuiz(1, nil), now, 0))
	})
}

func TestBuildAnswerRows(t *testing.T) {
	q1 := model.Question{}
	q1.ID = 10
	q2 := model.Question{}
	q2.ID = 20
	q3 := model.Question{}
	q3.ID = 30
	questions := []model.Question{q1, q2, q3}

	t.Run("one row per question in question order", func(t *testing.T) {
		rows := buildAnswerRows(questions, []model.AnswerInput{
			{QuestionID: 30, AnswerText: "c"},
			{QuestionID: 10, AnswerText: "a"},
		})
		require.Len(t, rows, 3)
		assert.Equal(t, uint(10), rows[0].QuestionID)
		assert.Equal(t, "a", rows[0].AnswerText)
		assert.Equal(t, uint(20), rows[1].QuestionID)
		assert.Equal(t, "", rows[1].AnswerText)
		assert.Equal(t, uint(30), rows[2].QuestionID)
		assert.Equal(t, "c", rows[2].AnswerText)
	})

	t.Run("unknown question ids dropped", func(t *testing.T) {
		rows := buildAnswerRows(questions, []model.AnswerInput{
			{QuestionID: 999, AnswerText: "stray"},
		})
		require.Len(t, rows, 3)
		for _, r := range rows {
			assert.Equal(t, "", r.AnswerText)
		}
	})

	t.Run("empty question set", func(t *testing.T) {
		rows := buildAnswerRows(nil, []model.AnswerInput{{QuestionID: 1, AnswerText: "x"}})
		assert.Len(t, rows, 0)
	})
}

// TestConcurrentAdmission drives real concurrent submits against MySQL
// and asserts the unique index serializes admission: exactly MaxAttempts
// submissions survive, with ordinals 1..MaxAttempts.
//
// Requires a reachable database; enable with LEARNHUB_INTEGRATION=1.
func TestConcurrentAdmission(t *testing.T) {
	db := integrationDB(t)

	courses := repository.NewCourseRepository(db)
	quizzes := repository.NewQuizRepository(db)
	questions := repository.NewQuestionRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	svc := NewSubmissionService(submissions, quizzes, questions, courses)

	course := &model.Course{Title: fmt.Sprintf("concurrency-%d", time.Now().UnixNano()), InstructorID: 1}
	require.NoError(t, db.Create(course).Error)

	studentID := uint(time.Now().UnixNano() % 1_000_000)
	require.NoError(t, db.Create(&model.Enrollment{CourseID: course.ID, StudentID: studentID, Status: "active"}).Error)

	const maxAttempts = 2
	now := time.Now()
	quiz := &model.Quiz{
		CourseID:    course.ID,
		Title:       "race",
		MaxAttempts: maxAttempts,
		IsGraded:    false,
		IsPublished: true,
		PublishedAt: &now,
	}
	require.NoError(t, db.Create(quiz).Error)

	answer := "4"
	q := &model.Question{QuizID: quiz.ID, Type: model.ShortAnswer, Prompt: "2+2?", CorrectAnswer: &answer, Points: 1}
	require.NoError(t, questions.Create(q))

	actor := model.Actor{ID: studentID, Role: model.Student}
	req := SubmitRequest{Answers: []model.AnswerInput{{QuestionID: q.ID, AnswerText: "4"}}}

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(actor, quiz.ID, req)
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		if err != util.ErrAttemptsExceeded && err != util.ErrAttemptConflict {
			t.Fatalf("unexpected rejection: %v", err)
		}
	}
	assert.LessOrEqual(t, admitted, maxAttempts)

	subs, err := submissions.ListByQuizAndStudent(quiz.ID, studentID)
	require.NoError(t, err)
	require.Equal(t, admitted, len(subs))

	seen := map[int]bool{}
	for _, s := range subs {
		assert.False(t, seen[s.AttemptOrdinal], "duplicate ordinal %d", s.AttemptOrdinal)
		seen[s.AttemptOrdinal] = true
		assert.GreaterOrEqual(t, s.AttemptOrdinal, 1)
		assert.LessOrEqual(t, s.AttemptOrdinal, maxAttempts)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// integrationDB opens the test database, skipping unless integration
// tests are enabled.
func integrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("LEARNHUB_INTEGRATION") != "1" {
		t.Skip("set LEARNHUB_INTEGRATION=1 to run database integration tests")
	}

	cfg := &config.DatabaseConfig{
		Host:      envOr("LEARNHUB_DATABASE_HOST", "localhost"),
		Port:      3306,
		User:      envOr("LEARNHUB_DATABASE_USER", "root"),
		Password:  envOr("LEARNHUB_DATABASE_PASSWORD", "root"),
		DBName:    envOr("LEARNHUB_DATABASE_NAME", "learnhub_test"),
		Charset:   "utf8mb4",
		ParseTime: true,
	}
	db, err := database.InitDB(cfg)
	require.NoError(t, err)
	return db
}
