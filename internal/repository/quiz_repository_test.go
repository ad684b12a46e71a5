package repository

import (
	"fmt"
	"os"
	"testing"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

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

// TestCreateWithQuestions asserts the generated-draft persist is one unit:
// quiz, questions and the cached point total all land together.
//
// Requires a reachable database; enable with LEARNHUB_INTEGRATION=1.
func TestCreateWithQuestions(t *testing.T) {
	db := integrationDB(t)

	quizzes := NewQuizRepository(db)
	questions := NewQuestionRepository(db)

	course := &model.Course{Title: fmt.Sprintf("draft-%d", time.Now().UnixNano()), InstructorID: 1}
	require.NoError(t, db.Create(course).Error)

	answer := "0"
	quiz := &model.Quiz{CourseID: course.ID, Title: "generated", MaxAttempts: 1, IsGraded: true}
	qs := []model.Question{
		{Type: model.MultipleChoice, Prompt: "Zero value of int?",
			Options: model.StringList{"0", "nil"}, CorrectAnswer: &answer, Points: 2, Order: 1},
		{Type: model.Essay, Prompt: "Explain goroutines.", Points: 5, Order: 2},
	}
	require.NoError(t, quizzes.CreateWithQuestions(quiz, qs))

	stored, err := quizzes.FindByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.TotalPoints)
	assert.False(t, stored.IsPublished)

	list, err := questions.ListByQuiz(quiz.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, q := range list {
		assert.Equal(t, quiz.ID, q.QuizID)
	}
}
