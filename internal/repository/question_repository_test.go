package repository

import (
	"fmt"
	"testing"
	"time"

	"learnhub_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestListByQuizOrdering asserts the presentation order students and the
// grading engine see: ascending order value, creation order breaking ties.
//
// Requires a reachable database; enable with LEARNHUB_INTEGRATION=1.
func TestListByQuizOrdering(t *testing.T) {
	db := integrationDB(t)

	quizzes := NewQuizRepository(db)
	questions := NewQuestionRepository(db)

	course := &model.Course{Title: fmt.Sprintf("ordering-%d", time.Now().UnixNano()), InstructorID: 1}
	require.NoError(t, db.Create(course).Error)

	quiz := &model.Quiz{CourseID: course.ID, Title: "ordered", MaxAttempts: 1, IsGraded: true}
	require.NoError(t, quizzes.Create(quiz))

	last := &model.Question{QuizID: quiz.ID, Type: model.Essay, Prompt: "last", Points: 1, Order: 2}
	require.NoError(t, questions.Create(last))
	firstTie := &model.Question{QuizID: quiz.ID, Type: model.Essay, Prompt: "first of tie", Points: 1, Order: 1}
	require.NoError(t, questions.Create(firstTie))
	secondTie := &model.Question{QuizID: quiz.ID, Type: model.Essay, Prompt: "second of tie", Points: 1, Order: 1}
	require.NoError(t, questions.Create(secondTie))

	list, err := questions.ListByQuiz(quiz.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, firstTie.ID, list[0].ID, "lowest order value first, ties by creation")
	assert.Equal(t, secondTie.ID, list[1].ID)
	assert.Equal(t, last.ID, list[2].ID)
}
