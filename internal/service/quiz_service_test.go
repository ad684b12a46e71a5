package service

import (
	"fmt"
	"testing"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetQuizEnrollmentGate asserts a published quiz is only readable by
// students enrolled in its course, matching the list/question/submission
// paths.
//
// Requires a reachable database; enable with LEARNHUB_INTEGRATION=1.
func TestGetQuizEnrollmentGate(t *testing.T) {
	db := integrationDB(t)

	courses := repository.NewCourseRepository(db)
	quizzes := repository.NewQuizRepository(db)
	questions := repository.NewQuestionRepository(db)
	svc := NewQuizService(quizzes, questions, courses, nil)

	course := &model.Course{Title: fmt.Sprintf("visibility-%d", time.Now().UnixNano()), InstructorID: 1}
	require.NoError(t, db.Create(course).Error)

	now := time.Now()
	quiz := &model.Quiz{CourseID: course.ID, Title: "gated", MaxAttempts: 1,
		IsGraded: true, IsPublished: true, PublishedAt: &now}
	require.NoError(t, db.Create(quiz).Error)

	outsider := model.Actor{ID: uint(time.Now().UnixNano() % 1_000_000), Role: model.Student}
	_, err := svc.GetQuiz(outsider, quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	require.NoError(t, db.Create(&model.Enrollment{CourseID: course.ID, StudentID: outsider.ID, Status: "active"}).Error)
	got, err := svc.GetQuiz(outsider, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, got.ID)

	draft := &model.Quiz{CourseID: course.ID, Title: "draft", MaxAttempts: 1, IsGraded: true}
	require.NoError(t, db.Create(draft).Error)
	_, err = svc.GetQuiz(outsider, draft.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotAvailable)
}
