package service

import (
	"fmt"
	"testing"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, "A"},
		{90, "A"},
		{89.99, "B"},
		{80, "B"},
		{79.5, "C"},
		{70, "C"},
		{69, "D"},
		{60, "D"},
		{59.99, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LetterGrade(tt.percentage), "percentage %.2f", tt.percentage)
	}
}

// TestRecordGradeWithQuizReference covers manual entries that point at a
// quiz rather than an assignment, e.g. an instructor override of a quiz
// score recorded as a new entry.
//
// Requires a reachable database; enable with LEARNHUB_INTEGRATION=1.
func TestRecordGradeWithQuizReference(t *testing.T) {
	db := integrationDB(t)

	courses := repository.NewCourseRepository(db)
	grades := repository.NewGradeRepository(db)
	svc := NewGradebookService(grades, courses)

	instructor := model.Actor{ID: 1, Role: model.Instructor}
	course := &model.Course{Title: fmt.Sprintf("manual-%d", time.Now().UnixNano()), InstructorID: instructor.ID}
	require.NoError(t, db.Create(course).Error)

	studentID := uint(time.Now().UnixNano() % 1_000_000)
	require.NoError(t, db.Create(&model.Enrollment{CourseID: course.ID, StudentID: studentID, Status: "active"}).Error)

	quiz := &model.Quiz{CourseID: course.ID, Title: "override target", MaxAttempts: 1, IsGraded: true}
	require.NoError(t, db.Create(quiz).Error)

	record, err := svc.RecordGrade(instructor, GradeRequest{
		StudentID: studentID,
		CourseID:  course.ID,
		QuizID:    &quiz.ID,
		Score:     9,
		MaxScore:  10,
	})
	require.NoError(t, err)
	require.NotNil(t, record.QuizID)
	assert.Equal(t, quiz.ID, *record.QuizID)
	assert.Equal(t, model.CategoryManual, record.Category)
	assert.Equal(t, "A", record.LetterGrade)

	listed, total, err := grades.List(repository.GradeFilter{StudentID: studentID, QuizID: quiz.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, model.CategoryManual, listed[0].Category)
}

func TestLetterGradeMonotonic(t *testing.T) {
	// A higher percentage must never map to a worse letter.
	rank := map[string]int{"A": 5, "B": 4, "C": 3, "D": 2, "F": 1}
	prev := LetterGrade(0)
	for p := 0.5; p <= 100; p += 0.5 {
		cur := LetterGrade(p)
		assert.GreaterOrEqual(t, rank[cur], rank[prev], "at %.1f%%", p)
		prev = cur
	}
}
