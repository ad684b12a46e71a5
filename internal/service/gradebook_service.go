package service

import (
	"errors"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// GradebookService is the append-only grade history: automatic quiz
// records land here through the grading engine, manual entries through
// RecordGrade.
type GradebookService struct {
	Grades  *repository.GradeRepository
	Courses *repository.CourseRepository
}

func NewGradebookService(grades *repository.GradeRepository, courses *repository.CourseRepository) *GradebookService {
	return &GradebookService{Grades: grades, Courses: courses}
}

// LetterGrade maps a percentage to the standard ten-point letter scale.
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

type GradeRequest struct {
	StudentID    uint                `json:"studentId" binding:"required"`
	CourseID     uint                `json:"courseId" binding:"required"`
	QuizID       *uint               `json:"quizId"`
	AssignmentID *uint               `json:"assignmentId"`
	Score        int                 `json:"score"`
	MaxScore     int                 `json:"maxScore" binding:"required"`
	Category     model.GradeCategory `json:"category"`
}

// RecordGrade appends a manual grade entry. Corrections are new entries,
// never edits of old ones.
func (s *GradebookService) RecordGrade(actor model.Actor, req GradeRequest) (*model.GradeRecord, error) {
	course, err := s.Courses.FindByID(req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if err := requireCourseOwner(actor, course); err != nil {
		return nil, err
	}

	if req.MaxScore <= 0 {
		return nil, util.Validationf("maxScore must be positive")
	}
	if req.Score < 0 || req.Score > req.MaxScore {
		return nil, util.Validationf("score must be between 0 and maxScore")
	}

	category := req.Category
	if category == "" {
		category = model.CategoryManual
	}
	if category != model.CategoryAssignment && category != model.CategoryManual {
		return nil, util.Validationf("category must be assignment or manual")
	}

	enrolled, err := s.Courses.IsEnrolled(req.StudentID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	percentage := percentageOf(req.Score, req.MaxScore)
	record := &model.GradeRecord{
		StudentID:    req.StudentID,
		CourseID:     req.CourseID,
		QuizID:       req.QuizID,
		AssignmentID: req.AssignmentID,
		Score:        req.Score,
		MaxScore:     req.MaxScore,
		Percentage:   percentage,
		LetterGrade:  LetterGrade(percentage),
		Category:     category,
	}
	if err := s.Grades.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListGrades scopes the history to what the caller may see: students get
// their own records only, instructors only records of courses they own.
func (s *GradebookService) ListGrades(actor model.Actor, filter repository.GradeFilter) ([]model.GradeRecord, int64, error) {
	if actor.IsInstructor() {
		if actor.Role != model.Admin {
			owned, err := s.Grades.ListCourseIDsByInstructor(actor.ID)
			if err != nil {
				return nil, 0, err
			}
			if filter.CourseID > 0 {
				found := false
				for _, id := range owned {
					if id == filter.CourseID {
						found = true
						break
					}
				}
				if !found {
					return nil, 0, util.ErrPermissionDenied
				}
			} else {
				if len(owned) == 0 {
					return []model.GradeRecord{}, 0, nil
				}
				filter.CourseIDs = owned
			}
		}
		return s.Grades.List(filter)
	}

	filter.StudentID = actor.ID
	return s.Grades.List(filter)
}
