package repository

import (
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type GradeRepository struct {
	DB *gorm.DB
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{DB: db}
}

func (r *GradeRepository) Create(g *model.GradeRecord) error {
	return r.DB.Create(g).Error
}

// GradeFilter narrows ListGrades; zero values mean "no filter".
type GradeFilter struct {
	StudentID    uint
	CourseID     uint
	CourseIDs    []uint
	QuizID       uint
	AssignmentID uint
	Page         int
	Limit        int
}

func (r *GradeRepository) List(f GradeFilter) ([]model.GradeRecord, int64, error) {
	var gs []model.GradeRecord
	var total int64

	query := r.DB.Model(&model.GradeRecord{})
	if f.StudentID > 0 {
		query = query.Where("student_id = ?", f.StudentID)
	}
	if f.CourseID > 0 {
		query = query.Where("course_id = ?", f.CourseID)
	}
	if f.CourseIDs != nil {
		query = query.Where("course_id IN ?", f.CourseIDs)
	}
	if f.QuizID > 0 {
		query = query.Where("quiz_id = ?", f.QuizID)
	}
	if f.AssignmentID > 0 {
		query = query.Where("assignment_id = ?", f.AssignmentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	offset := (f.Page - 1) * f.Limit
	err := query.Order("created_at desc").Offset(offset).Limit(f.Limit).Find(&gs).Error
	return gs, total, err
}

func (r *GradeRepository) ListCourseIDsByInstructor(instructorID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Course{}).
		Where("instructor_id = ?", instructorID).
		Pluck("id", &ids).Error
	return ids, err
}
