package repository

import (
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		return recomputeTotalPoints(tx, q.QuizID)
	})
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

// ListByQuiz returns questions in presentation order: explicit order
// ascending, ties broken by creation order. This is the ordering contract
// both students and the grading engine rely on.
func (r *QuestionRepository) ListByQuiz(quizID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("`order` asc, created_at asc, id asc").
		Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(q).Error; err != nil {
			return err
		}
		return recomputeTotalPoints(tx, q.QuizID)
	})
}

func (r *QuestionRepository) Delete(q *model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&model.Question{}, q.ID).Error; err != nil {
			return err
		}
		return recomputeTotalPoints(tx, q.QuizID)
	})
}

func (r *QuestionRepository) CountByQuiz(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

func recomputeTotalPoints(tx *gorm.DB, quizID uint) error {
	var total int64
	err := tx.Model(&model.Question{}).
		Where("quiz_id = ?", quizID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}
	return tx.Model(&model.Quiz{}).Where("id = ?", quizID).
		Update("total_points", total).Error
}
