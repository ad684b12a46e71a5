package repository

import (
	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(q *model.Quiz) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuizRepository) ListByCourse(courseID uint, publishedOnly bool) ([]model.Quiz, error) {
	var qs []model.Quiz
	query := r.DB.Model(&model.Quiz{}).Where("course_id = ?", courseID)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	err := query.Order("created_at desc").Find(&qs).Error
	return qs, err
}

// CreateWithQuestions persists a quiz and its full question set in one
// transaction, so a failed insert never strands a partial draft.
func (r *QuizRepository) CreateWithQuestions(quiz *model.Quiz, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return recomputeTotalPoints(tx, quiz.ID)
	})
}

func (r *QuizRepository) Update(q *model.Quiz) error {
	return r.DB.Save(q).Error
}

// DeleteCascade removes the quiz together with its questions, submissions
// and submission answers. The spec requires a hard cascade, so rows are
// deleted unscoped.
func (r *QuizRepository) DeleteCascade(quizID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		subIDs := tx.Model(&model.Submission{}).
			Where("quiz_id = ?", quizID).Select("id")
		if err := tx.Unscoped().
			Where("submission_id IN (?)", subIDs).
			Delete(&model.SubmissionAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("quiz_id = ?", quizID).
			Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("quiz_id = ?", quizID).
			Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Quiz{}, quizID).Error
	})
}

func (r *QuizRepository) CountSubmissions(quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}
