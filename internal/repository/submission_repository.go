package repository

import (
	"time"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) CountByQuizAndStudent(quizID, studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	return count, err
}

// CreateWithAnswers inserts the submission and its answer rows in one
// transaction. A duplicate (quiz, student, ordinal) insert surfaces as
// gorm.ErrDuplicatedKey; the caller owns the retry policy.
func (r *SubmissionRepository) CreateWithAnswers(sub *model.Submission, answers []model.SubmissionAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].SubmissionID = sub.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		sub.Answers = answers
		return nil
	})
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Preload("Answers").First(&s, id).Error
	return &s, err
}

func (r *SubmissionRepository) ListByQuiz(quizID uint) ([]model.Submission, error) {
	var ss []model.Submission
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("submitted_at desc").Find(&ss).Error
	return ss, err
}

func (r *SubmissionRepository) ListByQuizAndStudent(quizID, studentID uint) ([]model.Submission, error) {
	var ss []model.Submission
	err := r.DB.Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("attempt_ordinal asc").Find(&ss).Error
	return ss, err
}

// SaveGradingResult persists a successful grading pass atomically: the
// submission's grading fields, the per-answer correctness, and the grade
// record. The guard on is_graded makes concurrent passes idempotent; if
// another pass already graded the submission, nothing is written.
func (r *SubmissionRepository) SaveGradingResult(sub *model.Submission, answers []model.SubmissionAnswer, record *model.GradeRecord) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Submission{}).
			Where("id = ? AND is_graded = ?", sub.ID, false).
			Updates(map[string]interface{}{
				"score":         sub.Score,
				"max_score":     sub.MaxScore,
				"percentage":    sub.Percentage,
				"feedback":      sub.Feedback,
				"is_graded":     true,
				"graded_at":     sub.GradedAt,
				"grading_error": "",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost to a concurrent grading pass; keep this one a no-op.
			return nil
		}

		for i := range answers {
			a := &answers[i]
			if a.ID == 0 {
				// Row added during grading for a question the submission had
				// no answer to; insert it so the one-row-per-question shape
				// holds after grading.
				if err := tx.Create(a).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&model.SubmissionAnswer{}).
				Where("id = ?", a.ID).
				Updates(map[string]interface{}{
					"is_correct":     a.IsCorrect,
					"points_awarded": a.PointsAwarded,
				}).Error; err != nil {
				return err
			}
		}

		if record != nil {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SubmissionRepository) RecordGradingError(submissionID uint, reason string) error {
	return r.DB.Model(&model.Submission{}).
		Where("id = ? AND is_graded = ?", submissionID, false).
		Update("grading_error", reason).Error
}

// ListStaleUngraded returns ungraded submissions of graded quizzes that
// were submitted before the cutoff; the grading worker's sweep re-enqueues
// them.
func (r *SubmissionRepository) ListStaleUngraded(cutoff time.Time, limit int) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Submission{}).
		Joins("JOIN quizzes ON quizzes.id = submissions.quiz_id").
		Where("submissions.is_graded = ? AND quizzes.is_graded = ? AND submissions.submitted_at < ?",
			false, true, cutoff).
		Limit(limit).
		Pluck("submissions.id", &ids).Error
	return ids, err
}
