package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const studentQuestionsKeyPrefix = "quiz:questions:student:"
const studentQuestionsTTL = 10 * time.Minute

// QuestionBankService owns question CRUD within a quiz: shape validation,
// presentation order, and the quiz's cached point total.
type QuestionBankService struct {
	Questions *repository.QuestionRepository
	Quizzes   *repository.QuizRepository
	Courses   *repository.CourseRepository
	Redis     *redis.Client
}

func NewQuestionBankService(questions *repository.QuestionRepository, quizzes *repository.QuizRepository, courses *repository.CourseRepository, rdb *redis.Client) *QuestionBankService {
	return &QuestionBankService{Questions: questions, Quizzes: quizzes, Courses: courses, Redis: rdb}
}

type QuestionRequest struct {
	Type          model.QuestionType `json:"type" binding:"required"`
	Prompt        string             `json:"prompt" binding:"required"`
	Options       []string           `json:"options"`
	CorrectAnswer *string            `json:"correctAnswer"`
	Explanation   string             `json:"explanation"`
	Points        int                `json:"points"`
	Order         *int               `json:"order"`
}

// validateQuestionShape enforces the type-dependent union once, at
// construction: options non-empty iff multiple choice, correct answer
// present iff the type is objectively gradable, points within 1..10.
func validateQuestionShape(req QuestionRequest) error {
	if !req.Type.Valid() {
		return util.Validationf("unknown question type %q", req.Type)
	}
	if req.Points < 1 || req.Points > 10 {
		return util.Validationf("points must be between 1 and 10")
	}

	if req.Type == model.MultipleChoice {
		if len(req.Options) < 2 {
			return util.Validationf("multiple choice questions need at least 2 options")
		}
	} else if len(req.Options) > 0 {
		return util.Validationf("options are only allowed on multiple choice questions")
	}

	if req.Type.Objective() {
		if req.CorrectAnswer == nil || *req.CorrectAnswer == "" {
			return util.Validationf("%s questions require a correct answer", req.Type)
		}
		if req.Type == model.MultipleChoice {
			found := false
			for _, o := range req.Options {
				if o == *req.CorrectAnswer {
					found = true
					break
				}
			}
			if !found {
				return util.Validationf("correct answer must match one of the options")
			}
		}
	} else if req.CorrectAnswer != nil {
		return util.Validationf("essay questions cannot have a correct answer")
	}

	return nil
}

func (s *QuestionBankService) AddQuestion(actor model.Actor, quizID uint, req QuestionRequest) (*model.Question, error) {
	quiz, err := s.ownedQuiz(actor, quizID)
	if err != nil {
		return nil, err
	}

	if err := validateQuestionShape(req); err != nil {
		return nil, err
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		// Default placement is the end of the quiz.
		count, err := s.Questions.CountByQuiz(quiz.ID)
		if err != nil {
			return nil, err
		}
		order = int(count) + 1
	}

	q := &model.Question{
		QuizID:        quiz.ID,
		Type:          req.Type,
		Prompt:        req.Prompt,
		Options:       model.StringList(req.Options),
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Points:        req.Points,
		Order:         order,
	}
	if err := s.Questions.Create(q); err != nil {
		return nil, err
	}

	s.invalidateStudentCache(quiz.ID)
	return q, nil
}

func (s *QuestionBankService) UpdateQuestion(actor model.Actor, questionID uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.Questions.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	quiz, err := s.ownedQuiz(actor, q.QuizID)
	if err != nil {
		return nil, err
	}

	if err := s.guardStructuralEdit(quiz); err != nil {
		return nil, err
	}
	if err := validateQuestionShape(req); err != nil {
		return nil, err
	}

	q.Type = req.Type
	q.Prompt = req.Prompt
	q.Options = model.StringList(req.Options)
	q.CorrectAnswer = req.CorrectAnswer
	q.Explanation = req.Explanation
	q.Points = req.Points
	if req.Order != nil {
		q.Order = *req.Order
	}

	if err := s.Questions.Update(q); err != nil {
		return nil, err
	}

	s.invalidateStudentCache(quiz.ID)
	return q, nil
}

func (s *QuestionBankService) RemoveQuestion(actor model.Actor, questionID uint) error {
	q, err := s.Questions.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}

	quiz, err := s.ownedQuiz(actor, q.QuizID)
	if err != nil {
		return err
	}

	if err := s.guardStructuralEdit(quiz); err != nil {
		return err
	}

	if err := s.Questions.Delete(q); err != nil {
		return err
	}

	s.invalidateStudentCache(quiz.ID)
	return nil
}

// ListQuestions returns the full question set, answers included. The
// instructor-facing contract; students go through ListForStudent.
func (s *QuestionBankService) ListQuestions(actor model.Actor, quizID uint) ([]model.Question, error) {
	if _, err := s.ownedQuiz(actor, quizID); err != nil {
		return nil, err
	}
	return s.Questions.ListByQuiz(quizID)
}

// StudentQuestion is the answer-stripped view served to students.
type StudentQuestion struct {
	ID      uint               `json:"id"`
	Type    model.QuestionType `json:"type"`
	Prompt  string             `json:"prompt"`
	Options []string           `json:"options"`
	Points  int                `json:"points"`
	Order   int                `json:"order"`
}

// ListForStudent serves the published quiz's question set without correct
// answers or explanations, cached in redis until the bank changes.
func (s *QuestionBankService) ListForStudent(actor model.Actor, quizID uint) ([]StudentQuestion, error) {
	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotAvailable
	}

	enrolled, err := s.Courses.IsEnrolled(actor.ID, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	ctx := context.Background()
	key := fmt.Sprintf("%s%d", studentQuestionsKeyPrefix, quizID)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var res []StudentQuestion
			if json.Unmarshal([]byte(cached), &res) == nil {
				return res, nil
			}
		}
	}

	qs, err := s.Questions.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	res := make([]StudentQuestion, len(qs))
	for i, q := range qs {
		res[i] = StudentQuestion{
			ID:      q.ID,
			Type:    q.Type,
			Prompt:  q.Prompt,
			Options: q.Options,
			Points:  q.Points,
			Order:   q.Order,
		}
	}

	if s.Redis != nil {
		if data, err := json.Marshal(res); err == nil {
			if err := s.Redis.Set(ctx, key, data, studentQuestionsTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache student questions", zap.Uint("quizId", quizID), zap.Error(err))
			}
		}
	}

	return res, nil
}

// guardStructuralEdit blocks question changes on a published quiz that
// already has submissions; graded history must stay consistent with the
// questions it was graded against.
func (s *QuestionBankService) guardStructuralEdit(quiz *model.Quiz) error {
	if !quiz.IsPublished {
		return nil
	}
	count, err := s.Quizzes.CountSubmissions(quiz.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return util.Validationf("cannot modify questions of a published quiz that has submissions")
	}
	return nil
}

func (s *QuestionBankService) ownedQuiz(actor model.Actor, quizID uint) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	course, err := s.Courses.FindByID(quiz.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if err := requireCourseOwner(actor, course); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuestionBankService) invalidateStudentCache(quizID uint) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf("%s%d", studentQuestionsKeyPrefix, quizID)
	if err := s.Redis.Del(context.Background(), key).Err(); err != nil {
		logger.Log.Warn("failed to invalidate question cache", zap.Uint("quizId", quizID), zap.Error(err))
	}
}

// requireCourseOwner gates instructor-owned mutations: the actor must be
// the course's instructor (admins pass).
func requireCourseOwner(actor model.Actor, course *model.Course) error {
	if actor.Role == model.Admin {
		return nil
	}
	if !actor.IsInstructor() || course.InstructorID != actor.ID {
		return util.ErrPermissionDenied
	}
	return nil
}
