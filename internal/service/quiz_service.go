package service

import (
	"context"
	"errors"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// QuizService owns the quiz lifecycle: draft, publish, metadata edits and
// cascading deletion. Structural question work lives in the question bank.
type QuizService struct {
	Quizzes   *repository.QuizRepository
	Questions *repository.QuestionRepository
	Courses   *repository.CourseRepository
	Scorer    *ScorerService
}

func NewQuizService(quizzes *repository.QuizRepository, questions *repository.QuestionRepository, courses *repository.CourseRepository, scorer *ScorerService) *QuizService {
	return &QuizService{Quizzes: quizzes, Questions: questions, Courses: courses, Scorer: scorer}
}

type QuizRequest struct {
	CourseID         uint       `json:"courseId" binding:"required"`
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description"`
	Instructions     string     `json:"instructions"`
	TimeLimitMinutes *int       `json:"timeLimitMinutes"`
	MaxAttempts      *int       `json:"maxAttempts"`
	IsGraded         *bool      `json:"isGraded"`
	DueAt            *time.Time `json:"dueAt"`
}

func (s *QuizService) CreateQuiz(actor model.Actor, req QuizRequest) (*model.Quiz, error) {
	course, err := s.course(req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseOwner(actor, course); err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		CourseID:         course.ID,
		Title:            req.Title,
		Description:      req.Description,
		Instructions:     req.Instructions,
		TimeLimitMinutes: req.TimeLimitMinutes,
		MaxAttempts:      1,
		IsGraded:         true,
		DueAt:            req.DueAt,
	}
	if req.MaxAttempts != nil {
		if *req.MaxAttempts < 1 {
			return nil, util.Validationf("maxAttempts must be at least 1")
		}
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if req.IsGraded != nil {
		quiz.IsGraded = *req.IsGraded
	}

	if err := s.Quizzes.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

type GenerateQuizParams struct {
	CourseID      uint                 `json:"courseId" binding:"required"`
	Topic         string               `json:"topic" binding:"required"`
	QuestionCount int                  `json:"questionCount"`
	Difficulty    string               `json:"difficulty"`
	Types         []model.QuestionType `json:"types"`
}

// GenerateQuiz asks the external authoring collaborator for a draft and
// persists it unpublished. Generated questions pass the same shape
// validation as hand-authored ones; a draft that fails validation is
// rejected wholesale rather than silently truncated.
func (s *QuizService) GenerateQuiz(ctx context.Context, actor model.Actor, params GenerateQuizParams) (*model.Quiz, []model.Question, error) {
	course, err := s.course(params.CourseID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireCourseOwner(actor, course); err != nil {
		return nil, nil, err
	}

	if params.QuestionCount == 0 {
		params.QuestionCount = 5
	}

	generated, err := s.Scorer.GenerateQuiz(ctx, GenerateQuizRequest{
		Topic:         params.Topic,
		QuestionCount: params.QuestionCount,
		Difficulty:    params.Difficulty,
		Types:         params.Types,
	})
	if err != nil {
		return nil, nil, err
	}

	reqs := make([]QuestionRequest, len(generated.Questions))
	for i, gq := range generated.Questions {
		points := gq.Points
		if points < 1 {
			points = 1
		} else if points > 10 {
			points = 10
		}
		var correct *string
		if gq.Type.Objective() {
			answer := gq.CorrectAnswer
			correct = &answer
		}
		order := i + 1
		reqs[i] = QuestionRequest{
			Type:          gq.Type,
			Prompt:        gq.Prompt,
			Options:       gq.Options,
			CorrectAnswer: correct,
			Explanation:   gq.Explanation,
			Points:        points,
			Order:         &order,
		}
		if err := validateQuestionShape(reqs[i]); err != nil {
			return nil, nil, util.Validationf("generated question %d invalid: %s", i+1, err.Error())
		}
	}

	quiz := &model.Quiz{
		CourseID:     course.ID,
		Title:        generated.Title,
		Description:  generated.Description,
		Instructions: "",
		MaxAttempts:  1,
		IsGraded:     true,
	}
	if quiz.Title == "" {
		quiz.Title = params.Topic
	}

	questions := make([]model.Question, len(reqs))
	for i, req := range reqs {
		questions[i] = model.Question{
			Type:          req.Type,
			Prompt:        req.Prompt,
			Options:       model.StringList(req.Options),
			CorrectAnswer: req.CorrectAnswer,
			Explanation:   req.Explanation,
			Points:        req.Points,
			Order:         *req.Order,
		}
	}
	if err := s.Quizzes.CreateWithQuestions(quiz, questions); err != nil {
		return nil, nil, err
	}

	quiz, err = s.Quizzes.FindByID(quiz.ID)
	if err != nil {
		return nil, nil, err
	}
	return quiz, questions, nil
}

// GetQuiz applies visibility: instructors see their own quizzes in any
// state, students only published ones.
func (s *QuizService) GetQuiz(actor model.Actor, id uint) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if actor.IsInstructor() {
		course, err := s.course(quiz.CourseID)
		if err != nil {
			return nil, err
		}
		if err := requireCourseOwner(actor, course); err != nil {
			return nil, err
		}
		return quiz, nil
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
	return quiz, nil
}

func (s *QuizService) ListQuizzes(actor model.Actor, courseID uint) ([]model.Quiz, error) {
	course, err := s.course(courseID)
	if err != nil {
		return nil, err
	}

	if actor.IsInstructor() {
		if err := requireCourseOwner(actor, course); err != nil {
			return nil, err
		}
		return s.Quizzes.ListByCourse(courseID, false)
	}

	enrolled, err := s.Courses.IsEnrolled(actor.ID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}
	return s.Quizzes.ListByCourse(courseID, true)
}

type QuizUpdateRequest struct {
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Instructions     *string    `json:"instructions"`
	TimeLimitMinutes *int       `json:"timeLimitMinutes"`
	MaxAttempts      *int       `json:"maxAttempts"`
	IsGraded         *bool      `json:"isGraded"`
	DueAt            *time.Time `json:"dueAt"`
}

// UpdateQuiz edits metadata only; allowed at any lifecycle stage for the
// owning instructor.
func (s *QuizService) UpdateQuiz(actor model.Actor, id uint, req QuizUpdateRequest) (*model.Quiz, error) {
	quiz, err := s.ownedQuiz(actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, util.Validationf("title cannot be empty")
		}
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.Instructions != nil {
		quiz.Instructions = *req.Instructions
	}
	if req.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.MaxAttempts != nil {
		if *req.MaxAttempts < 1 {
			return nil, util.Validationf("maxAttempts must be at least 1")
		}
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if req.IsGraded != nil {
		quiz.IsGraded = *req.IsGraded
	}
	if req.DueAt != nil {
		quiz.DueAt = req.DueAt
	}

	if err := s.Quizzes.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Publish makes the quiz visible to enrolled students. A quiz without
// questions cannot be published.
func (s *QuizService) Publish(actor model.Actor, id uint) (*model.Quiz, error) {
	quiz, err := s.ownedQuiz(actor, id)
	if err != nil {
		return nil, err
	}
	if quiz.IsPublished {
		return quiz, nil
	}

	count, err := s.Questions.CountByQuiz(quiz.ID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, util.Validationf("quiz must have at least one question")
	}

	now := time.Now()
	quiz.IsPublished = true
	quiz.PublishedAt = &now
	if err := s.Quizzes.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// DeleteQuiz is instructor-owned and cascades to questions, submissions
// and answers.
func (s *QuizService) DeleteQuiz(actor model.Actor, id uint) error {
	quiz, err := s.ownedQuiz(actor, id)
	if err != nil {
		return err
	}
	return s.Quizzes.DeleteCascade(quiz.ID)
}

func (s *QuizService) ownedQuiz(actor model.Actor, id uint) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	course, err := s.course(quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if err := requireCourseOwner(actor, course); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) course(id uint) (*model.Course, error) {
	course, err := s.Courses.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}
