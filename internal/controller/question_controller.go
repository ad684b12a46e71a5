package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionBank *service.QuestionBankService
}

func NewQuestionController(bank *service.QuestionBankService) *QuestionController {
	return &QuestionController{QuestionBank: bank}
}

// @Summary List a quiz's questions
// @Description Instructors get the full bank with answers; students get the answer-stripped view of a published quiz.
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	actor := util.ActorFromContext(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	if actor.IsInstructor() {
		questions, err := c.QuestionBank.ListQuestions(*actor, quizID)
		if err != nil {
			util.RespondError(ctx, err)
			return
		}
		util.Success(ctx, questions)
		return
	}

	questions, err := c.QuestionBank.ListForStudent(*actor, quizID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary Add a question to a quiz
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Param body body service.QuestionRequest true "question"
// @Success 201 {object} util.Response
// @Router /api/teacher/quizzes/{id}/questions [post]
func (c *QuestionController) Add(ctx *gin.Context) {
	actor := util.ActorFromContext(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionBank.AddQuestion(*actor, quizID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary Update a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Param body body service.QuestionRequest true "question"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	actor := util.ActorFromContext(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID := util.MustParseUint(ctx.Param("id"))
	if questionID == 0 {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionBank.UpdateQuestion(*actor, questionID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary Remove a question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [delete]
func (c *QuestionController) Remove(ctx *gin.Context) {
	actor := util.ActorFromContext(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID := util.MustParseUint(ctx.Param("id"))
	if questionID == 0 {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	if err := c.QuestionBank.RemoveQuestion(*actor, questionID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
