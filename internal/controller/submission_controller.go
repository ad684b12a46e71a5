package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	Submissions *service.SubmissionService
}

func NewSubmissionController(submissions *service.SubmissionService) *SubmissionController {
	return &SubmissionController{Submissions: submissions}
}

// @Summary Submit quiz answers
// @Description Admits one attempt; the submission is graded asynchronously.
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Param body body service.SubmitRequest true "answers"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "attempts exhausted or admission conflict"
// @Router /api/quizzes/{id}/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
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

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.Submissions.Submit(*actor, quizID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// @Summary List submissions of a quiz
// @Description Instructors see every attempt; students see their own.
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/submissions [get]
func (c *SubmissionController) ListForQuiz(ctx *gin.Context) {
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

	subs, err := c.Submissions.ListForQuiz(*actor, quizID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// @Summary Get one submission with its answers
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "submission id"
// @Success 200 {object} util.Response
// @Router /api/submissions/{id} [get]
func (c *SubmissionController) Get(ctx *gin.Context) {
	actor := util.ActorFromContext(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid submission id")
		return
	}

	sub, err := c.Submissions.GetSubmission(*actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}
