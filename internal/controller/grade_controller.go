package controller

import (
	"strconv"

	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	Gradebook *service.GradebookService
}

func NewGradeController(gradebook *service.GradebookService) *GradeController {
	return &GradeController{Gradebook: gradebook}
}

// @Summary List grade records
// @Description Students see their own history; instructors see records of courses they teach.
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "course id"
// @Param quizId query int false "quiz id"
// @Param studentId query int false "student id (instructors only)"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /api/grades [get]
func (c *GradeController) List(ctx *gin.Context) {
	actor := util.ActorFromContext(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	filter := repository.GradeFilter{
		CourseID: util.MustParseUint(ctx.Query("courseId")),
		QuizID:   util.MustParseUint(ctx.Query("quizId")),
		Page:     page,
		Limit:    limit,
	}
	if actor.IsInstructor() {
		filter.StudentID = util.MustParseUint(ctx.Query("studentId"))
	}

	grades, total, err := c.Gradebook.ListGrades(*actor, filter)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  grades,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// @Summary Record a manual grade
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.GradeRequest true "grade entry"
// @Success 201 {object} util.Response
// @Router /api/teacher/grades [post]
func (c *GradeController) Record(ctx *gin.Context) {
	actor := util.ActorFromContext(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.Gradebook.RecordGrade(*actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, record)
}
