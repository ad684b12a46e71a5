package service

import (
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestValidateQuestionShape(t *testing.T) {
	tests := []struct {
		name    string
		req     QuestionRequest
		wantErr string
	}{
		{
			name: "valid multiple choice",
			req: QuestionRequest{
				Type:          model.MultipleChoice,
				Prompt:        "2+2?",
				Options:       []string{"3", "4"},
				CorrectAnswer: strPtr("4"),
				Points:        2,
			},
		},
		{
			name: "valid true false",
			req: QuestionRequest{
				Type:          model.TrueFalse,
				Prompt:        "The sky is blue.",
				CorrectAnswer: strPtr("true"),
				Points:        1,
			},
		},
		{
			name: "valid essay without answer",
			req: QuestionRequest{
				Type:   model.Essay,
				Prompt: "Explain polymorphism.",
				Points: 10,
			},
		},
		{
			name:    "unknown type",
			req:     QuestionRequest{Type: "matching", Prompt: "x", Points: 1},
			wantErr: "unknown question type",
		},
		{
			name: "points below range",
			req: QuestionRequest{
				Type:          model.TrueFalse,
				Prompt:        "x",
				CorrectAnswer: strPtr("true"),
				Points:        0,
			},
			wantErr: "points must be between 1 and 10",
		},
		{
			name: "points above range",
			req: QuestionRequest{
				Type:          model.TrueFalse,
				Prompt:        "x",
				CorrectAnswer: strPtr("true"),
				Points:        11,
			},
			wantErr: "points must be between 1 and 10",
		},
		{
			name: "multiple choice with one option",
			req: QuestionRequest{
				Type:          model.MultipleChoice,
				Prompt:        "x",
				Options:       []string{"only"},
				CorrectAnswer: strPtr("only"),
				Points:        1,
			},
			wantErr: "at least 2 options",
		},
		{
			name: "options on non choice type",
			req: QuestionRequest{
				Type:          model.ShortAnswer,
				Prompt:        "x",
				Options:       []string{"a", "b"},
				CorrectAnswer: strPtr("a"),
				Points:        1,
			},
			wantErr: "only allowed on multiple choice",
		},
		{
			name: "objective without correct answer",
			req: QuestionRequest{
				Type:   model.FillInBlank,
				Prompt: "x",
				Points: 1,
			},
			wantErr: "require a correct answer",
		},
		{
			name: "correct answer not among options",
			req: QuestionRequest{
				Type:          model.MultipleChoice,
				Prompt:        "x",
				Options:       []string{"a", "b"},
				CorrectAnswer: strPtr("c"),
				Points:        1,
			},
			wantErr: "must match one of the options",
		},
		{
			name: "essay with correct answer",
			req: QuestionRequest{
				Type:          model.Essay,
				Prompt:        "x",
				CorrectAnswer: strPtr("anything"),
				Points:        1,
			},
			wantErr: "cannot have a correct answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestionShape(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, util.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireCourseOwner(t *testing.T) {
	course := &model.Course{InstructorID: 7}
	course.ID = 1

	assert.NoError(t, requireCourseOwner(model.Actor{ID: 7, Role: model.Instructor}, course))
	assert.NoError(t, requireCourseOwner(model.Actor{ID: 99, Role: model.Admin}, course))

	err := requireCourseOwner(model.Actor{ID: 8, Role: model.Instructor}, course)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	err = requireCourseOwner(model.Actor{ID: 7, Role: model.Student}, course)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
