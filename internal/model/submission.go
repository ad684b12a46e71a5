package model

import "time"

// Submission is one admitted attempt. The unique index over
// (quiz_id, student_id, attempt_ordinal) is the serialization point for
// attempt admission: two racing requests cannot both insert the same
// ordinal.
//
// swagger:model Submission
type Submission struct {
	BaseModel
	QuizID           uint       `gorm:"uniqueIndex:uniq_quiz_student_attempt;type:bigint unsigned" json:"quizId"`
	StudentID        uint       `gorm:"uniqueIndex:uniq_quiz_student_attempt;type:bigint unsigned" json:"studentId"`
	AttemptOrdinal   int        `gorm:"uniqueIndex:uniq_quiz_student_attempt" json:"attemptOrdinal"`
	TimeSpentSeconds *int       `json:"timeSpentSeconds,omitempty"`
	SubmittedAt      time.Time  `json:"submittedAt"`
	Score            *int       `json:"score,omitempty"`
	MaxScore         int        `json:"maxScore"`
	Percentage       float64    `json:"percentage"`
	IsGraded         bool       `gorm:"default:false" json:"isGraded"`
	GradedAt         *time.Time `json:"gradedAt,omitempty"`
	Feedback         string     `gorm:"type:text" json:"feedback"`
	// GradingError records why the last grading pass failed. The student
	// surface never serializes it; ungraded submissions read as pending.
	GradingError string `gorm:"type:text" json:"-"`

	Answers []SubmissionAnswer `gorm:"foreignKey:SubmissionID" json:"answers,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// SubmissionAnswer holds exactly one row per question of the quiz at
// submission time; unanswered questions are stored as empty strings,
// never omitted.
//
// swagger:model SubmissionAnswer
type SubmissionAnswer struct {
	BaseModel
	SubmissionID  uint   `gorm:"index;type:bigint unsigned" json:"submissionId"`
	QuestionID    uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	AnswerText    string `gorm:"type:text" json:"answerText"`
	IsCorrect     bool   `gorm:"default:false" json:"isCorrect"`
	PointsAwarded int    `gorm:"default:0" json:"pointsAwarded"`
}

func (SubmissionAnswer) TableName() string {
	return "submission_answers"
}

// AnswerInput is the wire shape of a single answer at submit time.
type AnswerInput struct {
	QuestionID uint   `json:"questionId"`
	AnswerText string `json:"answerText"`
}
