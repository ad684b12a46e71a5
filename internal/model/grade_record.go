package model

type GradeCategory string

const (
	CategoryQuiz       GradeCategory = "quiz"
	CategoryAssignment GradeCategory = "assignment"
	CategoryManual     GradeCategory = "manual"
)

// GradeRecord is an append-only ledger entry for one scored unit of work.
// Corrections are new records, never in-place edits.
//
// swagger:model GradeRecord
type GradeRecord struct {
	BaseModel
	StudentID    uint          `gorm:"index;type:bigint unsigned" json:"studentId"`
	CourseID     uint          `gorm:"index;type:bigint unsigned" json:"courseId"`
	QuizID       *uint         `gorm:"index;type:bigint unsigned" json:"quizId,omitempty"`
	AssignmentID *uint         `gorm:"type:bigint unsigned" json:"assignmentId,omitempty"`
	Score        int           `json:"score"`
	MaxScore     int           `json:"maxScore"`
	Percentage   float64       `json:"percentage"`
	LetterGrade  string        `gorm:"size:2" json:"letterGrade"`
	Category     GradeCategory `gorm:"size:20;default:'quiz'" json:"category"`
}

func (GradeRecord) TableName() string {
	return "grade_records"
}
