package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Essay          QuestionType = "essay"
	ShortAnswer    QuestionType = "short_answer"
	FillInBlank    QuestionType = "fill_in_blank"
)

// Objective reports whether the type is decidable by exact string
// comparison against the stored correct answer. ESSAY is the only
// inherently subjective type.
func (t QuestionType) Objective() bool {
	switch t {
	case MultipleChoice, TrueFalse, ShortAnswer, FillInBlank:
		return true
	}
	return false
}

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, TrueFalse, Essay, ShortAnswer, FillInBlank:
		return true
	}
	return false
}

// StringList stores an ordered list of strings as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported type %T for StringList", value)
}

// swagger:model Question
type Question struct {
	BaseModel
	QuizID        uint         `gorm:"index;type:bigint unsigned" json:"quizId"`
	Type          QuestionType `gorm:"size:50;not null" json:"type"`
	Prompt        string       `gorm:"type:text;not null" json:"prompt"`
	Options       StringList   `gorm:"type:json" json:"options"`
	CorrectAnswer *string      `gorm:"type:text" json:"correctAnswer,omitempty"`
	Explanation   string       `gorm:"type:text" json:"explanation"`
	Points        int          `gorm:"default:1" json:"points"`
	Order         int          `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}
