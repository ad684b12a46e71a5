package model

import "time"

// swagger:model Quiz
type Quiz struct {
	BaseModel
	CourseID         uint       `gorm:"index;type:bigint unsigned" json:"courseId"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Instructions     string     `gorm:"type:text" json:"instructions"`
	TimeLimitMinutes *int       `json:"timeLimitMinutes,omitempty"`
	MaxAttempts      int        `gorm:"default:1" json:"maxAttempts"`
	IsGraded         bool       `gorm:"default:true" json:"isGraded"`
	IsPublished      bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt      *time.Time `json:"publishedAt,omitempty"`
	DueAt            *time.Time `json:"dueAt,omitempty"`
	// TotalPoints caches the sum of question points; recomputed on every
	// question mutation.
	TotalPoints int `gorm:"default:0" json:"totalPoints"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
