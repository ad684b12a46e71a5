package model

// Course and Enrollment are collaborator records: the catalog and
// enrollment lifecycle are managed elsewhere, the assessment engine only
// reads them for ownership and enrollment checks.

// swagger:model Course
type Course struct {
	BaseModel
	Title        string `gorm:"size:255;not null" json:"title"`
	InstructorID uint   `gorm:"index;type:bigint unsigned" json:"instructorId"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	CourseID  uint   `gorm:"index:idx_enrollment_course_student;type:bigint unsigned" json:"courseId"`
	StudentID uint   `gorm:"index:idx_enrollment_course_student;type:bigint unsigned" json:"studentId"`
	Status    string `gorm:"size:20;default:'active'" json:"status"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
