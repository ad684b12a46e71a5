package model

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// Actor is the authenticated caller. Identity and role resolution live in
// an external service; by the time a request reaches a service method it
// has been reduced to this pair, which is passed explicitly everywhere.
type Actor struct {
	ID   uint     `json:"id"`
	Role UserRole `json:"role"`
}

func (a Actor) IsInstructor() bool {
	return a.Role == Instructor || a.Role == Admin
}

func (a Actor) IsStudent() bool {
	return a.Role == Student
}
