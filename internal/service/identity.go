package service

import "github.com/stemsi/exproctor-backend/internal/model"

// Identity is the authenticated caller. Core operations receive it
// explicitly instead of reading request state.
type Identity struct {
	UserID int64
	Role   model.Role
	Name   string
	Email  string
}

// IsTeacher reports whether the caller authors exams.
func (i Identity) IsTeacher() bool { return i.Role == model.RoleTeacher }

// IsStudent reports whether the caller takes exams.
func (i Identity) IsStudent() bool { return i.Role == model.RoleStudent }

// canManage reports whether the caller may read or change teacher-only data of exam.
func (i Identity) canManage(exam *model.Exam) bool {
	return i.IsTeacher() && exam.OwnedBy(i.UserID)
}
