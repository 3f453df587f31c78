package user

import "errors"

var (
	ErrAdminAccessRequired    = errors.New("admin access required")
	ErrLecturerAccessRequired = errors.New("lecturer access required")
	ErrStudentAccessRequired  = errors.New("student access required")
	ErrMissingProfile         = errors.New("no student or lecturer profile linked to this account")
)
