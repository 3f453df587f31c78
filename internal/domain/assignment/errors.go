package assignment

import "errors"

var (
	ErrAssignmentNotFound = errors.New("course assignment not found")
	ErrAssignmentInactive = errors.New("course assignment is inactive")
	ErrNotAssignedToYou   = errors.New("you are not assigned to this course")
)
