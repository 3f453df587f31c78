package assignment

import "context"

// Registry resolves course assignments. Read-only: assignment CRUD
// belongs to the academic administration service.
type Registry interface {
	GetByID(ctx context.Context, id string) (CourseAssignment, error)
}
