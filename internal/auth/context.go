package auth

import (
	"context"

	"github.com/meera-jewels/retail-api/internal/domain"
)

// OperatorContext identifies the staff member behind a request. Requests
// without a token run without one; writes made that way are attributed to
// the system.
type OperatorContext struct {
	ID    string
	Name  string
	Role  domain.TeamRole
	Floor int
}

type contextKey string

const operatorContextKey contextKey = "operatorContext"

// WithOperator adds the operator to the request context
func WithOperator(ctx context.Context, operator *OperatorContext) context.Context {
	return context.WithValue(ctx, operatorContextKey, operator)
}

// FromContext extracts the operator from the context
func FromContext(ctx context.Context) (*OperatorContext, bool) {
	operator, ok := ctx.Value(operatorContextKey).(*OperatorContext)
	return operator, ok
}

// IsManager reports whether the operator can perform floor-manager actions
func (o *OperatorContext) IsManager() bool {
	return o.Role == domain.TeamRoleFloorManager || o.Role == domain.TeamRoleAdmin
}

// SubmitterName returns the name to attribute a write to. Falls back to
// "system" when no operator is present.
func SubmitterName(ctx context.Context) string {
	if operator, ok := FromContext(ctx); ok && operator.Name != "" {
		return operator.Name
	}
	return "system"
}
