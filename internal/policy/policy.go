// Package policy decides whether a caller may perform an action on the
// catalog or on one of their own records.
package policy

import (
	"github.com/farellandr/coursehub/internal/apperrors"
)

type Action int

const (
	ActionList Action = iota
	ActionCreate
	ActionRetrieve
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionCreate:
		return "create"
	case ActionRetrieve:
		return "retrieve"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Principal is the authenticated caller. A nil *Principal is anonymous.
type Principal struct {
	UserID  uint
	Email   string
	IsStaff bool
}

// Owned is implemented by records that carry an owner reference.
type Owned interface {
	OwnerRef() *uint
}

// Authorize returns nil when p may perform action on obj. obj is ignored
// for list and create.
func Authorize(p *Principal, action Action, obj Owned) error {
	if p != nil && p.IsStaff {
		return nil
	}

	switch action {
	case ActionList:
		return nil
	case ActionCreate:
		if p == nil {
			return apperrors.ErrAuthenticationRequired
		}
		return nil
	}

	if p == nil {
		return apperrors.ErrAuthenticationRequired
	}
	if obj == nil {
		return apperrors.ErrPermissionDenied
	}
	owner := obj.OwnerRef()
	if owner == nil || *owner != p.UserID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}
