// Package permission holds the fixed permission catalog and the access
// decision over permission sets.
package permission

import (
	"fmt"

	"mediahub/internal/core/domain"
)

// Code is the stable identifier of a permission, e.g. "user:view".
type Code string

const (
	UserView       Code = "user:view"
	UserEdit       Code = "user:edit"
	RoleView       Code = "role:view"
	RoleEdit       Code = "role:edit"
	PermissionView Code = "permission:view"
	MessageView    Code = "message:view"
	MessageUpload  Code = "message:upload"
	MessageReview  Code = "message:review"
	MessageDelete  Code = "message:delete"
	TagView        Code = "tag:view"
	TagEdit        Code = "tag:edit"
	CommentView    Code = "comment:view"
	CommentCreate  Code = "comment:create"
	CommentDelete  Code = "comment:delete"
	BindingEdit    Code = "binding:edit"
)

// Permission is a catalog entry. Default permissions are granted to every
// role when it is created.
type Permission struct {
	Code        Code   `json:"code"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
}

var catalog = []Permission{
	{UserView, "View user accounts", false},
	{UserEdit, "Edit user accounts and role assignments", false},
	{RoleView, "View roles", false},
	{RoleEdit, "Create, delete and change roles", false},
	{PermissionView, "View the permission catalog", false},
	{MessageView, "View messages", true},
	{MessageUpload, "Upload messages", true},
	{MessageReview, "Approve or reject messages", false},
	{MessageDelete, "Delete messages", false},
	{TagView, "View tags", true},
	{TagEdit, "Add and remove tags", false},
	{CommentView, "View comments", true},
	{CommentCreate, "Write comments", true},
	{CommentDelete, "Delete any comment", false},
	{BindingEdit, "Manage own external platform bindings", true},
}

var byCode = func() map[Code]Permission {
	m := make(map[Code]Permission, len(catalog))
	for _, p := range catalog {
		if _, dup := m[p.Code]; dup {
			panic(fmt.Sprintf("permission %q declared twice", p.Code))
		}
		m[p.Code] = p
	}
	return m
}()

// All returns the catalog in declaration order. The slice is a copy.
func All() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// ByCode looks up a catalog entry.
func ByCode(code Code) (Permission, error) {
	p, ok := byCode[code]
	if !ok {
		return Permission{}, fmt.Errorf("permission %q: %w", code, domain.ErrNotFound)
	}
	return p, nil
}

// Known reports whether code is in the catalog.
func Known(code Code) bool {
	_, ok := byCode[code]
	return ok
}

// Defaults returns the set of default permissions.
func Defaults() Set {
	s := NewSet()
	for _, p := range catalog {
		if p.IsDefault {
			s.Add(p.Code)
		}
	}
	return s
}

// Codes returns every catalog code as a set.
func Codes() Set {
	s := NewSet()
	for _, p := range catalog {
		s.Add(p.Code)
	}
	return s
}
