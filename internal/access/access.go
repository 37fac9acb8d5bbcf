// Package access decides who may do what. Every function is pure: it reads the
// user and the resource and returns a decision, it never mutates either.
package access

import (
	"net/http"

	"github.com/Baaaki/yamdb/internal/models"
	"github.com/google/uuid"
)

// rank orders roles by privilege; a lower number means more privilege.
var rank = map[models.Role]int{
	models.RoleAdmin:     0,
	models.RoleModerator: 1,
	models.RoleUser:      2,
}

// Rank returns the privilege rank of role. Unknown roles rank below user.
func Rank(role models.Role) int {
	if r, ok := rank[role]; ok {
		return r
	}
	return len(rank)
}

// HasAccess reports whether user holds at least the required role.
// Superusers pass every role check. Anonymous (nil) users never do.
func HasAccess(user *models.User, required models.Role) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	return Rank(user.Role) <= Rank(required)
}

// CanWriteCatalog covers create/update/delete of categories, genres and titles.
func CanWriteCatalog(user *models.User) bool {
	return HasAccess(user, models.RoleAdmin)
}

// CanModifyContent covers update/delete of a review or comment written by authorID.
func CanModifyContent(user *models.User, authorID uuid.UUID) bool {
	if user == nil {
		return false
	}
	return user.ID == authorID || HasAccess(user, models.RoleModerator)
}

// CanManageUsers covers the admin user-management endpoints.
func CanManageUsers(user *models.User) bool {
	return HasAccess(user, models.RoleAdmin)
}

// CanChangeRole reports whether actor may set a role. The self-profile path never may.
func CanChangeRole(actor *models.User, selfProfile bool) bool {
	if selfProfile {
		return false
	}
	return HasAccess(actor, models.RoleAdmin)
}

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// IsSafeMethod reports whether method only reads.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// ActionForMethod maps an HTTP method onto an Action. Methods that are neither
// safe nor known are treated as updates.
func ActionForMethod(method string) Action {
	if IsSafeMethod(method) {
		return ActionRead
	}
	switch method {
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	}
	return ActionUpdate
}

type Kind int

const (
	KindCategory Kind = iota
	KindGenre
	KindTitle
	KindReview
	KindComment
	KindUser
)

// Resource is what a request acts on. AuthorID is only meaningful for reviews and comments.
type Resource struct {
	Kind     Kind
	AuthorID uuid.UUID
}

// Check is the single decision point combining the rules above.
func Check(user *models.User, action Action, res Resource) bool {
	switch res.Kind {
	case KindCategory, KindGenre, KindTitle:
		return action == ActionRead || CanWriteCatalog(user)
	case KindReview, KindComment:
		switch action {
		case ActionRead:
			return true
		case ActionCreate:
			return user != nil
		default:
			return CanModifyContent(user, res.AuthorID)
		}
	case KindUser:
		return CanManageUsers(user)
	}
	return false
}
