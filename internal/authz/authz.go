// Package authz holds the capability checks handlers compose before
// mutating operations. Each check is a pure predicate over the requesting
// account and the target record.
package authz

import (
	"github.com/nikkilog/nikki/internal/model"
)

func CanEditArticle(u *model.User, a *model.Article) bool {
	return u != nil && u.ID == a.UserID
}

func CanDeleteArticle(u *model.User, a *model.Article) bool {
	return u != nil && (u.ID == a.UserID || u.IsSuperuser)
}

func CanEditComment(u *model.User, c *model.Comment) bool {
	return u != nil && u.ID == c.UserID
}

func CanDeleteComment(u *model.User, c *model.Comment) bool {
	return u != nil && (u.ID == c.UserID || u.IsSuperuser)
}

// CanManageUser gates the profile detail/update/delete pages: only the
// account itself or a superuser.
func CanManageUser(u *model.User, targetID string) bool {
	return u != nil && (u.ID == targetID || u.IsSuperuser)
}
