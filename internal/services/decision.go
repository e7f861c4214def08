package services

import (
	"yatube/internal/models"
	"yatube/internal/urls"
)

// Decision is the outcome of an authorization check: either the operation
// may go ahead, or the caller is sent somewhere safe instead.
type Decision struct {
	redirect string
}

func Allow() Decision {
	return Decision{}
}

func RedirectTo(path string) Decision {
	return Decision{redirect: path}
}

func (d Decision) Allowed() bool {
	return d.redirect == ""
}

// Redirect is the target path when the decision is not Allowed.
func (d Decision) Redirect() string {
	return d.redirect
}

// CanEdit lets only the author change a post. Everyone else lands on the
// post page without an error.
func CanEdit(editor *models.User, post *models.Post) Decision {
	if editor == nil || editor.ID != post.AuthorID {
		return RedirectTo(urls.PostDetail(post.ID))
	}
	return Allow()
}
