// Package urls builds the public paths of the site so handlers, services
// and templates agree on them.
package urls

import (
	"fmt"
	"net/url"
)

func Index() string {
	return "/"
}

func Group(slug string) string {
	return "/group/" + url.PathEscape(slug) + "/"
}

func Profile(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func ProfileFollow(username string) string {
	return Profile(username) + "follow/"
}

func ProfileUnfollow(username string) string {
	return Profile(username) + "unfollow/"
}

func PostDetail(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func PostEdit(id uint) string {
	return PostDetail(id) + "edit/"
}

func AddComment(id uint) string {
	return PostDetail(id) + "comment/"
}

func PostCreate() string {
	return "/create/"
}

func FollowIndex() string {
	return "/follow/"
}

// Login returns the login page, remembering where to go afterwards.
func Login(next string) string {
	if next == "" {
		return "/auth/login/"
	}
	return "/auth/login/?next=" + url.QueryEscape(next)
}

func Signup() string {
	return "/auth/signup/"
}

func Logout() string {
	return "/auth/logout/"
}

// WithPage appends the page query parameter to a feed path.
func WithPage(path string, page int) string {
	if page <= 1 {
		return path
	}
	return fmt.Sprintf("%s?page=%d", path, page)
}
