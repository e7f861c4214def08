// Package views holds the HTML templates, compiled into the binary.
//
// Every page under templates/views is registered by its relative path
// ("posts/index.html") together with the layout and the shared includes.
// Pages under templates/fragments get the includes only; they render
// pieces that are cached on their own.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"yatube/internal/urls"
	"yatube/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var files embed.FS

// MediaURLer turns a stored media path into a link.
type MediaURLer interface {
	URL(name string) string
}

// Set is the compiled template set. It is also gin's HTML renderer.
type Set struct {
	templates multitemplate.Render
}

var _ render.HTMLRender = (*Set)(nil)

func New(media MediaURLer) (*Set, error) {
	funcs := FuncMap(media)

	layouts, err := readDir("templates/layouts")
	if err != nil {
		return nil, err
	}
	includes, err := readDir("templates/includes")
	if err != nil {
		return nil, err
	}

	s := &Set{templates: multitemplate.New()}
	if err := s.addTree("templates/views", funcs, append(layouts, includes...)); err != nil {
		return nil, err
	}
	if err := s.addTree("templates/fragments", funcs, includes); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set) addTree(root string, funcs template.FuncMap, shared []string) (err error) {
	// template.Must 解析失败会 panic，这里转成 error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse templates under %s: %v", root, r)
		}
	}()

	return fs.WalkDir(files, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return walkErr
		}
		page, err := files.ReadFile(p)
		if err != nil {
			return err
		}

		name := strings.TrimPrefix(p, root+"/")
		if root != "templates/views" {
			name = path.Join(path.Base(root), name)
		}
		sources := append(append([]string{}, shared...), string(page))
		s.templates.AddFromStringsFuncs(name, funcs, sources...)
		return nil
	})
}

func readDir(dir string) ([]string, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := files.ReadFile(path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
	}
	return out, nil
}

// Instance implements render.HTMLRender.
func (s *Set) Instance(name string, data interface{}) render.Render {
	return s.templates.Instance(name, data)
}

// Has reports whether a page is registered.
func (s *Set) Has(name string) bool {
	_, ok := s.templates[name]
	return ok
}

// Render executes a page outside of a gin response.
func (s *Set) Render(w io.Writer, name string, data interface{}) error {
	t, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("template %q not registered", name)
	}
	return t.Execute(w, data)
}

// RenderBytes is Render into a buffer.
func (s *Set) RenderBytes(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Render(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func FuncMap(media MediaURLer) template.FuncMap {
	return template.FuncMap{
		"markdown": utils.RenderPostText,
		"mediaURL": media.URL,
		"date": func(t time.Time) string {
			return t.Format("2 Jan 2006 15:04")
		},
		"indexURL":       urls.Index,
		"groupURL":       urls.Group,
		"profileURL":     urls.Profile,
		"followURL":      urls.ProfileFollow,
		"unfollowURL":    urls.ProfileUnfollow,
		"postURL":        urls.PostDetail,
		"editURL":        urls.PostEdit,
		"commentURL":     urls.AddComment,
		"createURL":      urls.PostCreate,
		"followIndexURL": urls.FollowIndex,
		"loginURL":       urls.Login,
		"signupURL":      urls.Signup,
		"logoutURL":      urls.Logout,
		"pageURL":        urls.WithPage,
	}
}
