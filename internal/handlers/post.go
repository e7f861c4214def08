package handlers

import (
	"context"
	"errors"
	"html/template"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"yatube/internal/cache"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/services"
	"yatube/internal/urls"
	"yatube/internal/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	feeds    *services.FeedService
	posts    *services.PostService
	comments *services.CommentService
	cache    cache.PageCache
	views    *views.Set
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewPostHandler(
	feeds *services.FeedService,
	posts *services.PostService,
	comments *services.CommentService,
	pageCache cache.PageCache,
	set *views.Set,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PostHandler {
	return &PostHandler{
		feeds:    feeds,
		posts:    posts,
		comments: comments,
		cache:    pageCache,
		views:    set,
		metrics:  metrics,
		logger:   logger,
	}
}

// Index 首页 - the feed part is cached under one fixed key; whichever page
// misses first is what everyone sees until the entry expires.
func (h *PostHandler) Index(c *gin.Context) {
	page := c.Query("page")

	feed, err := h.cache.GetOrCompute(c.Request.Context(), cache.IndexKey, func(ctx context.Context) ([]byte, error) {
		posts, err := h.feeds.Global(ctx, page)
		if err != nil {
			return nil, err
		}
		return h.views.RenderBytes("fragments/index_feed.html", gin.H{
			"Page":     posts,
			"BasePath": urls.Index(),
		})
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.metrics.FeedServed(observability.FeedIndex)
	Render(c, http.StatusOK, "posts/index.html", gin.H{
		"Feed": template.HTML(feed),
	})
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	slug := c.Param("slug")

	feed, err := h.feeds.Group(c.Request.Context(), slug, c.Query("page"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.metrics.FeedServed(observability.FeedGroup)
	Render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"Group":    feed.Group,
		"Page":     feed.Page,
		"BasePath": urls.Group(slug),
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	post, err := h.posts.Get(ctx, id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	comments, err := h.comments.List(ctx, post.ID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	count, err := h.posts.AuthorPostCount(ctx, post.AuthorID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Post":            post,
		"Comments":        comments,
		"AuthorPostCount": count,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderForm(c, http.StatusOK, postForm{Action: urls.PostCreate()})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	in, closeUpload, err := bindPostInput(c)
	if err != nil {
		h.renderInvalid(c, postForm{Action: urls.PostCreate()}, in, err)
		return
	}
	defer closeUpload()

	if _, err := h.posts.Create(c.Request.Context(), user, in); err != nil {
		h.renderInvalid(c, postForm{Action: urls.PostCreate()}, in, err)
		return
	}
	c.Redirect(http.StatusFound, urls.Profile(user.Username))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	post, ok := h.authorizeEdit(c, id)
	if !ok {
		return
	}

	form := postForm{Action: urls.PostEdit(post.ID), IsEdit: true, Text: post.Text}
	if post.GroupID != nil {
		form.SelectedGroup = *post.GroupID
	}
	h.renderForm(c, http.StatusOK, form)
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	// 先查帖子和权限，再读表单
	if _, ok := h.authorizeEdit(c, id); !ok {
		return
	}
	form := postForm{Action: urls.PostEdit(id), IsEdit: true}

	in, closeUpload, err := bindPostInput(c)
	if err != nil {
		h.renderInvalid(c, form, in, err)
		return
	}
	defer closeUpload()

	d, post, err := h.posts.Update(c.Request.Context(), middleware.CurrentUser(c), id, in)
	if err != nil {
		h.renderInvalid(c, form, in, err)
		return
	}
	if !d.Allowed() {
		c.Redirect(http.StatusFound, d.Redirect())
		return
	}
	c.Redirect(http.StatusFound, urls.PostDetail(post.ID))
}

// authorizeEdit writes the 404 or the redirect itself and reports whether
// the handler may go on.
func (h *PostHandler) authorizeEdit(c *gin.Context, id uint) (*models.Post, bool) {
	d, post, err := h.posts.Authorize(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		handleError(c, h.logger, err)
		return nil, false
	}
	if !d.Allowed() {
		c.Redirect(http.StatusFound, d.Redirect())
		return nil, false
	}
	return post, true
}

// AddComment always lands back on the post; an empty comment is dropped.
func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	_, err := h.comments.AddComment(c.Request.Context(), middleware.CurrentUser(c), id, c.PostForm("text"))
	if _, invalid := services.IsValidation(err); err != nil && !invalid {
		handleError(c, h.logger, err)
		return
	}
	if err == nil {
		h.metrics.CommentCreated()
	}
	c.Redirect(http.StatusFound, urls.PostDetail(id))
}

type postForm struct {
	Action        string
	IsEdit        bool
	Text          string
	SelectedGroup uint
	Errors        map[string]string
}

func (h *PostHandler) renderForm(c *gin.Context, code int, form postForm) {
	groups, err := h.posts.Groups(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	Render(c, code, "posts/create_post.html", gin.H{
		"Action":        form.Action,
		"IsEdit":        form.IsEdit,
		"Text":          form.Text,
		"SelectedGroup": form.SelectedGroup,
		"Errors":        form.Errors,
		"Groups":        groups,
	})
}

// renderInvalid shows the form again for validation errors and falls back
// to the generic error handling otherwise.
func (h *PostHandler) renderInvalid(c *gin.Context, form postForm, in services.PostInput, err error) {
	ve, ok := services.IsValidation(err)
	if !ok {
		handleError(c, h.logger, err)
		return
	}
	form.Text = in.Text
	if in.GroupID != nil {
		form.SelectedGroup = *in.GroupID
	}
	form.Errors = ve.Fields
	h.renderForm(c, http.StatusBadRequest, form)
}

// bindPostInput reads the multipart post form. The returned func closes
// the uploaded file, if any.
func bindPostInput(c *gin.Context) (services.PostInput, func(), error) {
	in := services.PostInput{Text: c.PostForm("text")}
	noop := func() {}

	if raw := strings.TrimSpace(c.PostForm("group")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return in, noop, &services.ValidationError{Fields: map[string]string{"group": "Select a valid choice."}}
		}
		groupID := uint(id)
		in.GroupID = &groupID
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return in, noop, nil
	}
	if err != nil {
		return in, noop, err
	}

	file, err := header.Open()
	if err != nil {
		return in, noop, err
	}
	in.Image = &services.Upload{Filename: header.Filename, Body: file}
	return in, func() { closeFile(file) }, nil
}

func closeFile(f multipart.File) {
	_ = f.Close()
}
