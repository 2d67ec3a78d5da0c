package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bikeshare/internal/models"
	"bikeshare/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	imageField = "image"

	msgNoFilePart     = "No file part"
	msgNoSelectedFile = "No selected file"
	msgForbidden      = "You are not the author of this post."
)

// postForm is the post and bike part of the create/update forms.
type postForm struct {
	Title string `form:"title"`
	Body  string `form:"body"`
	Make  string `form:"make"`
	Model string `form:"model"`
	Year  string `form:"year"`
	Type  string `form:"type"`
}

func (f postForm) input() service.PostInput {
	return service.PostInput{
		Title: f.Title,
		Body:  f.Body,
		Make:  f.Make,
		Model: f.Model,
		Year:  f.Year,
		Type:  f.Type,
	}
}

func inputFromDetail(d *models.PostDetail) service.PostInput {
	return service.PostInput{
		Title: d.Title,
		Body:  d.Body,
		Make:  d.Bike.Make,
		Model: d.Bike.Model,
		Year:  d.Bike.Year,
		Type:  d.Bike.Type,
	}
}

// imagePart describes what the image field of a multipart form held.
type imagePart int

const (
	imageMissing imagePart = iota
	imageEmpty
	imageFile
)

// readUpload inspects the image field. The returned closer is never nil.
func readUpload(c *gin.Context) (*service.Upload, imagePart, func(), error) {
	noop := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, imageMissing, noop, nil
	}
	if files := form.File[imageField]; len(files) > 0 {
		fh := files[0]
		if fh.Filename == "" {
			return nil, imageEmpty, noop, nil
		}
		f, err := fh.Open()
		if err != nil {
			return nil, imageFile, noop, fmt.Errorf("open upload: %w", err)
		}
		return &service.Upload{Filename: fh.Filename, Content: f}, imageFile, func() { _ = f.Close() }, nil
	}
	// a file input with nothing picked arrives as an empty value
	if _, ok := form.Value[imageField]; ok {
		return nil, imageEmpty, noop, nil
	}
	return nil, imageMissing, noop, nil
}

func (h *Handler) bindPostForm(c *gin.Context) postForm {
	var f postForm
	if err := c.ShouldBind(&f); err != nil && h.log != nil {
		h.log.Infow("post_bad_request_body", "err", err)
	}
	return f
}

// postID parses the :id segment; anything but a positive integer is a 404.
func (h *Handler) postID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.renderError(c, http.StatusNotFound, "The requested URL was not found on the server.")
		return 0, false
	}
	return id, true
}

// failPost maps service errors to error pages.
func (h *Handler) failPost(c *gin.Context, event string, id int, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		h.renderError(c, http.StatusNotFound, fmt.Sprintf("Post id %d doesn't exist.", id))
	case errors.Is(err, service.ErrForbidden):
		h.renderError(c, http.StatusForbidden, msgForbidden)
	default:
		if h.log != nil {
			h.log.Errorw(event, "post_id", id, "err", err)
		}
		h.renderError(c, http.StatusInternalServerError, "Something went wrong.")
	}
}

// @Summary      List posts
// @Description  All posts, newest first.
// @Tags         posts
// @Produce      html
// @Success      200
// @Router       / [get]
func (h *Handler) index(c *gin.Context) {
	posts, err := h.services.Posts.List(c.Request.Context())
	if err != nil {
		h.failPost(c, "post_list_failed", 0, err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Heading": "Posts", "Posts": posts})
}

// @Summary      List my posts
// @Tags         posts
// @Produce      html
// @Success      200
// @Failure      302  {string}  string  "redirect to login"
// @Router       /myposts [get]
func (h *Handler) myPosts(c *gin.Context) {
	actor, _ := currentActor(c)
	posts, err := h.services.Posts.ListByAuthor(c.Request.Context(), actor)
	if err != nil {
		h.failPost(c, "post_list_mine_failed", 0, err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Heading": "My posts", "Posts": posts})
}

// @Summary      View a post
// @Tags         posts
// @Produce      html
// @Param        id   path  int  true  "Post id"
// @Success      200
// @Failure      404
// @Router       /{id}/view [get]
func (h *Handler) view(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	d, err := h.services.Posts.FetchPost(c.Request.Context(), id)
	if err != nil {
		h.failPost(c, "post_view_failed", id, err)
		return
	}
	h.render(c, http.StatusOK, "post.html", gin.H{"Post": d})
}

func (h *Handler) createForm(c *gin.Context) {
	h.render(c, http.StatusOK, "create.html", gin.H{
		"Form":           service.PostInput{},
		"UploadsEnabled": h.services.Posts.UploadsEnabled(),
	})
}

// @Summary      Create a post
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      html
// @Param        title  formData  string  true   "Title"
// @Param        body   formData  string  false  "Body"
// @Param        make   formData  string  false  "Bike make"
// @Param        model  formData  string  false  "Bike model"
// @Param        year   formData  string  false  "Bike year"
// @Param        type   formData  string  false  "Bike type"
// @Param        image  formData  file    false  "Image, required when uploads are enabled"
// @Success      302
// @Failure      200  {string}  string  "form re-rendered with a flash message"
// @Router       /create [post]
func (h *Handler) create(c *gin.Context) {
	actor, _ := currentActor(c)
	form := h.bindPostForm(c)
	uploadsEnabled := h.services.Posts.UploadsEnabled()

	var upload *service.Upload
	if uploadsEnabled {
		u, part, closeUpload, err := readUpload(c)
		defer closeUpload()
		if err != nil {
			h.failPost(c, "post_upload_read_failed", 0, err)
			return
		}
		switch part {
		case imageMissing:
			h.flash(c, msgNoFilePart)
			c.Redirect(http.StatusFound, "/create")
			return
		case imageEmpty:
			h.flash(c, msgNoSelectedFile)
			c.Redirect(http.StatusFound, "/create")
			return
		}
		upload = u
	}

	_, err := h.services.Posts.Create(c.Request.Context(), actor, form.input(), upload)
	if err != nil {
		if ve, ok := service.AsValidation(err); ok {
			h.flash(c, ve.Message)
			h.render(c, http.StatusOK, "create.html", gin.H{
				"Form":           form.input(),
				"UploadsEnabled": uploadsEnabled,
			})
			return
		}
		h.failPost(c, "post_create_failed", 0, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) updateForm(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	actor, _ := currentActor(c)
	d, err := h.services.Posts.FetchPostAsOwner(c.Request.Context(), id, actor)
	if err != nil {
		h.failPost(c, "post_update_form_failed", id, err)
		return
	}
	h.renderUpdate(c, http.StatusOK, d, inputFromDetail(d))
}

func (h *Handler) renderUpdate(c *gin.Context, status int, d *models.PostDetail, in service.PostInput) {
	h.render(c, status, "update.html", gin.H{
		"PostID":         d.ID,
		"Image":          d.Image,
		"Form":           in,
		"UploadsEnabled": h.services.Posts.UploadsEnabled(),
	})
}

// @Summary      Update a post
// @Description  Only the author may update. An empty image field keeps the stored image.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      html
// @Param        id     path      int     true   "Post id"
// @Param        title  formData  string  true   "Title"
// @Param        body   formData  string  false  "Body"
// @Param        make   formData  string  false  "Bike make"
// @Param        model  formData  string  false  "Bike model"
// @Param        year   formData  string  false  "Bike year"
// @Param        type   formData  string  false  "Bike type"
// @Param        image  formData  file    false  "Replacement image"
// @Success      302
// @Failure      403
// @Failure      404
// @Router       /{id}/update [post]
func (h *Handler) update(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	actor, _ := currentActor(c)
	ctx := c.Request.Context()

	d, err := h.services.Posts.FetchPostAsOwner(ctx, id, actor)
	if err != nil {
		h.failPost(c, "post_update_failed", id, err)
		return
	}

	form := h.bindPostForm(c)
	var upload *service.Upload
	if h.services.Posts.UploadsEnabled() {
		u, part, closeUpload, err := readUpload(c)
		defer closeUpload()
		if err != nil {
			h.failPost(c, "post_upload_read_failed", id, err)
			return
		}
		if part == imageMissing {
			h.flash(c, msgNoFilePart)
			c.Redirect(http.StatusFound, fmt.Sprintf("/%d/update", id))
			return
		}
		upload = u
	}

	if err := h.services.Posts.Update(ctx, actor, id, form.input(), upload); err != nil {
		if ve, ok := service.AsValidation(err); ok {
			h.flash(c, ve.Message)
			h.renderUpdate(c, http.StatusOK, d, form.input())
			return
		}
		h.failPost(c, "post_update_failed", id, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// @Summary      Delete a post
// @Tags         posts
// @Produce      html
// @Param        id   path  int  true  "Post id"
// @Success      302
// @Failure      403
// @Failure      404
// @Router       /{id}/delete [post]
func (h *Handler) delete(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	actor, _ := currentActor(c)
	if err := h.services.Posts.Delete(c.Request.Context(), actor, id); err != nil {
		h.failPost(c, "post_delete_failed", id, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
