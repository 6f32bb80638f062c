package views

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projectkeeper/project-keeper/internal/logging"
	"github.com/projectkeeper/project-keeper/internal/projects/domain"
	"github.com/projectkeeper/project-keeper/internal/projects/service"
)

type Handler struct {
	projects    *service.ProjectService
	editor      *service.Editor
	maxUploadMB int
}

func New(projects *service.ProjectService, editor *service.Editor, maxUploadMB int) *Handler {
	return &Handler{projects: projects, editor: editor, maxUploadMB: maxUploadMB}
}

type page struct {
	Title    string
	Error    string
	Projects []domain.Project
	Session  *service.Session
	Form     domain.ProjectInput
	Statuses []domain.Status
}

// Register attaches the HTML pages. The engine must have Templates() set.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.index)
	r.GET("/projects/new", h.newForm)
	r.POST("/projects/new", h.create)
	r.GET("/projects/:id", h.show)
	r.POST("/projects/:id/edit", h.edit)
	r.POST("/projects/:id/save", h.save)
	r.POST("/projects/:id/cancel", h.cancel)
	r.POST("/projects/:id/delete", h.delete)
	r.POST("/projects/:id/attachment", h.attach)
}

func (h *Handler) index(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context())
	if err != nil {
		logging.New(c.Request.Context()).Error("views.index", err)
		c.HTML(http.StatusOK, "list.html", page{Title: "Dashboard", Error: err.Error()})
		return
	}
	c.HTML(http.StatusOK, "list.html", page{Title: "Dashboard", Projects: items})
}

func (h *Handler) newForm(c *gin.Context) {
	c.HTML(http.StatusOK, "new.html", page{
		Title:    "New Project",
		Form:     domain.ProjectInput{Status: domain.StatusActive},
		Statuses: domain.Statuses,
	})
}

func (h *Handler) create(c *gin.Context) {
	form := readForm(c)
	if _, err := h.projects.Create(c.Request.Context(), form); err != nil {
		c.HTML(errorStatus(err), "new.html", page{
			Title:    "New Project",
			Error:    err.Error(),
			Form:     form,
			Statuses: domain.Statuses,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) show(c *gin.Context) {
	sess, err := h.editor.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.notFound(c, err)
		return
	}
	h.detail(c, http.StatusOK, sess, "")
}

func (h *Handler) edit(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.editor.BeginEdit(c.Request.Context(), id); err != nil {
		h.fail(c, id, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/projects/"+id)
}

func (h *Handler) save(c *gin.Context) {
	id := c.Param("id")
	// the edit form is multipart because it carries the file input
	if err := parseLimitedForm(c, h.maxUploadMB); err != nil {
		h.fail(c, id, err)
		return
	}
	sess, err := h.editor.Save(c.Request.Context(), id, readForm(c))
	if err != nil {
		if sess != nil {
			h.detail(c, errorStatus(err), sess, err.Error())
			return
		}
		h.fail(c, id, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/projects/"+id)
}

func (h *Handler) cancel(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.editor.Cancel(c.Request.Context(), id); err != nil {
		h.fail(c, id, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/projects/"+id)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	if c.PostForm("confirm") != "yes" {
		c.Redirect(http.StatusSeeOther, "/projects/"+id)
		return
	}
	if err := h.editor.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, id, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) attach(c *gin.Context) {
	id := c.Param("id")
	if err := parseLimitedForm(c, h.maxUploadMB); err != nil {
		h.fail(c, id, err)
		return
	}

	var (
		filename, contentType string
		body                  io.Reader
	)
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		f, oerr := fh.Open()
		if oerr != nil {
			h.fail(c, id, oerr)
			return
		}
		defer f.Close()
		filename, contentType, body = fh.Filename, fh.Header.Get("Content-Type"), f
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// an empty file input posts no file part
	default:
		h.fail(c, id, err)
		return
	}

	form := readForm(c)
	sess, err := h.editor.UploadAttachment(c.Request.Context(), id, &form, filename, contentType, body)
	if err != nil {
		if sess != nil {
			form.AttachmentURL = sess.Form.AttachmentURL
			sess.Form = form
			h.detail(c, errorStatus(err), sess, err.Error())
			return
		}
		h.fail(c, id, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/projects/"+id)
}

// fail shows err on the project's current page, or the not-found page if
// the project itself cannot be loaded.
func (h *Handler) fail(c *gin.Context, id string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		h.notFound(c, err)
		return
	}
	sess, oerr := h.editor.Open(c.Request.Context(), id)
	if oerr != nil {
		h.notFound(c, oerr)
		return
	}
	h.detail(c, errorStatus(err), sess, err.Error())
}

func (h *Handler) detail(c *gin.Context, code int, sess *service.Session, msg string) {
	c.HTML(code, "detail.html", page{
		Title:    sess.Project.Name,
		Error:    msg,
		Session:  sess,
		Statuses: domain.Statuses,
	})
}

func (h *Handler) notFound(c *gin.Context, err error) {
	if !errors.Is(err, domain.ErrNotFound) {
		logging.New(c.Request.Context()).Errorf("views.detail", "project_id=%s error=%v", c.Param("id"), err)
	}
	c.HTML(http.StatusNotFound, "notfound.html", page{Title: "Project Not Found"})
}

// parseLimitedForm caps the request body at maxUploadMB and parses it, so
// an oversized body surfaces as *http.MaxBytesError instead of empty fields.
func parseLimitedForm(c *gin.Context, maxUploadMB int) error {
	limit := int64(maxUploadMB) << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	err := c.Request.ParseMultipartForm(limit)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

func readForm(c *gin.Context) domain.ProjectInput {
	link := c.PostForm("repository_link")
	if link == "" {
		link = c.PostForm("repo_link")
	}
	return domain.ProjectInput{
		Name:           c.PostForm("name"),
		Description:    c.PostForm("description"),
		Status:         domain.Status(c.PostForm("status")),
		RepositoryLink: link,
		LocalPath:      c.PostForm("local_path"),
		PersonalNotes:  c.PostForm("personal_notes"),
	}
}

func errorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotEditing), errors.Is(err, domain.ErrEditInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
