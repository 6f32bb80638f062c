package views

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/projectkeeper/project-keeper/internal/blobstore"
	"github.com/projectkeeper/project-keeper/internal/drafts"
	"github.com/projectkeeper/project-keeper/internal/projects/domain"
	"github.com/projectkeeper/project-keeper/internal/projects/repository"
	"github.com/projectkeeper/project-keeper/internal/projects/service"
)

type testApp struct {
	router *gin.Engine
	svc    *service.ProjectService
	db     *gorm.DB
}

func setup(t *testing.T) *testApp {
	t.Helper()
	return setupWithStore(t, func(s repository.Store) repository.Store { return s })
}

// setupWithStore lets a test wrap the record store, e.g. to inject failures.
func setupWithStore(t *testing.T, wrap func(repository.Store) repository.Store) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.OpenSQLite(":memory:")
	require.NoError(t, err)
	blobs, err := blobstore.NewLocalStore(t.TempDir(), "/files")
	require.NoError(t, err)

	svc := service.NewProjectService(wrap(repository.NewGormStore(db)), blobs)
	editor := service.NewEditor(svc, drafts.NewMemoryStore(time.Hour))

	tmpl, err := Templates()
	require.NoError(t, err)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	New(svc, editor, 1).Register(r)
	return &testApp{router: r, svc: svc, db: db}
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func (a *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) create(t *testing.T, in domain.ProjectInput) *domain.Project {
	t.Helper()
	p, err := a.svc.Create(context.Background(), in)
	require.NoError(t, err)
	return p
}

func TestIndex_Empty(t *testing.T) {
	app := setup(t)
	rr := app.get("/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Project Keeper")
	assert.Contains(t, rr.Body.String(), "No projects yet")
	assert.Contains(t, rr.Body.String(), `href="/projects/new"`)
}

func TestCreateAndList(t *testing.T) {
	app := setup(t)

	rr := app.post("/projects/new", url.Values{
		"name":            {"Keeper"},
		"status":          {"on_hold"},
		"repository_link": {"https://github.com/me/keeper"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	body := app.get("/").Body.String()
	assert.Contains(t, body, "Keeper")
	assert.Contains(t, body, "ON_HOLD")
	assert.Contains(t, body, "Local")
	assert.NotContains(t, body, "No projects yet")
}

func TestCreate_ErrorKeepsForm(t *testing.T) {
	app := setup(t)

	rr := app.post("/projects/new", url.Values{"name": {" "}, "local_path": {"/src/x"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Error creating project: project name is required")
	assert.Contains(t, rr.Body.String(), `value="/src/x"`)
}

func TestShow_NotFound(t *testing.T) {
	app := setup(t)
	rr := app.get("/projects/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Project Not Found")
	assert.Contains(t, rr.Body.String(), `href="/"`)
}

func TestShow_Placeholders(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Bare"})

	body := app.get("/projects/" + p.ID).Body.String()
	assert.Contains(t, body, "N/A")
	assert.Contains(t, body, "No notes yet...")
	assert.Contains(t, body, "No files attached.")
	assert.Contains(t, body, "No description provided.")
	assert.NotContains(t, body, `id="copy-path"`)
}

func TestShow_CopyPathButton(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper", LocalPath: "/src/keeper"})

	body := app.get("/projects/" + p.ID).Body.String()
	assert.Contains(t, body, `id="copy-path"`)
	assert.Contains(t, body, `data-path="/src/keeper"`)
	assert.Contains(t, body, "Copied!")
}

func TestEditSaveFlow(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper", Description: "v1"})

	rr := app.post("/projects/"+p.ID+"/edit", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	body := app.get("/projects/" + p.ID).Body.String()
	assert.Contains(t, body, "Save Changes")
	assert.Contains(t, body, `name="personal_notes"`)

	rr = app.post("/projects/"+p.ID+"/save", url.Values{
		"name":           {"Keeper"},
		"status":         {"active"},
		"description":    {"v1"},
		"personal_notes": {"ship it"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	body = app.get("/projects/" + p.ID).Body.String()
	assert.NotContains(t, body, "Save Changes")
	assert.Contains(t, body, "ship it")
}

func TestSave_ErrorStaysEditing(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})
	app.post("/projects/"+p.ID+"/edit", nil)

	rr := app.post("/projects/"+p.ID+"/save", url.Values{"name": {""}, "personal_notes": {"draft text"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "project name is required")
	assert.Contains(t, rr.Body.String(), "Save Changes")
	assert.Contains(t, rr.Body.String(), "draft text")
}

func TestCancelDiscards(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})
	app.post("/projects/"+p.ID+"/edit", nil)

	rr := app.post("/projects/"+p.ID+"/cancel", url.Values{"name": {"Changed"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	body := app.get("/projects/" + p.ID).Body.String()
	assert.NotContains(t, body, "Save Changes")
	assert.NotContains(t, body, "Changed")
}

func TestDelete(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})

	rr := app.post("/projects/"+p.ID+"/delete", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/projects/"+p.ID, rr.Header().Get("Location"))

	rr = app.post("/projects/"+p.ID+"/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, http.StatusNotFound, app.get("/projects/"+p.ID).Code)
}

func TestDelete_RejectedWhileEditing(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})
	app.post("/projects/"+p.ID+"/edit", nil)

	rr := app.post("/projects/"+p.ID+"/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), domain.ErrEditInProgress.Error())
	assert.Equal(t, http.StatusOK, app.get("/projects/"+p.ID).Code)
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, _ = fw.Write([]byte(content))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAttachment_DraftOnlyUntilSave(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})

	body, ct := multipartBody(t, map[string]string{"name": "Keeper"}, "plan.txt", "plan")
	req := httptest.NewRequest(http.MethodPost, "/projects/"+p.ID+"/attachment", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)

	app.post("/projects/"+p.ID+"/edit", nil)
	body, ct = multipartBody(t, map[string]string{"name": "Keeper", "personal_notes": "typed"}, "plan.txt", "plan")
	req = httptest.NewRequest(http.MethodPost, "/projects/"+p.ID+"/attachment", body)
	req.Header.Set("Content-Type", ct)
	rr = httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())

	page := app.get("/projects/" + p.ID).Body.String()
	assert.Contains(t, page, "File attached. Uploading a new one will replace it.")
	assert.Contains(t, page, "typed")

	stored, err := app.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AttachmentURL)

	app.post("/projects/"+p.ID+"/save", url.Values{"name": {"Keeper"}})
	stored, err = app.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(domain.Deref(stored.AttachmentURL), "/files/"+p.ID+"-"))
}

func TestAttachment_NoFileSelected(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})
	app.post("/projects/"+p.ID+"/edit", nil)

	body, ct := multipartBody(t, map[string]string{"name": "Keeper"}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/projects/"+p.ID+"/attachment", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), domain.ErrEmptyUpload.Error())
}

func (a *testApp) postMultipart(path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func TestAttachment_FailureKeepsTypedForm(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})
	app.post("/projects/"+p.ID+"/edit", nil)

	body, ct := multipartBody(t, map[string]string{
		"name":           "Keeper renamed",
		"personal_notes": "typed before upload",
	}, "", "")
	rr := app.postMultipart("/projects/"+p.ID+"/attachment", body, ct)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	page := rr.Body.String()
	assert.Contains(t, page, domain.ErrEmptyUpload.Error())
	assert.Contains(t, page, "typed before upload")
	assert.Contains(t, page, `value="Keeper renamed"`)
}

func TestSave_OversizedBodyRejected(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})
	app.post("/projects/"+p.ID+"/edit", nil)

	big := strings.Repeat("x", 2<<20)
	body, ct := multipartBody(t, map[string]string{"name": "Keeper"}, "huge.bin", big)
	rr := app.postMultipart("/projects/"+p.ID+"/save", body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, rr.Body.String(), "Save Changes")

	stored, err := app.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keeper", stored.Name)
}

func TestEdit_UnrecognisedStatusSurvivesSave(t *testing.T) {
	app := setup(t)
	p := app.create(t, domain.ProjectInput{Name: "Legacy"})
	require.NoError(t, app.db.Exec(`UPDATE projects SET status = ? WHERE id = ?`, "Shipped", p.ID).Error)

	app.post("/projects/"+p.ID+"/edit", nil)
	page := app.get("/projects/" + p.ID).Body.String()
	assert.Contains(t, page, `<option value="Shipped" selected>Shipped</option>`)

	rr := app.post("/projects/"+p.ID+"/save", url.Values{
		"name":        {"Legacy"},
		"status":      {"Shipped"},
		"description": {"edited"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())

	stored, err := app.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Status("Shipped"), stored.Status)
	assert.Equal(t, "edited", domain.Deref(stored.Description))
}

func TestLayout_SubmitGuardHonoursCancelledConfirm(t *testing.T) {
	app := setup(t)
	body := app.get("/").Body.String()
	assert.Contains(t, body, "if (event.defaultPrevented) return;")
}

// failingStore returns the configured errors and otherwise delegates.
type failingStore struct {
	repository.Store
	listErr, getErr, deleteErr error
}

func (s *failingStore) List(ctx context.Context) ([]domain.Project, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.Store.List(ctx)
}

func (s *failingStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Store.Get(ctx, id)
}

func (s *failingStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Store.Delete(ctx, id)
}

func setupFailing(t *testing.T) (*testApp, *failingStore) {
	t.Helper()
	fs := &failingStore{}
	app := setupWithStore(t, func(s repository.Store) repository.Store {
		fs.Store = s
		return fs
	})
	return app, fs
}

func TestIndex_StoreError(t *testing.T) {
	app, fs := setupFailing(t)
	fs.listErr = errors.New("permission denied for table projects")

	rr := app.get("/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Error: permission denied for table projects")
	assert.NotContains(t, rr.Body.String(), "No projects yet")
}

func TestDelete_StoreErrorStaysViewing(t *testing.T) {
	app, fs := setupFailing(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})
	fs.deleteErr = errors.New("permission denied for table projects")

	rr := app.post("/projects/"+p.ID+"/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "permission denied for table projects")
	assert.Contains(t, body, "Keeper")
	assert.NotContains(t, body, "Save Changes")

	fs.deleteErr = nil
	_, err := app.svc.Get(context.Background(), p.ID)
	assert.NoError(t, err)
}

func TestShow_LoadErrorShowsNotFound(t *testing.T) {
	app, fs := setupFailing(t)
	p := app.create(t, domain.ProjectInput{Name: "Keeper"})
	fs.getErr = errors.New("connection refused")

	rr := app.get("/projects/" + p.ID)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Project Not Found")
	assert.NotContains(t, rr.Body.String(), "connection refused")
}
