package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/courtlog/internal/db"
	"github.com/vbonduro/courtlog/internal/photostore/local"
	"github.com/vbonduro/courtlog/internal/service"
	"github.com/vbonduro/courtlog/internal/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	photos, err := local.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	repo := store.NewIssueStore(d, time.UTC, slog.Default())
	svc := service.NewIssueService(repo, photos, time.UTC, slog.Default())
	return NewServer(svc, photos, slog.Default()).Handler()
}

// issueFormBody builds the multipart body shared by create and update.
// photoData nil means no photo part.
func issueFormBody(t *testing.T, court, problem, reporter string, photoData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("court", court))
	require.NoError(t, mw.WriteField("problem", problem))
	require.NoError(t, mw.WriteField("reporter", reporter))
	if photoData != nil {
		part, err := mw.CreateFormFile("photo", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(photoData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 160, 120))))
	return buf.Bytes()
}

type issueJSON struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Court     string  `json:"court"`
	Problem   string  `json:"problem"`
	PhotoPath *string `json:"photo_path"`
	Reporter  string  `json:"reporter"`
}

func doRequest(t *testing.T, h http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createIssue(t *testing.T, h http.Handler, court, problem, reporter string, photoData []byte) issueJSON {
	t.Helper()
	body, contentType := issueFormBody(t, court, problem, reporter, photoData)
	rec := doRequest(t, h, http.MethodPost, "/issues", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var issue issueJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issue))
	return issue
}

func TestCreateAndListIssues(t *testing.T) {
	h := newTestServer(t)

	created := createIssue(t, h, "ALMA", "Net torn", "Sam", nil)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Date)
	assert.Nil(t, created.PhotoPath)

	rec := doRequest(t, h, http.MethodGet, "/issues", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var issues []issueJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, created.ID, issues[0].ID)
	assert.Equal(t, "Net torn", issues[0].Problem)
}

func TestListIssues_Empty(t *testing.T) {
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/issues", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateIssue_MissingFields(t *testing.T) {
	h := newTestServer(t)

	body, contentType := issueFormBody(t, "ALMA", "", "Sam", nil)
	rec := doRequest(t, h, http.MethodPost, "/issues", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateIssue_UnknownCourt(t *testing.T) {
	h := newTestServer(t)

	body, contentType := issueFormBody(t, "WIMBLEDON", "Net torn", "Sam", nil)
	rec := doRequest(t, h, http.MethodPost, "/issues", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateIssue_RejectsNonImagePhoto(t *testing.T) {
	h := newTestServer(t)

	body, contentType := issueFormBody(t, "ALMA", "Net torn", "Sam", []byte("definitely not an image"))
	rec := doRequest(t, h, http.MethodPost, "/issues", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateIssue(t *testing.T) {
	h := newTestServer(t)

	created := createIssue(t, h, "ALMA", "Net torn", "Sam", nil)

	body, contentType := issueFormBody(t, "ALMA", "Net torn, replaced", "Sam", nil)
	rec := doRequest(t, h, http.MethodPut, "/issues/"+created.ID, body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated issueJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Net torn, replaced", updated.Problem)
}

func TestUpdateIssue_NotFound(t *testing.T) {
	h := newTestServer(t)

	body, contentType := issueFormBody(t, "ALMA", "Net torn", "Sam", nil)
	rec := doRequest(t, h, http.MethodPut, "/issues/no-such-id", body, contentType)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteIssue(t *testing.T) {
	h := newTestServer(t)

	created := createIssue(t, h, "ALMA", "Net torn", "Sam", nil)

	rec := doRequest(t, h, http.MethodDelete, "/issues/"+created.ID, nil, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, "/issues/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/issues", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestPhotoRoundTrip(t *testing.T) {
	h := newTestServer(t)
	photo := testPNG(t)

	created := createIssue(t, h, "ALMA", "Net torn", "Sam", photo)
	require.NotNil(t, created.PhotoPath)

	rec := doRequest(t, h, http.MethodGet, "/issues/"+created.ID+"/photo", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, photo, rec.Body.Bytes())
}

func TestPhoto_NoneAttached(t *testing.T) {
	h := newTestServer(t)

	created := createIssue(t, h, "ALMA", "Net torn", "Sam", nil)

	rec := doRequest(t, h, http.MethodGet, "/issues/"+created.ID+"/photo", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestThumbnail(t *testing.T) {
	h := newTestServer(t)

	created := createIssue(t, h, "ALMA", "Net torn", "Sam", testPNG(t))

	rec := doRequest(t, h, http.MethodGet, "/issues/"+created.ID+"/thumbnail", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]*string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp["thumbnail"])
	assert.NotEmpty(t, *resp["thumbnail"])
}

func TestThumbnail_NoPhoto(t *testing.T) {
	h := newTestServer(t)

	created := createIssue(t, h, "ALMA", "Net torn", "Sam", nil)

	rec := doRequest(t, h, http.MethodGet, "/issues/"+created.ID+"/thumbnail", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]*string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp["thumbnail"])
}

func TestExportCSV(t *testing.T) {
	h := newTestServer(t)

	createIssue(t, h, "ALMA", "Net torn", "Sam", nil)
	createIssue(t, h, "HATTAN", "Light broken", "Alex", nil)

	rec := doRequest(t, h, http.MethodGet, "/export/csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "issues.csv")

	lines := bytes.Split(bytes.TrimRight(rec.Body.Bytes(), "\n"), []byte("\n"))
	assert.Len(t, lines, 3)
	assert.Equal(t, "id,date,court,problem,photo_path,reporter", string(lines[0]))
}

func TestExportSpreadsheet(t *testing.T) {
	h := newTestServer(t)

	createIssue(t, h, "ALMA", "Net torn", "Sam", nil)

	rec := doRequest(t, h, http.MethodGet, "/export/xlsx", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestExportPDF(t *testing.T) {
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/export/pdf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestListCourts(t *testing.T) {
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodGet, "/courts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var courts []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courts))
	assert.Contains(t, courts, "ALMA")
	assert.Contains(t, courts, "AR2 FITNESS FIRST")
	assert.Len(t, courts, 25)
}
