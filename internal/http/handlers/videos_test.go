package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ytlearn/backend/internal/pipeline"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"

	"github.com/ytlearn/backend/internal/domain"
)

type fakeVideoRepoForHandler struct {
	byExternalID map[string]*domain.Video
	deleteErr    error
}

func (f *fakeVideoRepoForHandler) Insert(dbc dbctx.Context, row *domain.Video) (*domain.Video, error) {
	return row, nil
}
func (f *fakeVideoRepoForHandler) GetByID(dbc dbctx.Context, id uint) (*domain.Video, error) {
	return nil, nil
}
func (f *fakeVideoRepoForHandler) GetByExternalID(dbc dbctx.Context, externalID string) (*domain.Video, error) {
	return f.byExternalID[externalID], nil
}
func (f *fakeVideoRepoForHandler) List(dbc dbctx.Context, status string, limit, offset int) ([]*domain.Video, error) {
	return nil, nil
}
func (f *fakeVideoRepoForHandler) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	return nil
}
func (f *fakeVideoRepoForHandler) Delete(dbc dbctx.Context, id uint, cascade bool) error {
	return f.deleteErr
}

type fakeDownloadService struct {
	statusByURL map[string]string
}

func (f *fakeDownloadService) DownloadVideo(ctx context.Context, rawURL string) pipeline.DownloadItemResult {
	status := f.statusByURL[rawURL]
	if status == "" {
		status = pipeline.DownloadStatusFailed
	}
	return pipeline.DownloadItemResult{URL: rawURL, Status: status}
}

func TestVideoHandler_Download_TallysCountsAcrossBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	download := &fakeDownloadService{statusByURL: map[string]string{
		"https://youtu.be/aaaaaaaaaaa": pipeline.DownloadStatusSuccess,
		"https://youtu.be/bbbbbbbbbbb": pipeline.DownloadStatusDuplicate,
		"https://youtu.be/ccccccccccc": pipeline.DownloadStatusFailed,
	}}
	h := NewVideoHandler(&fakeVideoRepoForHandler{}, download)

	body, _ := json.Marshal(downloadRequest{URLs: []string{
		"https://youtu.be/aaaaaaaaaaa",
		"https://youtu.be/bbbbbbbbbbb",
		"https://youtu.be/ccccccccccc",
	}})
	req := httptest.NewRequest(http.MethodPost, "/api/videos/download", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	h.Download(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if out["total"].(float64) != 3 || out["successful"].(float64) != 1 || out["duplicates"].(float64) != 1 || out["failed"].(float64) != 1 {
		t.Fatalf("unexpected tallies: %+v", out)
	}
}

func TestVideoHandler_Download_RejectsEmptyURLList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewVideoHandler(&fakeVideoRepoForHandler{}, &fakeDownloadService{})

	body, _ := json.Marshal(downloadRequest{URLs: nil})
	req := httptest.NewRequest(http.MethodPost, "/api/videos/download", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	h.Download(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVideoHandler_Get_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewVideoHandler(&fakeVideoRepoForHandler{byExternalID: map[string]*domain.Video{}}, &fakeDownloadService{})

	req := httptest.NewRequest(http.MethodGet, "/api/videos/missing", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Params = gin.Params{{Key: "external_id", Value: "missing"}}

	h.Get(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVideoHandler_Delete_DependencyViolationReturns409(t *testing.T) {
	gin.SetMode(gin.TestMode)
	videos := &fakeVideoRepoForHandler{
		byExternalID: map[string]*domain.Video{"vid1": {ID: 1, ExternalID: "vid1"}},
		deleteErr: apperr.NewDependencyViolationError("video has dependents", []apperr.DependentResource{
			{Type: "transcription", ID: 5},
		}),
	}
	h := NewVideoHandler(videos, &fakeDownloadService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/videos/vid1", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Params = gin.Params{{Key: "external_id", Value: "vid1"}}

	h.Delete(c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
