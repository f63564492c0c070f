package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer/domain"
	"resume-analyzer/infrastructure"
)

const testSecret = "test-secret"

type fakePublisher struct {
	published []infrastructure.IngestMessage
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, msg infrastructure.IngestMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	raw, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func newTestRouter(t *testing.T, store *infrastructure.MemoryJobStore, pub Publisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHTTPHandler(router, &HTTPHandler{
		Jobs:      store,
		Postings:  store,
		Queue:     pub,
		UploadDir: t.TempDir(),
		Logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}, testSecret)
	return router
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload_createsJobAndEnqueues(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	pub := &fakePublisher{}
	router := newTestRouter(t, store, pub)

	body, contentType := multipartUpload(t, "resume.txt", "plenty of resume content here", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp struct {
		JobID  string           `json:"job_id"`
		Status domain.JobStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StatusPending, resp.Status)

	job, err := store.Get(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", job.OwnerID)
	assert.FileExists(t, job.SourceFilePath)

	require.Len(t, pub.published, 1)
	assert.Equal(t, resp.JobID, pub.published[0].JobID)
	assert.Equal(t, job.SourceFilePath, pub.published[0].FilePath)
}

func TestUpload_postingIDTargetsPosting(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	store.AddPosting(&domain.JobPosting{ID: 42, Title: "Backend Engineer", Skills: []string{"golang"}})
	router := newTestRouter(t, store, &fakePublisher{})

	body, contentType := multipartUpload(t, "resume.txt", "plenty of resume content here",
		map[string]string{"posting_id": "42"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	job, err := store.Get(context.Background(), resp.JobID)
	require.NoError(t, err)
	require.NotNil(t, job.TargetJobID)
	assert.Equal(t, uint(42), *job.TargetJobID)
}

func TestUpload_rejectsUnsupportedExtension(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	pub := &fakePublisher{}
	router := newTestRouter(t, store, pub)

	body, contentType := multipartUpload(t, "resume.bmp", "bitmap", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, pub.published)
}

func TestUpload_unknownPostingIs404(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	router := newTestRouter(t, store, &fakePublisher{})

	body, contentType := multipartUpload(t, "resume.txt", "content", map[string]string{"posting_id": "42"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload_queueFailureFailsJob(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	router := newTestRouter(t, store, pub)

	body, contentType := multipartUpload(t, "resume.txt", "content", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetResult_statusOnlyWhileRunning(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	router := newTestRouter(t, store, &fakePublisher{})

	job := domain.NewAnalysisJob("user-1", "/tmp/resume.txt", nil)
	job.Status = domain.StatusProcessing
	require.NoError(t, store.Create(context.Background(), job))

	req := httptest.NewRequest(http.MethodGet, "/result/"+job.ID, nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "processing", resp["status"])
	assert.NotContains(t, resp, "result")
	assert.NotContains(t, resp, "error")
}

func TestGetResult_completedIncludesResult(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	router := newTestRouter(t, store, &fakePublisher{})

	job := domain.NewAnalysisJob("user-1", "/tmp/resume.txt", nil)
	job.Status = domain.StatusCompleted
	job.Score = 68
	job.Breakdown = &domain.ScoreBreakdown{Skill: 75, Experience: 60, Education: 60, Format: 70}
	job.Skills = []string{"Python", "SQL"}
	job.MissingSkills = []string{"kafka"}
	job.ExtractedText = "never exposed"
	require.NoError(t, store.Create(context.Background(), job))

	req := httptest.NewRequest(http.MethodGet, "/result/"+job.ID, nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string `json:"status"`
		Result struct {
			Score         int      `json:"score"`
			Skills        []string `json:"skills"`
			MissingSkills []string `json:"missing_skills"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 68, resp.Result.Score)
	assert.Equal(t, []string{"Python", "SQL"}, resp.Result.Skills)
	assert.Equal(t, []string{"kafka"}, resp.Result.MissingSkills)
	assert.NotContains(t, rec.Body.String(), "never exposed")
}

func TestGetResult_failedIncludesReason(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	router := newTestRouter(t, store, &fakePublisher{})

	job := domain.NewAnalysisJob("user-1", "/tmp/resume.txt", nil)
	job.Status = domain.StatusFailed
	job.Error = "no readable text found in file"
	require.NoError(t, store.Create(context.Background(), job))

	req := httptest.NewRequest(http.MethodGet, "/result/"+job.ID, nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp["status"])
	assert.Equal(t, "no readable text found in file", resp["error"])
}

func TestGetResult_otherUsersJobIsForbidden(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	router := newTestRouter(t, store, &fakePublisher{})

	job := domain.NewAnalysisJob("user-1", "/tmp/resume.txt", nil)
	require.NoError(t, store.Create(context.Background(), job))

	req := httptest.NewRequest(http.MethodGet, "/result/"+job.ID, nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "someone-else"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetResult_unknownJobIs404(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	router := newTestRouter(t, store, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/result/ghost", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuth_missingTokenIs401(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	router := newTestRouter(t, store, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/result/anything", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_wrongSecretIs401(t *testing.T) {
	store := infrastructure.NewMemoryJobStore()
	router := newTestRouter(t, store, &fakePublisher{})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
	raw, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/result/anything", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
