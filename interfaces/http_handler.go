// Package interfaces exposes the HTTP boundary: resume upload and result
// polling. The analysis itself happens asynchronously in the worker.
package interfaces

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-analyzer/domain"
	"resume-analyzer/extractor"
	"resume-analyzer/infrastructure"
)

// Publisher enqueues ingestion messages for the worker.
type Publisher interface {
	Publish(ctx context.Context, msg infrastructure.IngestMessage) error
}

type HTTPHandler struct {
	Jobs      domain.JobStore
	Postings  domain.PostingStore
	Queue     Publisher
	UploadDir string
	Logger    *slog.Logger
}

// NewHTTPHandler registers the upload and polling routes. All routes
// require the externally issued bearer token.
func NewHTTPHandler(router *gin.Engine, h *HTTPHandler, jwtSecret string) {
	authed := router.Group("/", AuthRequired(jwtSecret))
	authed.POST("/upload", h.Upload)
	authed.GET("/result/:id", h.GetResult)
}

// Upload accepts a resume file, stores it, creates the pending job and
// enqueues it for analysis. Returns immediately with the job id; clients
// poll /result/:id until the job is terminal.
func (h *HTTPHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume file is required"})
		return
	}

	// Defense in depth: the worker re-checks the format, but an unsupported
	// extension should never reach the queue at all.
	if _, err := extractor.ParseFormat(fileHeader.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file format"})
		return
	}

	var targetJobID *uint
	if raw := c.PostForm("posting_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid posting_id"})
			return
		}
		postingID := uint(id)
		if _, err := h.Postings.GetPosting(c.Request.Context(), postingID); err != nil {
			if errors.Is(err, domain.ErrPostingNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "job posting not found"})
				return
			}
			h.Logger.Error("loading posting", "posting_id", postingID, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job posting"})
			return
		}
		targetJobID = &postingID
	}

	dst := filepath.Join(h.UploadDir, uuid.NewString()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		h.Logger.Error("saving upload", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	job := domain.NewAnalysisJob(ownerID(c), dst, targetJobID)
	if err := h.Jobs.Create(c.Request.Context(), job); err != nil {
		h.Logger.Error("creating job", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create analysis job"})
		return
	}

	msg := infrastructure.IngestMessage{JobID: job.ID, FilePath: dst}
	if err := h.Queue.Publish(c.Request.Context(), msg); err != nil {
		h.Logger.Error("enqueueing job", "job_id", job.ID, "err", err)
		// The record exists but will never be picked up; fail it rather than
		// leave the client polling a job that cannot progress.
		if _, ferr := h.Jobs.Fail(c.Request.Context(), job.ID, "failed to queue analysis"); ferr != nil {
			h.Logger.Error("failing unqueued job", "job_id", job.ID, "err", ferr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue analysis"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// GetResult returns the job's status and, once terminal, its outcome. Only
// the fields in the public contract are exposed; extracted text and
// internal errors stay server-side.
func (h *HTTPHandler) GetResult(c *gin.Context) {
	job, err := h.Jobs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis job not found"})
		return
	}
	if err != nil {
		h.Logger.Error("loading job", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis job"})
		return
	}

	if job.OwnerID != ownerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your analysis job"})
		return
	}

	resp := gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	}

	switch job.Status {
	case domain.StatusCompleted:
		resp["result"] = gin.H{
			"score":          job.Score,
			"breakdown":      job.Breakdown,
			"skills":         job.Skills,
			"missing_skills": job.MissingSkills,
		}
	case domain.StatusFailed:
		resp["error"] = job.Error
	}

	c.JSON(http.StatusOK, resp)
}
