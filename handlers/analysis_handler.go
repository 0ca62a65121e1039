package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"arccs-backend/repository"
	"arccs-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalysisHandler handles HTTP requests for regulation extraction jobs and
// the corpora they produce
type AnalysisHandler struct {
	pipelineService *service.PipelineService
	corpusRepo      *repository.CorpusRepository
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(pipelineService *service.PipelineService, corpusRepo *repository.CorpusRepository) *AnalysisHandler {
	return &AnalysisHandler{
		pipelineService: pipelineService,
		corpusRepo:      corpusRepo,
	}
}

// StartAnalysis handles POST /api/regulations/analyze
func (h *AnalysisHandler) StartAnalysis(c *gin.Context) {
	var body struct {
		DocumentID string `json:"document_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "document_id is required",
			},
		})
		return
	}

	documentID, err := uuid.Parse(body.DocumentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	result, err := h.pipelineService.StartAnalysis(c.Request.Context(), service.StartAnalysisRequest{
		DocumentID: documentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DOCUMENT_NOT_FOUND",
					"message": "Document not found",
				},
			})
		case errors.Is(err, service.ErrWrongDocumentRole):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "WRONG_DOCUMENT_ROLE",
					"message": "Only regulation documents can be analyzed",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "JOB_CREATION_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	// Spawn background goroutine for actual processing
	// Use background context (not request context) to avoid cancellation
	go func() {
		bgCtx := context.Background()
		if err := h.pipelineService.ProcessAnalysis(bgCtx, result.JobID); err != nil {
			// Error is stored in job.ErrorMessage; clients poll status
			log.Printf("Analysis job %s failed: %v", result.JobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id": result.JobID,
		},
	})
}

// GetJobStatus handles GET /api/regulations/jobs/:id
func (h *AnalysisHandler) GetJobStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	result, err := h.pipelineService.GetAnalysisStatus(c.Request.Context(), service.GetAnalysisStatusRequest{JobID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "JOB_NOT_FOUND",
				"message": "Analysis job not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Job,
	})
}

// ListCorpora handles GET /api/regulations/corpora
func (h *AnalysisHandler) ListCorpora(c *gin.Context) {
	corpora, err := h.corpusRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    corpora,
	})
}

// GetCorpus handles GET /api/regulations/corpora/:id
func (h *AnalysisHandler) GetCorpus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid corpus ID format",
			},
		})
		return
	}

	corpus, err := h.corpusRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Corpus not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    corpus,
	})
}

// DeleteCorpus handles DELETE /api/regulations/corpora/:id
func (h *AnalysisHandler) DeleteCorpus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid corpus ID format",
			},
		})
		return
	}

	if err := h.corpusRepo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Corpus not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deleted": true,
		},
	})
}

// GetDocumentJob handles GET /api/documents/:id/job. It returns the most
// recent analysis job for a document, so a client can resume polling after
// losing the job ID.
func (h *AnalysisHandler) GetDocumentJob(c *gin.Context) {
	idStr := c.Param("id")
	documentID, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	job, err := h.pipelineService.GetDocumentJob(c.Request.Context(), documentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "No analysis job for this document",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

// GetLatestCorpus handles GET /api/regulations/corpora/latest
func (h *AnalysisHandler) GetLatestCorpus(c *gin.Context) {
	corpus, err := h.corpusRepo.GetLatest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "No corpus has been extracted yet",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    corpus,
	})
}
