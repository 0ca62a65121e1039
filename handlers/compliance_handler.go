package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"arccs-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ComplianceHandler handles HTTP requests for compliance runs and history
type ComplianceHandler struct {
	runService *service.RunService
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(runService *service.RunService) *ComplianceHandler {
	return &ComplianceHandler{runService: runService}
}

type runComplianceBody struct {
	CorpusID           *string `json:"corpus_id"`
	CorpusDocumentID   *string `json:"corpus_document_id"`
	ProposalText       string  `json:"proposal_text"`
	ProposalDocumentID *string `json:"proposal_document_id"`
	SaveReport         *bool   `json:"save_report"`
}

// RunCompliance handles POST /api/compliance/run
func (h *ComplianceHandler) RunCompliance(c *gin.Context) {
	var body runComplianceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	req := service.RunComplianceRequest{
		ProposalText: body.ProposalText,
		SaveReport:   body.SaveReport,
	}

	var parseErr error
	req.CorpusID, parseErr = parseOptionalID(body.CorpusID)
	if parseErr == nil {
		req.CorpusDocumentID, parseErr = parseOptionalID(body.CorpusDocumentID)
	}
	if parseErr == nil {
		req.ProposalDocumentID, parseErr = parseOptionalID(body.ProposalDocumentID)
	}
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": parseErr.Error(),
			},
		})
		return
	}

	result, err := h.runService.RunCompliance(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCorpusNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CORPUS_NOT_FOUND",
					"message": "Regulation corpus not found",
				},
			})
		case errors.Is(err, service.ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DOCUMENT_NOT_FOUND",
					"message": "Document not found",
				},
			})
		case errors.Is(err, service.ErrNoRegulations):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_REGULATIONS",
					"message": "No regulations available to check",
				},
			})
		case errors.Is(err, service.ErrNoProposalText):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_PROPOSAL",
					"message": "Provide proposal_text or proposal_document_id",
				},
			})
		case errors.Is(err, service.ErrNoRegulationsInFile):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_CORPUS_FILE",
					"message": "No regulation list found in corpus file",
				},
			})
		case errors.Is(err, service.ErrUnsupportedDocument):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNSUPPORTED_DOCUMENT",
					"message": err.Error(),
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RUN_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Run,
	})
}

type prepareProposalBody struct {
	ProposalText       string  `json:"proposal_text"`
	ProposalDocumentID *string `json:"proposal_document_id"`
}

// PrepareProposal handles POST /api/compliance/proposal
func (h *ComplianceHandler) PrepareProposal(c *gin.Context) {
	var body prepareProposalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	documentID, err := parseOptionalID(body.ProposalDocumentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": err.Error(),
			},
		})
		return
	}

	preview, err := h.runService.PrepareProposal(c.Request.Context(), service.PrepareProposalRequest{
		ProposalText:       body.ProposalText,
		ProposalDocumentID: documentID,
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
		case errors.Is(err, service.ErrNoProposalText):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_PROPOSAL",
					"message": "Provide proposal_text or proposal_document_id",
				},
			})
		case errors.Is(err, service.ErrUnsupportedDocument):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNSUPPORTED_DOCUMENT",
					"message": err.Error(),
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROPOSAL_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    preview,
	})
}

// ExportRun handles GET /api/compliance/runs/:id/export. The saved run is
// returned as a downloadable JSON attachment.
func (h *ComplianceHandler) ExportRun(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid run ID format",
			},
		})
		return
	}

	result, err := h.runService.GetRun(c.Request.Context(), service.GetRunRequest{RunID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Compliance run not found",
			},
		})
		return
	}

	payload, err := json.MarshalIndent(result.Run, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPORT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	filename := fmt.Sprintf("compliance_report_%s.json", id)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", payload)
}

// GetRun handles GET /api/compliance/runs/:id
func (h *ComplianceHandler) GetRun(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid run ID format",
			},
		})
		return
	}

	result, err := h.runService.GetRun(c.Request.Context(), service.GetRunRequest{RunID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Compliance run not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Run,
	})
}

// DeleteRun handles DELETE /api/compliance/runs/:id
func (h *ComplianceHandler) DeleteRun(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid run ID format",
			},
		})
		return
	}

	if err := h.runService.DeleteRun(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Compliance run not found",
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

// ListRuns handles GET /api/compliance/history
func (h *ComplianceHandler) ListRuns(c *gin.Context) {
	runs, err := h.runService.ListRuns(c.Request.Context())
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
		"data":    runs,
	})
}

// ClearRuns handles DELETE /api/compliance/history
func (h *ComplianceHandler) ClearRuns(c *gin.Context) {
	if err := h.runService.ClearRuns(c.Request.Context()); err != nil {
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
		"data": gin.H{
			"cleared": true,
		},
	})
}

func parseOptionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, errors.New("invalid UUID: " + *raw)
	}
	return &id, nil
}
