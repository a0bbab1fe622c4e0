package server

import (
	"net/http"
	"strings"

	"soa-reconciliation-service/internal/models"
	"soa-reconciliation-service/internal/reconciler"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// matchRequest is the payload for ad hoc matching of caller-supplied lines
type matchRequest struct {
	Lines    []*models.SOALine `json:"lines" binding:"required"`
	Parallel bool              `json:"parallel"`
}

// batchResponse is the response shape shared by both reconciliation routes
type batchResponse struct {
	BatchID  string                `json:"batchId"`
	VendorID string                `json:"vendorId"`
	Results  []*models.MatchResult `json:"results"`
	Summary  *reconciler.Summary   `json:"summary"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleMatch classifies the SOA lines supplied in the request body against
// the vendor's invoice ledger
func (s *Server) handleMatch(c *gin.Context) {
	vendorID := strings.TrimSpace(c.Param("vendorId"))
	if vendorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vendor ID is required"})
		return
	}

	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	s.respondWithBatch(c, vendorID, req.Lines, req.Parallel)
}

// handleRun loads the vendor's pending SOA lines and classifies them
func (s *Server) handleRun(c *gin.Context) {
	vendorID := strings.TrimSpace(c.Param("vendorId"))
	if vendorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vendor ID is required"})
		return
	}

	if s.soaLines == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no SOA line source configured"})
		return
	}

	lines, err := s.soaLines.ListPendingByVendor(c.Request.Context(), vendorID)
	if err != nil {
		s.log.WithError(err).Error("failed to load pending SOA lines")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pending SOA lines"})
		return
	}

	s.respondWithBatch(c, vendorID, lines, s.cfg.Matching.Workers > 1)
}

func (s *Server) respondWithBatch(c *gin.Context, vendorID string, lines []*models.SOALine, parallel bool) {
	ctx := c.Request.Context()

	var (
		results []*models.MatchResult
		err     error
	)

	if parallel && s.cfg.Matching.Workers > 1 {
		results, err = s.engine.BatchMatchSOALinesParallel(ctx, lines, vendorID, s.cfg.Matching.Workers)
		if err != nil {
			s.log.WithError(err).Error("parallel matching failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "matching failed"})
			return
		}
	} else {
		results = s.engine.BatchMatchSOALines(ctx, lines, vendorID)
	}

	c.JSON(http.StatusOK, batchResponse{
		BatchID:  uuid.NewString(),
		VendorID: vendorID,
		Results:  results,
		Summary:  reconciler.Summarize(lines, results),
	})
}
