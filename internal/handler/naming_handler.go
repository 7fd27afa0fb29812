package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"filewise/internal/fingerprint"
	"filewise/internal/naming"
)

// NamingHandler exposes the document naming and fingerprint helpers so
// clients can preview codes before filing.
type NamingHandler struct{}

// NewNamingHandler creates a new NamingHandler.
func NewNamingHandler() *NamingHandler {
	return &NamingHandler{}
}

// Generate handles POST /api/v1/naming/generate
func (h *NamingHandler) Generate(c *gin.Context) {
	var req GenerateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
			return
		}
		date = d
	}

	code := naming.Generate(naming.GenerateInput{
		Shortcode:  req.Shortcode,
		Category:   req.Category,
		IsInternal: req.IsInternal,
		Initials:   req.Initials,
		Version:    req.Version,
		Date:       date,
	})
	RespondOK(c, gin.H{
		"document_code": code,
		"base_pattern":  naming.BasePattern(req.Shortcode, req.Category, req.IsInternal),
	})
}

// Parse handles GET /api/v1/naming/parse?name=
func (h *NamingHandler) Parse(c *gin.Context) {
	parsed, ok := naming.Parse(c.Query("name"))
	if !ok {
		RespondError(c, http.StatusUnprocessableEntity, "UNPARSABLE_NAME", "name does not follow the document code format")
		return
	}
	RespondOK(c, parsed)
}

// NextVersion handles POST /api/v1/naming/next-version
func (h *NamingHandler) NextVersion(c *gin.Context) {
	var req NextVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	RespondOK(c, gin.H{"version": naming.NextVersion(req.Existing, req.Significant)})
}

// Fingerprint handles POST /api/v1/naming/fingerprint
func (h *NamingHandler) Fingerprint(c *gin.Context) {
	var req FingerprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	RespondOK(c, fingerprint.Compute(req.Content, req.FileName))
}
