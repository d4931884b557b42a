package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shubham852v/ai-attendance/internal/auth"
	"github.com/shubham852v/ai-attendance/internal/capture"
	"github.com/shubham852v/ai-attendance/internal/record"
	"github.com/shubham852v/ai-attendance/internal/summary"
)

// Summarizer produces the free-text daily summary.
type Summarizer interface {
	DailySummary(ctx context.Context, day string, entries []summary.Entry) (string, error)
}

type Handler struct {
	capture    *capture.Controller
	records    *record.Service
	summarizer Summarizer // nil if no generative backend is configured

	jwtIssuer  string
	jwtKey     string
	sessionTTL time.Duration
}

func New(ctrl *capture.Controller, records *record.Service, summarizer Summarizer, jwtIssuer, jwtKey string, sessionTTL time.Duration) *Handler {
	return &Handler{
		capture:    ctrl,
		records:    records,
		summarizer: summarizer,
		jwtIssuer:  jwtIssuer,
		jwtKey:     jwtKey,
		sessionTTL: sessionTTL,
	}
}

// Register mounts all API routes on the engine. Everything except the
// session bootstrap requires a bearer session token.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.POST("/auth/session", h.CreateSession)

	authed := api.Group("")
	authed.Use(auth.RequireSession(h.jwtKey, h.jwtIssuer))

	authed.GET("/capture", h.GetCapture)
	authed.POST("/capture/camera", h.StartCamera)
	authed.POST("/capture/image", h.CaptureImage)
	authed.POST("/capture/classify", h.ClassifyImage)
	authed.POST("/capture/voice", h.VoiceInput)
	authed.POST("/capture/retake", h.Retake)

	authed.GET("/records", h.ListRecords)
	authed.GET("/records/export", h.ExportRecords)
	authed.GET("/records/summary", h.DailySummary)
	authed.GET("/records/:id/archives", h.ListArchives)
}

// ---------- Session ----------

type sessionRequest struct {
	Token string `json:"token"`
}

// CreateSession bootstraps an operator identity. A pre-supplied token is
// validated and exchanged; without one an anonymous session is minted so
// an unconfigured kiosk still works.
func (h *Handler) CreateSession(c *gin.Context) {
	var req sessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	sess, err := auth.Bootstrap(req.Token, h.jwtIssuer, h.jwtKey, h.sessionTTL)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      sess.Token,
		"subject":    sess.Subject,
		"role":       sess.Role,
		"expires_at": sess.ExpiresAt,
	})
}

// ---------- Capture workflow ----------

func (h *Handler) GetCapture(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"capture": h.capture.Snapshot()})
}

func (h *Handler) StartCamera(c *gin.Context) {
	h.runAction(c, h.capture.StartCamera)
}

func (h *Handler) CaptureImage(c *gin.Context) {
	h.runAction(c, h.capture.CaptureImage)
}

func (h *Handler) ClassifyImage(c *gin.Context) {
	h.runAction(c, h.capture.ProcessImage)
}

func (h *Handler) VoiceInput(c *gin.Context) {
	subject := auth.Subject(c)
	h.runAction(c, func(ctx context.Context) error {
		return h.capture.StartVoiceInput(ctx, subject)
	})
}

func (h *Handler) Retake(c *gin.Context) {
	h.runAction(c, h.capture.Retake)
}

// runAction executes one controller action and always answers with the
// refreshed snapshot so the client can render the resulting state.
func (h *Handler) runAction(c *gin.Context, action func(context.Context) error) {
	if err := action(c.Request.Context()); err != nil {
		c.JSON(captureStatus(err), gin.H{
			"error":   err.Error(),
			"capture": h.capture.Snapshot(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"capture": h.capture.Snapshot()})
}

func captureStatus(err error) int {
	switch {
	case errors.Is(err, capture.ErrBusy), errors.Is(err, capture.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, capture.ErrVoiceUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, capture.ErrClassifierUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// ---------- Records ----------

func (h *Handler) ListRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.records.List(c.Request.Context(), c.Query("person"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []record.Record{}
	}
	c.JSON(http.StatusOK, records)
}

// ExportRecords streams one day of records as an xlsx attendance sheet.
func (h *Handler) ExportRecords(c *gin.Context) {
	day := c.Query("date")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	records, err := h.records.ListDay(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	f, err := record.ExportXLSX(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build spreadsheet"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.xlsx", day))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		log.Printf("write spreadsheet: %v", err)
	}
}

// DailySummary answers with a short generated prose summary of one day.
func (h *Handler) DailySummary(c *gin.Context) {
	if h.summarizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "summary generation is not configured"})
		return
	}
	day := c.Query("date")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	records, err := h.records.ListDay(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	entries := make([]summary.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, summary.Entry{Name: r.PersonName, At: r.CreatedAt})
	}

	text, err := h.summarizer.DailySummary(c.Request.Context(), day, entries)
	if err != nil {
		log.Printf("daily summary: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "summary generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "total": len(records), "summary": text})
}

func (h *Handler) ListArchives(c *gin.Context) {
	archives, err := h.records.Archives(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if archives == nil {
		archives = []record.Archive{}
	}
	c.JSON(http.StatusOK, archives)
}
