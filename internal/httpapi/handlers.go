package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"callwatch/internal/auth"
	"callwatch/internal/call"
	"callwatch/internal/engine"
	"callwatch/internal/history"
	"callwatch/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection. Keep these thin:
// parse/validate input, call the engine, return JSON.
type Handlers struct {
	Engine  *engine.Engine
	History *history.Service
	Auth    *auth.Manager
}

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Raw notification ingest ---

type eventRequest struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Type        string `json:"type"`
}

// IngestEvent accepts one raw call-state notification from the platform
// observer bridge. A malformed type is a parse failure: logged, dropped,
// and reported to the bridge; it never reaches the engine.
func (h Handlers) IngestEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := call.ParseEventType(req.Type)
	if err != nil {
		logger.FromGin(c).Warn("malformed call event dropped", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid event type"})
		return
	}
	h.Engine.Ingest(call.RawEvent{ID: req.ID, PhoneNumber: req.PhoneNumber, Type: t})
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// --- App lifecycle signal ---

type lifecycleRequest struct {
	State string `json:"state"`
}

func (h Handlers) Lifecycle(c *gin.Context) {
	var req lifecycleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.State == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.Engine.OnLifecycle(engine.LifecycleState(req.State))
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// --- Calls ---

type startCallRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type callView struct {
	CallID          string    `json:"call_id"`
	PlatformID      string    `json:"platform_id,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	Placement       string    `json:"placement"`
	Status          string    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	Completed       bool      `json:"completed"`
	DurationSeconds int       `json:"duration_seconds"`
}

func viewOf(c *call.Call) callView {
	return callView{
		CallID:          c.LocalID(),
		PlatformID:      c.PlatformID(),
		PhoneNumber:     c.PhoneNumber(),
		Placement:       string(c.Placement()),
		Status:          string(c.Status()),
		StartedAt:       c.StartedAt(),
		Completed:       c.Completed(),
		DurationSeconds: int(c.Duration() / time.Second),
	}
}

func (h Handlers) StartCall(c *gin.Context) {
	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	// The dial outcome outlives this request; detach from its cancellation.
	tracked, err := h.Engine.StartCall(context.WithoutCancel(c.Request.Context()), req.PhoneNumber)
	if errors.Is(err, engine.ErrEmptyNumber) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "phone number required"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call could not be placed"})
		return
	}
	c.JSON(http.StatusCreated, viewOf(tracked))
}

func (h Handlers) ActiveCalls(c *gin.Context) {
	active := h.Engine.ActiveCalls()
	out := make([]callView, 0, len(active))
	for _, tracked := range active {
		out = append(out, viewOf(tracked))
	}
	c.JSON(http.StatusOK, gin.H{"calls": out})
}

type eventView struct {
	CallID      string    `json:"call_id"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Placement   string    `json:"placement"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

// EventFeed streams the unified call event stream as server-sent events.
func (h Handlers) EventFeed(c *gin.Context) {
	sub := h.Engine.Events()
	defer sub.Cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("call_event", eventView{
				CallID:      ev.Call.LocalID(),
				PhoneNumber: ev.Call.PhoneNumber(),
				Placement:   string(ev.Call.Placement()),
				Status:      string(ev.Status),
				At:          ev.At,
			})
			return true
		}
	})
}

// --- History ---

func (h Handlers) HistorySummary(c *gin.Context) {
	if h.History == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "history not configured"})
		return
	}

	now := time.Now().UTC()
	from, to := now.Add(-24*time.Hour), now
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
	}

	sum, err := h.History.Summarize(c.Request.Context(), from, to)
	if errors.Is(err, history.ErrInvalidRange) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("history summary failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// --- Auth ---

type tokenRequest struct {
	Operator string `json:"operator"`
}

// Token issues an operator access token.
//
// NOTE: skeleton-only endpoint; real deployments must validate credentials
// before issuing.
func (h Handlers) Token(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Operator == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "operator required"})
		return
	}
	tok, err := h.Auth.IssueAccessToken(time.Now(), req.Operator)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": tok})
}
