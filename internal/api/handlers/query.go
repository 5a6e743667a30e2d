package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Ayash-Bera/medquery/internal/container"
	"github.com/Ayash-Bera/medquery/internal/health"
	"github.com/Ayash-Bera/medquery/internal/models"
	"github.com/Ayash-Bera/medquery/internal/services"
	"github.com/Ayash-Bera/medquery/internal/session"
	"github.com/Ayash-Bera/medquery/internal/view"
	"github.com/Ayash-Bera/medquery/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const SessionCookie = "medquery_session"

// statusWindow is how far back the history status counts reach.
const statusWindow = 24 * time.Hour

type QueryHandler struct {
	sessions *session.Registry
	history  *services.HistoryService
	health   *health.HealthChecker
	logger   *logrus.Logger
}

// NewQueryHandler wires the web surface. history may be nil when no
// database is configured.
func NewQueryHandler(
	sessions *session.Registry,
	history *services.HistoryService,
	checker *health.HealthChecker,
	logger *logrus.Logger,
) *QueryHandler {
	return &QueryHandler{
		sessions: sessions,
		history:  history,
		health:   checker,
		logger:   logger,
	}
}

// Index renders the form, the error banner and the response panel.
func (h *QueryHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", view.NewPage(h.currentState(c)))
}

// SubmitForm starts a submission and redirects back to the page, which
// polls until the result lands.
func (h *QueryHandler) SubmitForm(c *gin.Context) {
	sessionID := h.sessionID(c)
	qc := h.sessions.Get(sessionID)

	query := c.PostForm("query")
	h.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"query_len":  len(query),
	}).Info("Form submitted")

	// The submission outlives this request.
	qc.SubmitQueryAsync(context.WithoutCancel(c.Request.Context()), container.QueryData{Query: query})

	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitJSON runs one submission synchronously and returns the resulting state.
func (h *QueryHandler) SubmitJSON(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid query request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	qc := h.sessions.Get(h.sessionID(c))
	state := qc.SubmitQuery(c.Request.Context(), container.QueryData{Query: req.Query})

	utils.SuccessResponse(c, http.StatusOK, "Query processed", state)
}

// State returns the current UI state of the caller's session.
func (h *QueryHandler) State(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Current state", h.currentState(c))
}

// currentState reads the session's state without creating one; a visitor
// who never submitted sees the empty form.
func (h *QueryHandler) currentState(c *gin.Context) container.UIState {
	id, ok := existingSessionID(c)
	if !ok {
		return container.UIState{}
	}
	qc, ok := h.sessions.Lookup(id)
	if !ok {
		return container.UIState{}
	}
	return qc.State()
}

// History lists recent query records. scope=session restricts it to the
// caller's own submissions.
func (h *QueryHandler) History(c *gin.Context) {
	if h.history == nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "History is disabled", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultHistoryLimit)))

	var (
		records []models.QueryRecord
		err     error
	)
	if c.Query("scope") == "session" {
		if id, ok := existingSessionID(c); ok {
			records, err = h.history.ForSession(c.Request.Context(), id, limit)
		}
	} else {
		records, err = h.history.Recent(c.Request.Context(), limit)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load history")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load history", nil)
		return
	}

	resp := models.HistoryResponse{
		Records: records,
		Total:   len(records),
		Window:  statusWindow.String(),
	}
	counts, err := h.history.StatusCounts(c.Request.Context(), statusWindow)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to count query statuses")
	} else {
		resp.StatusCounts = counts
	}

	utils.SuccessResponse(c, http.StatusOK, "History loaded", resp)
}

// Record returns a single query record.
func (h *QueryHandler) Record(c *gin.Context) {
	if h.history == nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "History is disabled", nil)
		return
	}

	record, err := h.history.Get(c.Request.Context(), c.Param("submission_id"))
	if err != nil {
		h.logger.WithError(err).Debug("Query record lookup failed")
		utils.ErrorResponse(c, http.StatusNotFound, "Record not found", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Record loaded", record)
}

// Health reports the status of every dependency.
func (h *QueryHandler) Health(c *gin.Context) {
	report := h.health.Current(c.Request.Context())
	report.ActiveSessions = h.sessions.Len()

	code := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

// existingSessionID returns the caller's session id if it carries a valid
// cookie. It never issues one.
func existingSessionID(c *gin.Context) (string, bool) {
	if id, ok := c.Get(SessionCookie); ok {
		return id.(string), true
	}
	id, err := c.Cookie(SessionCookie)
	if err != nil || !utils.ValidateSessionID(id) {
		return "", false
	}
	return id, true
}

// sessionID reads the session cookie, issuing a new one when it is absent
// or malformed. Only submissions call it.
func (h *QueryHandler) sessionID(c *gin.Context) string {
	id, ok := existingSessionID(c)
	if !ok {
		id = utils.NewSessionID()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
	}

	c.Set(SessionCookie, id)
	return id
}
