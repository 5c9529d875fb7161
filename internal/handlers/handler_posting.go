package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantabooks/ledger_engine/internal/apperrors"
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"
	"github.com/quantabooks/ledger_engine/internal/core/services"
	"github.com/quantabooks/ledger_engine/internal/dto"
	"github.com/quantabooks/ledger_engine/internal/middleware"
)

// postingHandler handles HTTP requests for journal posting and lifecycle.
type postingHandler struct {
	postingService portssvc.PostingSvcFacade
}

// newPostingHandler creates a new postingHandler.
func newPostingHandler(postingService portssvc.PostingSvcFacade) *postingHandler {
	return &postingHandler{
		postingService: postingService,
	}
}

// postingContextFromRequest assembles the caller identity for the company in
// the URL. Companies are tenant-scoped; the tenant comes from the token.
func postingContextFromRequest(c *gin.Context) (domain.PostingContext, bool) {
	ctx := c.Request.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return domain.PostingContext{}, false
	}
	role, ok := middleware.GetUserRoleFromContext(ctx)
	if !ok {
		return domain.PostingContext{}, false
	}
	tenantID, ok := middleware.GetTenantIDFromContext(ctx)
	if !ok {
		return domain.PostingContext{}, false
	}

	return domain.PostingContext{
		TenantID:  tenantID,
		CompanyID: c.Param("companyID"),
		UserID:    userID,
		UserRole:  role,
	}, true
}

// respondWithServiceError maps service errors onto HTTP statuses. Validation
// failures carry the full issue list in the body.
func respondWithServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var validationErr *services.ValidationFailedError
	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Journal failed validation", slog.Int("issue_count", len(validationErr.Result.Issues)))
		c.JSON(http.StatusBadRequest, dto.ValidationFailureResponse{
			Error:  validationErr.Error(),
			Issues: validationErr.Result.Issues,
		})
	case errors.Is(err, apperrors.ErrIdempotencyConflict):
		logger.Warn("Idempotency key reused with different payload", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflicting journal state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		// A racing request with the same idempotency key won the insert;
		// the caller retries and gets the stored response replayed.
		logger.Warn("Concurrent duplicate request lost the insert race", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate request in flight, please retry"})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Action forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		logger.Error("Upstream lookup unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Required lookup unavailable, please retry"})
	case errors.Is(err, apperrors.ErrPolicyConfiguration):
		logger.Error("Policy configuration error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Policy configuration error"})
	default:
		logger.Error("Unexpected service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// postJournal godoc
// @Summary Post a journal entry
// @Description Runs the posting pipeline: idempotency, validation, tax expansion, SoD evaluation, and the posting decision
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journal body dto.JournalPostingInput true "Journal posting request"
// @Success 201 {object} dto.PostJournalResponse "Posting outcome"
// @Failure 400 {object} dto.ValidationFailureResponse "Validation failures"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Role forbids posting"
// @Failure 409 {object} map[string]string "Idempotency key conflict"
// @Failure 503 {object} map[string]string "Account lookup unavailable"
// @Router /companies/{companyID}/journals [post]
func (h *postingHandler) postJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var input dto.JournalPostingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warn("Failed to bind JSON for postJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	pctx, ok := postingContextFromRequest(c)
	if !ok {
		logger.Error("Caller identity not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.postingService.PostJournal(c.Request.Context(), pctx, input)
	if err != nil {
		respondWithServiceError(c, logger, err)
		return
	}

	logger.Info("Journal posting accepted",
		slog.String("journal_id", resp.JournalID),
		slog.String("status", resp.Status),
		slog.Bool("requires_approval", resp.RequiresApproval))
	c.JSON(http.StatusCreated, resp)
}

// approveJournal godoc
// @Summary Approve a pending journal
// @Description Posts a PENDING_APPROVAL journal. The approver must hold one of the journal's approver roles and must not be its creator.
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse "The posted journal"
// @Failure 403 {object} map[string]string "Not an approver, or self-approval"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal is not pending approval"
// @Router /companies/{companyID}/journals/{journalID}/approve [post]
func (h *postingHandler) approveJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	pctx, ok := postingContextFromRequest(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	journal, err := h.postingService.ApproveJournal(c.Request.Context(), pctx, journalID)
	if err != nil {
		respondWithServiceError(c, logger, err)
		return
	}

	logger.Info("Journal approved", slog.String("journal_id", journalID), slog.String("approved_by", pctx.UserID))
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// rejectJournal godoc
// @Summary Reject a pending journal
// @Description Rejects a PENDING_APPROVAL journal. Same authority rules as approval.
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse "The rejected journal"
// @Failure 403 {object} map[string]string "Not an approver, or self-rejection"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal is not pending approval"
// @Router /companies/{companyID}/journals/{journalID}/reject [post]
func (h *postingHandler) rejectJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	pctx, ok := postingContextFromRequest(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	journal, err := h.postingService.RejectJournal(c.Request.Context(), pctx, journalID)
	if err != nil {
		respondWithServiceError(c, logger, err)
		return
	}

	logger.Info("Journal rejected", slog.String("journal_id", journalID), slog.String("rejected_by", pctx.UserID))
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// reverseJournal godoc
// @Summary Reverse a posted journal
// @Description Creates a journal that exactly negates a POSTED journal. Reversing an already reversed journal replays the original outcome.
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Success 201 {object} dto.JournalResponse "The reversal journal"
// @Failure 403 {object} map[string]string "Role forbids reversal"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal is not posted"
// @Router /companies/{companyID}/journals/{journalID}/reverse [post]
func (h *postingHandler) reverseJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	pctx, ok := postingContextFromRequest(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.postingService.ReverseJournal(c.Request.Context(), pctx, journalID)
	if err != nil {
		respondWithServiceError(c, logger, err)
		return
	}

	logger.Info("Journal reversed", slog.String("journal_id", journalID), slog.String("reversal_id", reversal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(reversal))
}

// getJournal godoc
// @Summary Get a journal with its lines
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse "Journal and its lines"
// @Failure 404 {object} map[string]string "Journal not found"
// @Router /companies/{companyID}/journals/{journalID} [get]
func (h *postingHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	pctx, ok := postingContextFromRequest(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	journal, err := h.postingService.GetJournalByID(c.Request.Context(), pctx, journalID)
	if err != nil {
		respondWithServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// listJournals godoc
// @Summary List journals for a company
// @Tags journals
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination cursor"
// @Param   includeReversals query bool false "Include reversal journals"
// @Param   includeLines query bool false "Populate lines on each journal"
// @Success 200 {object} dto.ListJournalsResponse "Page of journals"
// @Router /companies/{companyID}/journals [get]
func (h *postingHandler) listJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	pctx, ok := postingContextFromRequest(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.postingService.ListJournals(c.Request.Context(), pctx, params)
	if err != nil {
		respondWithServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listAccountLines godoc
// @Summary List posted lines for an account
// @Tags accounts
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination cursor"
// @Success 200 {object} dto.ListLinesResponse "Page of journal lines"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /companies/{companyID}/accounts/{accountID}/lines [get]
func (h *postingHandler) listAccountLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.ListLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	pctx, ok := postingContextFromRequest(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.postingService.ListLinesByAccount(c.Request.Context(), pctx, accountID, params)
	if err != nil {
		respondWithServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterPostingRoutes registers journal posting and lifecycle routes.
func RegisterPostingRoutes(group *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	handler := newPostingHandler(postingService)

	companies := group.Group("/companies/:companyID")
	{
		journals := companies.Group("/journals")
		{
			journals.POST("", handler.postJournal)
			journals.GET("", handler.listJournals)
			journals.GET("/:journalID", handler.getJournal)
			journals.POST("/:journalID/approve", handler.approveJournal)
			journals.POST("/:journalID/reject", handler.rejectJournal)
			journals.POST("/:journalID/reverse", handler.reverseJournal)
		}
		companies.GET("/accounts/:accountID/lines", handler.listAccountLines)
	}
}
