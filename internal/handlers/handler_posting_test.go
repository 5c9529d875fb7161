package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/quantabooks/ledger_engine/internal/apperrors"
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"
	"github.com/quantabooks/ledger_engine/internal/core/services"
	"github.com/quantabooks/ledger_engine/internal/dto"
	"github.com/quantabooks/ledger_engine/internal/handlers"
	"github.com/quantabooks/ledger_engine/internal/middleware"
)

// --- Mock PostingService ---
type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) PostJournal(ctx context.Context, pctx domain.PostingContext, input dto.JournalPostingInput) (*dto.PostJournalResponse, error) {
	args := m.Called(ctx, pctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PostJournalResponse), args.Error(1)
}

func (m *MockPostingService) ApproveJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, pctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockPostingService) RejectJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, pctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockPostingService) ReverseJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, pctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockPostingService) GetJournalByID(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, pctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockPostingService) ListJournals(ctx context.Context, pctx domain.PostingContext, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	args := m.Called(ctx, pctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalsResponse), args.Error(1)
}

func (m *MockPostingService) ListLinesByAccount(ctx context.Context, pctx domain.PostingContext, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	args := m.Called(ctx, pctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLinesResponse), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.PostingSvcFacade = (*MockPostingService)(nil)

// --- Test Suite ---
type PostingHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockPostingService *MockPostingService
	jwtSecret          string
	tenantID           string
	companyID          string
	userID             string
}

// generateTestToken creates a signed JWT carrying the claims the middleware
// requires: subject, tenant and role.
func (suite *PostingHandlerTestSuite) generateTestToken(userID, tenantID string, role domain.Role) string {
	claims := middleware.LedgerClaims{
		TenantID: tenantID,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ledger-engine-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *PostingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.tenantID = uuid.NewString()
	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockPostingService = new(MockPostingService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterPostingRoutes(v1, suite.mockPostingService)
}

// doRequest performs an authenticated request and returns the recorder.
func (suite *PostingHandlerTestSuite) doRequest(method, url string, body any, role domain.Role) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID, suite.tenantID, role))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *PostingHandlerTestSuite) validInput() dto.JournalPostingInput {
	return dto.JournalPostingInput{
		JournalNumber:  "JV-100",
		Description:    "Test entry",
		JournalDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		CurrencyCode:   "MYR",
		IdempotencyKey: uuid.NewString(),
		Lines: []dto.JournalLineInput{
			{AccountID: uuid.NewString(), Debit: decimal.NewFromInt(500)},
			{AccountID: uuid.NewString(), Credit: decimal.NewFromInt(500)},
		},
	}
}

// --- Test Cases ---

func (suite *PostingHandlerTestSuite) TestPostJournal_Success() {
	input := suite.validInput()
	expected := &dto.PostJournalResponse{
		JournalID:     uuid.NewString(),
		JournalNumber: input.JournalNumber,
		Status:        string(domain.Posted),
		TotalDebit:    decimal.NewFromInt(500),
		TotalCredit:   decimal.NewFromInt(500),
	}

	suite.mockPostingService.On("PostJournal",
		mock.Anything,
		mock.MatchedBy(func(pctx domain.PostingContext) bool {
			return pctx.TenantID == suite.tenantID &&
				pctx.CompanyID == suite.companyID &&
				pctx.UserID == suite.userID &&
				pctx.UserRole == domain.RoleAdmin
		}),
		mock.MatchedBy(func(in dto.JournalPostingInput) bool {
			return in.IdempotencyKey == input.IdempotencyKey
		}),
	).Return(expected, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	w := suite.doRequest(http.MethodPost, url, input, domain.RoleAdmin)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.PostJournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.JournalID, resp.JournalID)
	suite.Equal(string(domain.Posted), resp.Status)
	suite.mockPostingService.AssertExpectations(suite.T())
}

func (suite *PostingHandlerTestSuite) TestPostJournal_MissingAuthHeader() {
	input := suite.validInput()
	raw, _ := json.Marshal(input)
	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockPostingService.AssertNotCalled(suite.T(), "PostJournal", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingHandlerTestSuite) TestPostJournal_BindingRejectsSingleLine() {
	input := suite.validInput()
	input.Lines = input.Lines[:1]

	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	w := suite.doRequest(http.MethodPost, url, input, domain.RoleAdmin)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPostingService.AssertNotCalled(suite.T(), "PostJournal", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingHandlerTestSuite) TestPostJournal_ValidationFailureBodyListsIssues() {
	input := suite.validInput()
	lineIdx := 0
	suite.mockPostingService.On("PostJournal", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &services.ValidationFailedError{Result: domain.ValidationResult{
			Valid: false,
			Issues: []domain.ValidationIssue{
				{Code: domain.IssueAccountInactive, AccountID: input.Lines[0].AccountID, LineIndex: &lineIdx, Message: "account is inactive"},
				{Code: domain.IssueUnbalanced, Message: "journal is unbalanced"},
			},
		}}).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	w := suite.doRequest(http.MethodPost, url, input, domain.RoleAdmin)

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp dto.ValidationFailureResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Issues, 2)
	suite.Equal(domain.IssueAccountInactive, resp.Issues[0].Code)
}

func (suite *PostingHandlerTestSuite) TestPostJournal_IdempotencyConflict() {
	input := suite.validInput()
	suite.mockPostingService.On("PostJournal", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: key reused with a different payload", apperrors.ErrIdempotencyConflict)).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	w := suite.doRequest(http.MethodPost, url, input, domain.RoleAdmin)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *PostingHandlerTestSuite) TestPostJournal_ConcurrentDuplicateMapsToConflict() {
	input := suite.validInput()
	suite.mockPostingService.On("PostJournal", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("failed to save journal: %w", apperrors.ErrDuplicate)).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	w := suite.doRequest(http.MethodPost, url, input, domain.RoleAdmin)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *PostingHandlerTestSuite) TestApproveJournal_Success() {
	journalID := uuid.NewString()
	approved := &domain.Journal{
		JournalID: journalID,
		TenantID:  suite.tenantID,
		CompanyID: suite.companyID,
		Status:    domain.Posted,
	}
	suite.mockPostingService.On("ApproveJournal", mock.Anything, mock.Anything, journalID).
		Return(approved, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals/%s/approve", suite.companyID, journalID)
	w := suite.doRequest(http.MethodPost, url, nil, domain.RoleManager)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.JournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(string(domain.Posted), resp.Status)
}

func (suite *PostingHandlerTestSuite) TestApproveJournal_SelfApprovalMapsToForbidden() {
	journalID := uuid.NewString()
	suite.mockPostingService.On("ApproveJournal", mock.Anything, mock.Anything, journalID).
		Return(nil, fmt.Errorf("%w: creator cannot approve their own journal", apperrors.ErrForbidden)).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals/%s/approve", suite.companyID, journalID)
	w := suite.doRequest(http.MethodPost, url, nil, domain.RoleAdmin)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *PostingHandlerTestSuite) TestGetJournal_NotFound() {
	journalID := uuid.NewString()
	suite.mockPostingService.On("GetJournalByID", mock.Anything, mock.Anything, journalID).
		Return(nil, apperrors.ErrNotFound).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals/%s", suite.companyID, journalID)
	w := suite.doRequest(http.MethodGet, url, nil, domain.RoleClerk)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *PostingHandlerTestSuite) TestReverseJournal_Created() {
	journalID := uuid.NewString()
	reversal := &domain.Journal{
		JournalID:         uuid.NewString(),
		TenantID:          suite.tenantID,
		CompanyID:         suite.companyID,
		Status:            domain.Posted,
		OriginalJournalID: &journalID,
	}
	suite.mockPostingService.On("ReverseJournal", mock.Anything, mock.Anything, journalID).
		Return(reversal, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals/%s/reverse", suite.companyID, journalID)
	w := suite.doRequest(http.MethodPost, url, nil, domain.RoleFinanceLead)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.JournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotNil(resp.OriginalJournalID)
	suite.Equal(journalID, *resp.OriginalJournalID)
}

func (suite *PostingHandlerTestSuite) TestListJournals_PassesQueryParams() {
	suite.mockPostingService.On("ListJournals",
		mock.Anything,
		mock.Anything,
		mock.MatchedBy(func(p dto.ListJournalsParams) bool {
			return p.Limit == 5 && p.IncludeReversals
		}),
	).Return(&dto.ListJournalsResponse{Journals: []dto.JournalResponse{}}, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals?limit=5&includeReversals=true", suite.companyID)
	w := suite.doRequest(http.MethodGet, url, nil, domain.RoleClerk)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockPostingService.AssertExpectations(suite.T())
}

func TestPostingHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(PostingHandlerTestSuite))
}
