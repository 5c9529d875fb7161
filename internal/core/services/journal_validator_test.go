package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/quantabooks/ledger_engine/internal/apperrors"
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"
	"github.com/quantabooks/ledger_engine/internal/core/services"
)

type JournalValidatorTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTaxRepo     *MockTaxCodeRepository
	validator       portssvc.JournalValidatorSvc
	pctx            domain.PostingContext
	bankAccount     domain.Account
	revenueAccount  domain.Account
	usdAccount      domain.Account
	taxAccount      domain.Account
	sstCode         domain.TaxCode
}

func (suite *JournalValidatorTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTaxRepo = new(MockTaxCodeRepository)
	suite.validator = services.NewJournalValidator(
		services.NewCOAPolicyService(suite.mockAccountRepo),
		services.NewTaxService(suite.mockTaxRepo),
	)

	suite.pctx = domain.PostingContext{
		TenantID:  uuid.NewString(),
		CompanyID: uuid.NewString(),
		UserID:    uuid.NewString(),
		UserRole:  domain.RoleManager,
	}

	suite.bankAccount = domain.Account{
		AccountID:     uuid.NewString(),
		CompanyID:     suite.pctx.CompanyID,
		AccountType:   domain.Asset,
		AccountKind:   domain.KindBank,
		NormalBalance: domain.DebitSide,
		CurrencyCode:  "MYR",
		IsActive:      true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:     uuid.NewString(),
		CompanyID:     suite.pctx.CompanyID,
		AccountType:   domain.Income,
		NormalBalance: domain.CreditSide,
		CurrencyCode:  "MYR",
		IsActive:      true,
	}
	suite.usdAccount = domain.Account{
		AccountID:     uuid.NewString(),
		CompanyID:     suite.pctx.CompanyID,
		AccountType:   domain.Asset,
		NormalBalance: domain.DebitSide,
		CurrencyCode:  "USD",
		IsActive:      true,
	}
	suite.taxAccount = domain.Account{
		AccountID:     uuid.NewString(),
		CompanyID:     suite.pctx.CompanyID,
		AccountType:   domain.Liability,
		AccountKind:   domain.KindTax,
		NormalBalance: domain.CreditSide,
		CurrencyCode:  "MYR",
		IsActive:      true,
	}
	suite.sstCode = domain.TaxCode{
		Code:         "SST-6",
		CompanyID:    suite.pctx.CompanyID,
		Rate:         decimal.RequireFromString("0.06"),
		TaxAccountID: suite.taxAccount.AccountID,
		IsActive:     true,
	}
}

func (suite *JournalValidatorTestSuite) expectAccounts(accs ...domain.Account) {
	m := make(map[string]domain.Account, len(accs))
	for _, a := range accs {
		m[a.AccountID] = a
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(m, nil).Once()
}

func (suite *JournalValidatorTestSuite) TestValidate_BalancedJournalPasses() {
	ctx := context.Background()
	lines := []domain.JournalLine{
		{AccountID: suite.bankAccount.AccountID, Debit: decimal.NewFromInt(1000)},
		{AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(1000)},
	}
	suite.expectAccounts(suite.bankAccount, suite.revenueAccount)

	result, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().NoError(err)
	suite.True(result.Valid)
	suite.Empty(result.Issues)
	suite.True(result.TotalDebit.Equal(decimal.NewFromInt(1000)))
	suite.True(result.TotalCredit.Equal(decimal.NewFromInt(1000)))
	suite.Contains(result.Accounts, suite.bankAccount.AccountID)
}

func (suite *JournalValidatorTestSuite) TestValidate_WithinToleranceIsBalanced() {
	ctx := context.Background()
	lines := []domain.JournalLine{
		{AccountID: suite.bankAccount.AccountID, Debit: decimal.RequireFromString("100.00")},
		{AccountID: suite.revenueAccount.AccountID, Credit: decimal.RequireFromString("99.99")},
	}
	suite.expectAccounts(suite.bankAccount, suite.revenueAccount)

	result, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().NoError(err)
	suite.True(result.Valid, "one minor unit of rounding residue is absorbed")
}

func (suite *JournalValidatorTestSuite) TestValidate_UnbalancedReportsDeltaAndShortSide() {
	ctx := context.Background()
	lines := []domain.JournalLine{
		{AccountID: suite.bankAccount.AccountID, Debit: decimal.RequireFromString("100.00")},
		{AccountID: suite.revenueAccount.AccountID, Credit: decimal.RequireFromString("99.98")},
	}
	suite.expectAccounts(suite.bankAccount, suite.revenueAccount)

	result, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().NoError(err)
	suite.False(result.Valid)
	suite.Require().Len(result.Issues, 1)
	issue := result.Issues[0]
	suite.Equal(domain.IssueUnbalanced, issue.Code)
	suite.Require().NotNil(issue.Delta)
	suite.True(issue.Delta.Equal(decimal.RequireFromString("0.02")), "delta is exact, got %s", issue.Delta)
	suite.Equal(domain.CreditSide, issue.ShortSide)
}

func (suite *JournalValidatorTestSuite) TestValidate_MinLines() {
	ctx := context.Background()
	lines := []domain.JournalLine{
		{AccountID: suite.bankAccount.AccountID, Debit: decimal.RequireFromString("1000.00")},
	}
	suite.expectAccounts(suite.bankAccount)

	result, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().NoError(err)
	suite.False(result.Valid)
	codes := issueCodes(result.Issues)
	suite.Contains(codes, domain.IssueMinLines)

	// The single line also leaves the credit side short by the full amount.
	var unbalanced *domain.ValidationIssue
	for i := range result.Issues {
		if result.Issues[i].Code == domain.IssueUnbalanced {
			unbalanced = &result.Issues[i]
		}
	}
	suite.Require().NotNil(unbalanced)
	suite.Require().NotNil(unbalanced.Delta)
	suite.True(unbalanced.Delta.Equal(decimal.RequireFromString("1000.00")), "delta is exact, got %s", unbalanced.Delta)
	suite.Equal(domain.CreditSide, unbalanced.ShortSide)
}

func (suite *JournalValidatorTestSuite) TestValidate_MalformedLines() {
	ctx := context.Background()
	lines := []domain.JournalLine{
		{AccountID: suite.bankAccount.AccountID, Debit: decimal.NewFromInt(10), Credit: decimal.NewFromInt(10)},
		{AccountID: suite.revenueAccount.AccountID},
		{AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(-5)},
	}
	suite.expectAccounts(suite.bankAccount, suite.revenueAccount)

	result, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().NoError(err)
	suite.False(result.Valid)

	malformed := 0
	for _, issue := range result.Issues {
		if issue.Code == domain.IssueLineMalformed {
			malformed++
			suite.Require().NotNil(issue.LineIndex)
		}
	}
	suite.Equal(3, malformed, "every malformed line is reported with its index")
}

func (suite *JournalValidatorTestSuite) TestValidate_CurrencyMismatch() {
	ctx := context.Background()
	lines := []domain.JournalLine{
		{AccountID: suite.usdAccount.AccountID, Debit: decimal.NewFromInt(100)},
		{AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(100)},
	}
	suite.expectAccounts(suite.usdAccount, suite.revenueAccount)

	result, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().NoError(err)
	suite.False(result.Valid)
	codes := issueCodes(result.Issues)
	suite.Contains(codes, domain.IssueCurrencyMismatch)
}

func (suite *JournalValidatorTestSuite) TestValidate_TaxLinesParticipateInBalance() {
	ctx := context.Background()
	// Caller lines: debit 106, credit 100 tagged SST-6. The derived 6.00
	// credit tax line balances the journal; without it this entry would be
	// rejected as unbalanced.
	lines := []domain.JournalLine{
		{AccountID: suite.bankAccount.AccountID, Debit: decimal.NewFromInt(106)},
		{AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(100), TaxCode: strPtr("SST-6")},
	}
	suite.expectAccounts(suite.bankAccount, suite.revenueAccount)
	suite.expectAccounts(suite.taxAccount)
	suite.mockTaxRepo.On("FindTaxCodesByCodes", mock.Anything, suite.pctx.CompanyID, []string{"SST-6"}).
		Return(map[string]domain.TaxCode{"SST-6": suite.sstCode}, nil).Once()

	result, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().NoError(err)
	suite.True(result.Valid)
	suite.Require().Len(result.TaxLines, 1)
	suite.True(result.TotalDebit.Equal(decimal.NewFromInt(106)))
	suite.True(result.TotalCredit.Equal(decimal.NewFromInt(106)))
	suite.Contains(result.Accounts, suite.taxAccount.AccountID, "tax account is resolved for balance updates")
}

func (suite *JournalValidatorTestSuite) TestValidate_IneligibleTaxAccountRejected() {
	ctx := context.Background()
	inactiveTax := suite.taxAccount
	inactiveTax.IsActive = false

	lines := []domain.JournalLine{
		{AccountID: suite.bankAccount.AccountID, Debit: decimal.NewFromInt(106)},
		{AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(100), TaxCode: strPtr("SST-6")},
	}
	suite.expectAccounts(suite.bankAccount, suite.revenueAccount)
	suite.expectAccounts(inactiveTax)
	suite.mockTaxRepo.On("FindTaxCodesByCodes", mock.Anything, suite.pctx.CompanyID, []string{"SST-6"}).
		Return(map[string]domain.TaxCode{"SST-6": suite.sstCode}, nil).Once()

	result, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().NoError(err)
	suite.False(result.Valid, "a derived tax line may not post to an ineligible account")
	suite.Require().Len(result.Issues, 1)
	suite.Equal(domain.IssueAccountInactive, result.Issues[0].Code)
	suite.Equal(suite.taxAccount.AccountID, result.Issues[0].AccountID)
}

func (suite *JournalValidatorTestSuite) TestValidate_MultipleIssueKindsCollected() {
	ctx := context.Background()
	inactive := suite.bankAccount
	inactive.AccountID = uuid.NewString()
	inactive.IsActive = false

	lines := []domain.JournalLine{
		{AccountID: inactive.AccountID, Debit: decimal.NewFromInt(100)},
		{AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(90)},
	}
	suite.expectAccounts(inactive, suite.revenueAccount)

	result, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().NoError(err)
	suite.False(result.Valid)
	codes := issueCodes(result.Issues)
	suite.Contains(codes, domain.IssueAccountInactive)
	suite.Contains(codes, domain.IssueUnbalanced)
}

func (suite *JournalValidatorTestSuite) TestValidate_AccountLookupFailureFailsClosed() {
	ctx := context.Background()
	lines := []domain.JournalLine{
		{AccountID: suite.bankAccount.AccountID, Debit: decimal.NewFromInt(100)},
		{AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(100)},
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	_, err := suite.validator.Validate(ctx, suite.pctx, "MYR", lines)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUpstreamUnavailable)
}

func issueCodes(issues []domain.ValidationIssue) []domain.IssueCode {
	codes := make([]domain.IssueCode, len(issues))
	for i, issue := range issues {
		codes[i] = issue.Code
	}
	return codes
}

func TestJournalValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(JournalValidatorTestSuite))
}
