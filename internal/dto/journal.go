package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
)

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	TaxCode     *string         `json:"taxCode,omitempty"`
	CostCenter  *string         `json:"costCenter,omitempty"`
	IsTaxLine   bool            `json:"isTaxLine"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID          string                `json:"journalID"`
	JournalNumber      string                `json:"journalNumber"`
	Date               time.Time             `json:"date"`
	Description        string                `json:"description"`
	CurrencyCode       string                `json:"currencyCode"`
	Status             string                `json:"status"`
	TotalDebit         decimal.Decimal       `json:"totalDebit"`
	TotalCredit        decimal.Decimal       `json:"totalCredit"`
	ApproverRoles      []string              `json:"approverRoles,omitempty"`
	ApprovedBy         *string               `json:"approvedBy,omitempty"`
	OriginalJournalID  *string               `json:"originalJournalID,omitempty"`
	ReversingJournalID *string               `json:"reversingJournalID,omitempty"`
	Lines              []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	CreatedBy          string                `json:"createdBy"`
}

// ListJournalsParams holds query parameters for listing journals.
type ListJournalsParams struct {
	Limit            int     `form:"limit"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals"`
	IncludeLines     bool    `form:"includeLines"`
}

// ListJournalsResponse is a paginated page of journals.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListLinesParams holds query parameters for listing lines by account.
type ListLinesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse is a paginated page of journal lines.
type ListLinesResponse struct {
	Lines     []JournalLineResponse `json:"lines"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToJournalLineResponse converts a domain.JournalLine to its DTO.
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:      l.LineID,
		AccountID:   l.AccountID,
		Debit:       l.Debit,
		Credit:      l.Credit,
		Description: l.Description,
		TaxCode:     l.TaxCode,
		CostCenter:  l.CostCenter,
		IsTaxLine:   l.IsTaxLine,
	}
}

// ToJournalLineResponses converts a slice of domain lines to DTOs.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	responses := make([]JournalLineResponse, len(lines))
	for i := range lines {
		responses[i] = ToJournalLineResponse(&lines[i])
	}
	return responses
}

// ToJournalResponse converts a domain.Journal to its DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	resp := JournalResponse{
		JournalID:          j.JournalID,
		JournalNumber:      j.JournalNumber,
		Date:               j.JournalDate,
		Description:        j.Description,
		CurrencyCode:       j.CurrencyCode,
		Status:             string(j.Status),
		TotalDebit:         j.TotalDebit,
		TotalCredit:        j.TotalCredit,
		ApproverRoles:      j.ApproverRoles,
		ApprovedBy:         j.ApprovedBy,
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		CreatedAt:          j.CreatedAt,
		CreatedBy:          j.CreatedBy,
	}
	if len(j.Lines) > 0 {
		resp.Lines = ToJournalLineResponses(j.Lines)
	}
	return resp
}
