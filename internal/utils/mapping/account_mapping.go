package mapping

import (
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	"github.com/quantabooks/ledger_engine/internal/models"
)

// ToDomainAccount converts a model Account to a domain Account.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		TenantID:      m.TenantID,
		CompanyID:     m.CompanyID,
		Code:          m.Code,
		Name:          m.Name,
		AccountType:   domain.AccountType(m.AccountType),
		AccountKind:   domain.AccountKind(m.AccountKind),
		NormalBalance: domain.BalanceSide(m.NormalBalance),
		CurrencyCode:  m.CurrencyCode,
		IsGroup:       m.IsGroup,
		IsActive:      m.IsActive,
		Balance:       m.Balance,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTaxCode converts a model TaxCode to a domain TaxCode.
func ToDomainTaxCode(m models.TaxCode) domain.TaxCode {
	return domain.TaxCode{
		Code:         m.Code,
		TenantID:     m.TenantID,
		CompanyID:    m.CompanyID,
		Name:         m.Name,
		Rate:         m.Rate,
		TaxAccountID: m.TaxAccountID,
		IsActive:     m.IsActive,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainIdempotencyRecord converts a model IdempotencyKey to the domain form.
func ToDomainIdempotencyRecord(m models.IdempotencyKey) domain.IdempotencyRecord {
	return domain.IdempotencyRecord{
		Key:              m.Key,
		TenantID:         m.TenantID,
		RequestHash:      m.RequestHash,
		ResponseSnapshot: m.ResponseSnapshot,
		CreatedAt:        m.CreatedAt,
	}
}
