package mapping

import (
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/samiti-tech/nonprofit_fund_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	m := models.Account{
		AccountID:    d.AccountID,
		Name:         d.Name,
		AccountType:  models.AccountType(d.AccountType),
		CurrencyCode: d.CurrencyCode,
		Status:       models.AccountStatus(d.Status),
		HolderID:     d.HolderID,
		Balance:      d.Balance,
		ActivatedAt:  d.ActivatedAt,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
	if d.BankDetail != nil {
		m.BankAccountNumber = &d.BankDetail.AccountNumber
		m.BankIFSC = &d.BankDetail.IFSC
		m.BankName = &d.BankDetail.BankName
	}
	if d.UPIDetail != nil {
		m.UPIVPA = &d.UPIDetail.VPA
	}
	return m
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	d := domain.Account{
		AccountID:    m.AccountID,
		Name:         m.Name,
		AccountType:  domain.AccountType(m.AccountType),
		CurrencyCode: m.CurrencyCode,
		Status:       domain.AccountStatus(m.Status),
		HolderID:     m.HolderID,
		Balance:      m.Balance,
		ActivatedAt:  m.ActivatedAt,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
	if m.BankAccountNumber != nil || m.BankIFSC != nil || m.BankName != nil {
		bank := domain.BankDetail{}
		if m.BankAccountNumber != nil {
			bank.AccountNumber = *m.BankAccountNumber
		}
		if m.BankIFSC != nil {
			bank.IFSC = *m.BankIFSC
		}
		if m.BankName != nil {
			bank.BankName = *m.BankName
		}
		d.BankDetail = &bank
	}
	if m.UPIVPA != nil {
		d.UPIDetail = &domain.UPIDetail{VPA: *m.UPIVPA}
	}
	return d
}
