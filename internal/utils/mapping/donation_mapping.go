package mapping

import (
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/samiti-tech/nonprofit_fund_app/internal/models"
)

// ToModelDonation converts a domain Donation to a model Donation
func ToModelDonation(d domain.Donation) models.Donation {
	m := models.Donation{
		DonationID:         d.DonationID,
		DonationType:       string(d.DonationType),
		Amount:             d.Amount,
		CurrencyCode:       d.CurrencyCode,
		Status:             string(d.Status),
		DonorID:            d.DonorID,
		DonorName:          d.DonorName,
		DonorEmail:         d.DonorEmail,
		DonorNumber:        d.DonorNumber,
		PeriodStart:        d.PeriodStart,
		PeriodEnd:          d.PeriodEnd,
		ForEventID:         d.ForEventID,
		PaidToAccountID:    d.PaidToAccountID,
		PaidDate:           d.PaidDate,
		ConfirmedBy:        d.ConfirmedBy,
		JournalID:          d.JournalID,
		Remarks:            d.Remarks,
		FailureDetail:      d.FailureDetail,
		CancellationReason: d.CancellationReason,
		DeletedAt:          d.DeletedAt,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
	if d.PaymentMethod != nil {
		method := string(*d.PaymentMethod)
		m.PaymentMethod = &method
	}
	if d.UPIType != nil {
		upi := string(*d.UPIType)
		m.UPIType = &upi
	}
	return m
}

// ToDomainDonation converts a model Donation to a domain Donation
func ToDomainDonation(m models.Donation) domain.Donation {
	d := domain.Donation{
		DonationID:         m.DonationID,
		DonationType:       domain.DonationType(m.DonationType),
		Amount:             m.Amount,
		CurrencyCode:       m.CurrencyCode,
		Status:             domain.DonationStatus(m.Status),
		DonorID:            m.DonorID,
		DonorName:          m.DonorName,
		DonorEmail:         m.DonorEmail,
		DonorNumber:        m.DonorNumber,
		PeriodStart:        m.PeriodStart,
		PeriodEnd:          m.PeriodEnd,
		ForEventID:         m.ForEventID,
		PaidToAccountID:    m.PaidToAccountID,
		PaidDate:           m.PaidDate,
		ConfirmedBy:        m.ConfirmedBy,
		JournalID:          m.JournalID,
		Remarks:            m.Remarks,
		FailureDetail:      m.FailureDetail,
		CancellationReason: m.CancellationReason,
		DeletedAt:          m.DeletedAt,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
	if m.PaymentMethod != nil {
		method := domain.PaymentMethod(*m.PaymentMethod)
		d.PaymentMethod = &method
	}
	if m.UPIType != nil {
		upi := domain.UPIType(*m.UPIType)
		d.UPIType = &upi
	}
	return d
}
