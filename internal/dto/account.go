package dto

import (
	"time"

	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BankDetailDTO mirrors domain.BankDetail for requests and responses.
type BankDetailDTO struct {
	AccountNumber string `json:"accountNumber" binding:"required"`
	IFSC          string `json:"ifsc" binding:"required"`
	BankName      string `json:"bankName"`
}

// UPIDetailDTO mirrors domain.UPIDetail.
type UPIDetailDTO struct {
	VPA string `json:"vpa" binding:"required"`
}

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required"`
	AccountType    domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	CurrencyCode   string             `json:"currencyCode" binding:"required,len=3"`
	OpeningBalance *decimal.Decimal   `json:"openingBalance"` // optional, must be >= 0
	HolderID       string             `json:"holderID"`
	BankDetail     *BankDetailDTO     `json:"bankDetail"`
	UPIDetail      *UPIDetailDTO      `json:"upiDetail"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID    string               `json:"accountID"`
	Name         string               `json:"name"`
	AccountType  domain.AccountType   `json:"accountType"`
	CurrencyCode string               `json:"currencyCode"`
	Status       domain.AccountStatus `json:"status"`
	HolderID     string               `json:"holderID,omitempty"`
	BankDetail   *BankDetailDTO       `json:"bankDetail,omitempty"`
	UPIDetail    *UPIDetailDTO        `json:"upiDetail,omitempty"`
	Balance      decimal.Decimal      `json:"balance"`
	ActivatedAt  *time.Time           `json:"activatedAt,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	CreatedBy    string               `json:"createdBy"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	resp := AccountResponse{
		AccountID:    acc.AccountID,
		Name:         acc.Name,
		AccountType:  acc.AccountType,
		CurrencyCode: acc.CurrencyCode,
		Status:       acc.Status,
		HolderID:     acc.HolderID,
		Balance:      acc.Balance,
		ActivatedAt:  acc.ActivatedAt,
		CreatedAt:    acc.CreatedAt,
		CreatedBy:    acc.CreatedBy,
	}
	if acc.BankDetail != nil {
		resp.BankDetail = &BankDetailDTO{
			AccountNumber: acc.BankDetail.AccountNumber,
			IFSC:          acc.BankDetail.IFSC,
			BankName:      acc.BankDetail.BankName,
		}
	}
	if acc.UPIDetail != nil {
		resp.UPIDetail = &UPIDetailDTO{VPA: acc.UPIDetail.VPA}
	}
	return resp
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AccountBalanceResponse is returned by the backfill operation.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
	Repaired  bool            `json:"repaired"` // true when the cached balance had drifted
}
