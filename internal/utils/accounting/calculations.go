package accounting

import (
	"fmt"

	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateEntryBalance checks the shape of a journal entry's lines:
// at least two lines, each with a positive amount on a known side, a single
// currency across the entry, and debit and credit sums that are equal and
// positive. It is used by the ledger service before any persistence happens.
func ValidateEntryBalance(lines []domain.LedgerLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: journal entry must have at least two lines", apperrors.ErrValidation)
	}

	debits := decimal.Zero
	credits := decimal.Zero
	currency := lines[0].CurrencyCode

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: line amount must be positive for account %s", apperrors.ErrValidation, line.AccountID)
		}
		if line.Side != domain.Debit && line.Side != domain.Credit {
			return fmt.Errorf("%w: line for account %s has unknown side %q", apperrors.ErrValidation, line.AccountID, line.Side)
		}
		if line.CurrencyCode != currency {
			return fmt.Errorf("%w: journal entry mixes currencies %s and %s", apperrors.ErrValidation, currency, line.CurrencyCode)
		}
		if line.Side == domain.Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum to %s but credits sum to %s",
			apperrors.ErrValidation, debits.String(), credits.String())
	}
	if debits.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: journal entry must move a positive amount", apperrors.ErrValidation)
	}
	return nil
}

// EntryAmount computes the economic value of a balanced entry: the debit sum,
// which equals the credit sum.
func EntryAmount(lines []domain.LedgerLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.Side == domain.Debit {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// NetChanges aggregates the signed effect of an entry's lines per account.
// Credits add to a balance, debits subtract from it.
func NetChanges(lines []domain.LedgerLine) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		changes[line.AccountID] = changes[line.AccountID].Add(line.SignedAmount())
	}
	return changes
}

// FoldBalance recomputes an account balance as the fold of its committed
// lines, in commit order. This is the authoritative balance; the cached
// column is repaired from it during a backfill.
func FoldBalance(lines []domain.LedgerLine) decimal.Decimal {
	balance := decimal.Zero
	for _, line := range lines {
		balance = balance.Add(line.SignedAmount())
	}
	return balance
}
