package types

import "github.com/shopspring/decimal"

// CashRegisterStatus is the single-cycle session state: closed → open → closed
type CashRegisterStatus string

const (
	CashRegisterStatusOpen   CashRegisterStatus = "open"
	CashRegisterStatusClosed CashRegisterStatus = "closed"
)

// CashMovementType classifies cash register movements. SALE and DEPOSIT add
// to the balance, WITHDRAWAL and EXPENSE subtract, ADJUSTMENT is recorded
// with an explicit sign.
type CashMovementType string

const (
	CashMovementTypeSale       CashMovementType = "sale"
	CashMovementTypeDeposit    CashMovementType = "deposit"
	CashMovementTypeWithdrawal CashMovementType = "withdrawal"
	CashMovementTypeExpense    CashMovementType = "expense"
	CashMovementTypeAdjustment CashMovementType = "adjustment"
)

func (t CashMovementType) Validate() bool {
	switch t {
	case CashMovementTypeSale, CashMovementTypeDeposit, CashMovementTypeWithdrawal,
		CashMovementTypeExpense, CashMovementTypeAdjustment:
		return true
	}
	return false
}

// SignedAmount applies the sign implied by the movement type. ADJUSTMENT
// amounts are stored signed and returned as recorded.
func (t CashMovementType) SignedAmount(amount decimal.Decimal) decimal.Decimal {
	switch t {
	case CashMovementTypeSale, CashMovementTypeDeposit:
		return amount.Abs()
	case CashMovementTypeWithdrawal, CashMovementTypeExpense:
		return amount.Abs().Neg()
	default:
		return amount
	}
}
