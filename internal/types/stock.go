package types

// StockMovementType classifies entries of the inventory movement log
type StockMovementType string

const (
	StockMovementTypeIn         StockMovementType = "in"
	StockMovementTypeOut        StockMovementType = "out"
	StockMovementTypeAdjustment StockMovementType = "adjustment"
	StockMovementTypeTransfer   StockMovementType = "transfer"
)

func (t StockMovementType) Validate() bool {
	switch t {
	case StockMovementTypeIn, StockMovementTypeOut, StockMovementTypeAdjustment, StockMovementTypeTransfer:
		return true
	}
	return false
}
