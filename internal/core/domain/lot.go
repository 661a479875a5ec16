package domain

import "time"

type LotSource string

const (
	LotSourceAuthorized LotSource = "authorized"
	LotSourceOpenMarket LotSource = "open_market"
)

type LotCondition string

const (
	LotConditionNew  LotCondition = "new"
	LotConditionUsed LotCondition = "used"
)

// InventoryLot is a physical batch of parts owned by one seller.
// AvailableQty is the stock truth for order validation; it is only
// mutated through the conditional decrement/increment paths.
type InventoryLot struct {
	ID           string       `db:"id"`
	SellerID     string       `db:"seller_id"`
	PartNumber   string       `db:"part_number"`
	Manufacturer string       `db:"manufacturer"`
	DateCode     string       `db:"date_code"`
	Source       LotSource    `db:"source"`
	Condition    LotCondition `db:"cond"`
	AvailableQty int          `db:"available_qty"`
	Location     string       `db:"location"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// LotPatch carries the fields UpdateLot may overwrite. Nil means
// "leave unchanged". AvailableQty updates here are direct overwrites
// for seller corrections, never used by the order path.
type LotPatch struct {
	PartNumber   *string
	Manufacturer *string
	DateCode     *string
	Source       *LotSource
	Condition    *LotCondition
	AvailableQty *int
	Location     *string
}
