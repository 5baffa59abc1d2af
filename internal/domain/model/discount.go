package model

// LineDiscount is the share of a discount attributed to one cart line.
type LineDiscount struct {
	LineRef       int    `json:"lineRef"` // index into the cart
	RefID         string `json:"refId"`
	LineTotal     int64  `json:"lineTotal"`
	DiscountShare int64  `json:"discountShare"`
}

// DiscountResult is the outcome of allocating a voucher across a cart.
// Invariants: 0 <= DiscountAmount <= ApplicableAmount <= OriginalAmount and
// the per-line shares sum to DiscountAmount.
type DiscountResult struct {
	OriginalAmount   int64          `json:"originalAmount"`
	ApplicableAmount int64          `json:"applicableAmount"`
	DiscountAmount   int64          `json:"discountAmount"`
	FinalAmount      int64          `json:"finalAmount"`
	PerLine          []LineDiscount `json:"perLine"`
}

// ShareFor returns the discount share of the line at index i.
func (r *DiscountResult) ShareFor(i int) int64 {
	if r == nil {
		return 0
	}
	for _, l := range r.PerLine {
		if l.LineRef == i {
			return l.DiscountShare
		}
	}
	return 0
}
