package core

// nearLimitPercent is the received-vs-ordered threshold (in percent) above
// which a reception triggers a non-fatal warning.
const nearLimitPercent = 95

// CheckReceptionQuantity validates that receiving `attempted` more units of
// item does not exceed its ordered quantity. alreadyReceived is the sum over
// all OTHER receptions for the (order, item) pair — when editing an existing
// reception the caller must exclude that reception's own quantity.
//
// Returns an *OverReceiptError when ordered quantity would be exceeded.
// nearLimit is true when the new total lands strictly between 95% and 100% of
// the ordered quantity: the reception proceeds, but callers should log it.
// Receiving exactly 100% is a clean completion, not a near-limit condition.
//
// This check runs before any cost computation. It is read-then-decide: two
// concurrent submissions for the same item can race past it.
func CheckReceptionQuantity(item OrderItem, alreadyReceived, attempted int) (nearLimit bool, err error) {
	total := alreadyReceived + attempted
	if total > item.Quantity {
		return false, &OverReceiptError{
			SKU:             item.SKU,
			Ordered:         item.Quantity,
			AlreadyReceived: alreadyReceived,
			Attempted:       attempted,
		}
	}
	if total < item.Quantity && total*100 > item.Quantity*nearLimitPercent {
		return true, nil
	}
	return false, nil
}
