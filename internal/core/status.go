package core

import "github.com/shopspring/decimal"

// DueAmount returns max(0, total − paid).
func DueAmount(total, paid decimal.Decimal) decimal.Decimal {
	due := total.Sub(paid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// InvoiceStatusFor derives the invoice payment status from its amounts.
// A zero-value sale with nothing paid counts as settled. Cancelled is a
// terminal state set only by CancelInvoice, never derived here.
func InvoiceStatusFor(total, paid decimal.Decimal) InvoiceStatus {
	switch {
	case paid.Sign() <= 0 && total.Sign() <= 0:
		return InvoicePaid
	case paid.Sign() <= 0:
		return InvoiceUnpaid
	case paid.LessThan(total):
		return InvoicePartiallyPaid
	default:
		return InvoicePaid
	}
}

// PaymentStatusFor derives the purchase-order payment status from its
// amounts. Comparisons are exact decimal tests; there is no epsilon.
func PaymentStatusFor(amount, paid decimal.Decimal) PaymentStatus {
	switch {
	case DueAmount(amount, paid).IsZero():
		return PaymentPaid
	case paid.Sign() > 0:
		return PaymentPartiallyPaid
	default:
		return PaymentUnpaid
	}
}

// CanCancelInvoice reports whether an invoice in the given status may be
// cancelled. Paid and Cancelled are off-limits.
func CanCancelInvoice(status InvoiceStatus) bool {
	return status != InvoicePaid && status != InvoiceCancelled
}

// CanTransitionDelivery reports whether a purchase order may move from one
// delivery status to another.
func CanTransitionDelivery(from, to DeliveryStatus) bool {
	switch from {
	case DeliveryPending:
		return to == DeliveryShipped || to == DeliveryReceived || to == DeliveryCancelled
	case DeliveryShipped:
		return to == DeliveryReceived || to == DeliveryCancelled
	default:
		// Received and Cancelled are terminal.
		return false
	}
}

// ReturnStatusFor derives the invoice status after a return has reduced its
// total: settled when nothing remains due on a non-zero total, partially
// paid when a payment exists alongside a remaining due, unpaid otherwise.
func ReturnStatusFor(newTotal, paid, newDue decimal.Decimal) InvoiceStatus {
	switch {
	case newDue.IsZero() && newTotal.Sign() > 0:
		return InvoicePaid
	case paid.Sign() > 0 && newDue.Sign() > 0:
		return InvoicePartiallyPaid
	case newDue.Sign() > 0:
		return InvoiceUnpaid
	default:
		return InvoicePaid
	}
}
