package view

import "fmt"

// Dialog describes a confirmation prompt for a destructive or final
// action. Templates emit it as data attributes; the console script opens
// the actual modal.
type Dialog struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Confirm string `json:"confirm"`
	Cancel  string `json:"cancel"`
	Danger  bool   `json:"danger"`
}

// ConfirmReject is the dialog shown before rejecting a purchase order.
func ConfirmReject(orderNumber string) Dialog {
	return Dialog{
		Title:   "Reject purchase order",
		Message: fmt.Sprintf("Reject %s? The supplier will be notified and the decision is final.", orderNumber),
		Confirm: "Reject order",
		Cancel:  "Keep pending",
		Danger:  true,
	}
}

// ConfirmArchive is the dialog shown before archiving a catalog product.
func ConfirmArchive(name string) Dialog {
	return Dialog{
		Title:   "Archive product",
		Message: fmt.Sprintf("Archive %q? It disappears from listings but stays on historical orders.", name),
		Confirm: "Archive",
		Cancel:  "Cancel",
		Danger:  true,
	}
}

// ConfirmVerify is the dialog shown before verifying a purchase order.
func ConfirmVerify(orderNumber string) Dialog {
	return Dialog{
		Title:   "Verify purchase order",
		Message: fmt.Sprintf("Mark %s as verified?", orderNumber),
		Confirm: "Verify",
		Cancel:  "Cancel",
	}
}
