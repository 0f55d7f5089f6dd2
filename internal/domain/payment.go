package domain

// PaymentStatus is the provider-side state of a checkout.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsTerminalSuccess reports whether the payment unlocks publication.
func (s PaymentStatus) IsTerminalSuccess() bool {
	return s == PaymentStatusSucceeded
}
