package adapter

// SignatureVerifier authenticates a client-submitted payment confirmation.
// Implementations are pure: no I/O, no mutation, false on any malformation.
type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}
