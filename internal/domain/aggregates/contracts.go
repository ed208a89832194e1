package aggregates

// Contract names an aggregate and the invariant its writes protect.
type Contract struct {
	Name      string
	Invariant string
	// OwnsTx reports whether write methods open their own transaction.
	OwnsTx bool
}

// Aggregate is implemented by every aggregate write boundary.
type Aggregate interface {
	Contract() Contract
}
