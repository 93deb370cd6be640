package orders

import (
	"math/rand"
	"sync"
)

// PaymentOutcome is the decision produced by a PaymentPolicy.
type PaymentOutcome int

const (
	PaymentApproved PaymentOutcome = iota
	PaymentDeclined
)

// PaymentPolicy decides whether a pending order's payment is approved. The
// orchestrator treats the policy as opaque.
type PaymentPolicy interface {
	Decide(order Order) PaymentOutcome
}

// RandomPolicy approves roughly half of all orders. It stands in for a real
// payment gateway integration.
type RandomPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPolicy constructs a RandomPolicy with its own seeded source.
func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPolicy) Decide(Order) PaymentOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rng.Intn(2) == 0 {
		return PaymentApproved
	}
	return PaymentDeclined
}

// FixedPolicy always returns the same outcome. Used in tests and for
// environments where the payment stand-in should be deterministic.
type FixedPolicy struct {
	Outcome PaymentOutcome
}

func (p FixedPolicy) Decide(Order) PaymentOutcome {
	return p.Outcome
}
