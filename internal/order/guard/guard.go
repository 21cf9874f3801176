package guard

import (
	"errors"
	"time"

	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
)

var (
	ErrInvalidDecision  = errors.New("invalid_order_decision")
	ErrOrderNotPending  = errors.New("order_not_pending")
	ErrOrderNotApproved = errors.New("order_not_approved")
	ErrOrderNotExpired  = errors.New("order_not_stale")
)

// EnsureOrderCanBeDecided admits only a supplier's Approved/Rejected verdict
// on a still-Pending order. Expired is never a supplier decision.
func EnsureOrderCanBeDecided(current, decision orderdomain.ApprovalStatus) error {
	if !decision.Decision() {
		return ErrInvalidDecision
	}
	if current != orderdomain.ApprovalStatusPending {
		return ErrOrderNotPending
	}
	return nil
}

// EnsureOrderCanBeDelivered gates the one-way delivery flags. Either side may
// confirm only once the supplier has approved.
func EnsureOrderCanBeDelivered(current orderdomain.ApprovalStatus) error {
	if current != orderdomain.ApprovalStatusApproved {
		return ErrOrderNotApproved
	}
	return nil
}

// EnsureOrderCanExpire holds for Pending orders placed at or before cutoff.
func EnsureOrderCanExpire(current orderdomain.ApprovalStatus, orderDate, cutoff time.Time) error {
	if current != orderdomain.ApprovalStatusPending {
		return ErrOrderNotPending
	}
	if orderDate.After(cutoff) {
		return ErrOrderNotExpired
	}
	return nil
}
