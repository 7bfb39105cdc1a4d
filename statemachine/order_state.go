// Package statemachine enforces the order lifecycle: a strict linear status
// chain with a single cancellation escape from pending, each forward edge
// owned by exactly one role.
package statemachine

import (
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/apperrors"
	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"
)

// statusChain is the forward path every order follows.
var statusChain = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusPickedUp,
	models.StatusDelivered,
}

// edgeOwner maps each forward edge, keyed by its from-status, to the role
// allowed to drive it. The kitchen carries an order to ready; the driver
// takes it from there.
var edgeOwner = map[models.OrderStatus]models.UserRole{
	models.StatusPending:   models.RoleKitchen,
	models.StatusConfirmed: models.RoleKitchen,
	models.StatusPreparing: models.RoleKitchen,
	models.StatusReady:     models.RoleDriver,
	models.StatusPickedUp:  models.RoleDriver,
}

// NextStatus returns the single legal forward status, or false at a
// terminal state.
func NextStatus(from models.OrderStatus) (models.OrderStatus, bool) {
	for i, s := range statusChain {
		if s == from && i+1 < len(statusChain) {
			return statusChain[i+1], true
		}
	}
	return "", false
}

// CanAdvance validates a forward transition for the given role and returns
// the target status. Admin may drive any edge.
func CanAdvance(from models.OrderStatus, role models.UserRole) (models.OrderStatus, error) {
	next, ok := NextStatus(from)
	if !ok {
		return "", apperrors.InvalidTransition(string(from))
	}
	owner := edgeOwner[from]
	if role != owner && role != models.RoleAdmin {
		return "", apperrors.Authorization(
			"The "+string(from)+" → "+string(next)+" transition belongs to the "+string(owner)+" role.",
			"هذا الإجراء من صلاحية دور '"+string(owner)+"' فقط.",
		)
	}
	return next, nil
}

// CanTransition validates an explicit edge: to must be the single legal next
// status from from, and role must own the edge. Admin may drive any edge.
// Callers that know their target state use this instead of CanAdvance so a
// record that already moved on fails with a conflict rather than sliding
// further along the chain.
func CanTransition(from, to models.OrderStatus, role models.UserRole) error {
	next, ok := NextStatus(from)
	if !ok {
		return apperrors.InvalidTransition(string(from))
	}
	if next != to {
		err := apperrors.Conflict(
			"The order is not in the right state for this action.",
			"الطلب ليس في الحالة المناسبة لهذا الإجراء.",
		)
		err.CurrentStatus = string(from)
		return err
	}
	if owner := edgeOwner[from]; role != owner && role != models.RoleAdmin {
		return apperrors.Authorization(
			"The "+string(from)+" → "+string(to)+" transition belongs to the "+string(owner)+" role.",
			"هذا الإجراء من صلاحية دور '"+string(owner)+"' فقط.",
		)
	}
	return nil
}

// CanCancel validates cancellation: only a pending order may be cancelled,
// and cancelling twice is an error rather than a silent success.
func CanCancel(current models.OrderStatus) error {
	if current == models.StatusCancelled {
		return apperrors.AlreadyCancelled()
	}
	if current != models.StatusPending {
		return apperrors.CannotCancel(string(current))
	}
	return nil
}

// ValidTransitionsFrom returns all valid next states from a given state.
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	if next, ok := NextStatus(status); ok {
		nexts = append(nexts, next)
	}
	if status == models.StatusPending {
		nexts = append(nexts, models.StatusCancelled)
	}
	return nexts
}

// Transition describes one edge of the state machine for the docs endpoint.
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor models.UserRole    `json:"actor"`
}

// AllTransitions returns the full state machine for documentation.
func AllTransitions() []Transition {
	var all []Transition
	for _, from := range statusChain {
		if next, ok := NextStatus(from); ok {
			all = append(all, Transition{From: from, To: next, Actor: edgeOwner[from]})
		}
	}
	all = append(all, Transition{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleCustomer})
	return all
}
