package orders

import "github.com/mateovidal/routewave-backend/pkg/enums"

// transitionTable is the single authority on who may move an order where.
// Every mutating entry point consults it; there is no per-handler role
// branching. Customers hold no write transitions at all, and `cancelled` is
// reachable only before a courier is working the order.
var transitionTable = map[enums.ActorRole]map[enums.OrderStatus][]enums.OrderStatus{
	enums.ActorRoleVendor: {
		enums.OrderStatusPending: {
			enums.OrderStatusAccepted,
			enums.OrderStatusCancelled,
		},
		enums.OrderStatusAccepted: {
			enums.OrderStatusAssigned,
			enums.OrderStatusCancelled,
		},
	},
	enums.ActorRoleDelivery: {
		enums.OrderStatusAssigned:  {enums.OrderStatusPickedUp},
		enums.OrderStatusPickedUp:  {enums.OrderStatusInTransit},
		enums.OrderStatusInTransit: {enums.OrderStatusDelivered},
	},
}

// TransitionAllowed reports whether the role may move an order from current
// to target. Anything not present in the table is denied.
func TransitionAllowed(role enums.ActorRole, current, target enums.OrderStatus) bool {
	byStatus, ok := transitionTable[role]
	if !ok {
		return false
	}
	for _, candidate := range byStatus[current] {
		if candidate == target {
			return true
		}
	}
	return false
}

// AllowedTargets returns the targets the role may reach from current.
func AllowedTargets(role enums.ActorRole, current enums.OrderStatus) []enums.OrderStatus {
	byStatus, ok := transitionTable[role]
	if !ok {
		return nil
	}
	return byStatus[current]
}
