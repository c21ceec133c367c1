package orders

import (
	"testing"

	"github.com/mateovidal/routewave-backend/pkg/enums"
)

var allStatuses = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusAccepted,
	enums.OrderStatusAssigned,
	enums.OrderStatusPickedUp,
	enums.OrderStatusInTransit,
	enums.OrderStatusDelivered,
	enums.OrderStatusCancelled,
}

var allRoles = []enums.ActorRole{
	enums.ActorRoleVendor,
	enums.ActorRoleDelivery,
	enums.ActorRoleCustomer,
	enums.ActorRoleAdmin,
}

func TestTransitionAllowedExactSet(t *testing.T) {
	type transition struct {
		role enums.ActorRole
		from enums.OrderStatus
		to   enums.OrderStatus
	}

	allowed := map[transition]bool{
		{enums.ActorRoleVendor, enums.OrderStatusPending, enums.OrderStatusAccepted}:    true,
		{enums.ActorRoleVendor, enums.OrderStatusPending, enums.OrderStatusCancelled}:   true,
		{enums.ActorRoleVendor, enums.OrderStatusAccepted, enums.OrderStatusAssigned}:   true,
		{enums.ActorRoleVendor, enums.OrderStatusAccepted, enums.OrderStatusCancelled}:  true,
		{enums.ActorRoleDelivery, enums.OrderStatusAssigned, enums.OrderStatusPickedUp}: true,
		{enums.ActorRoleDelivery, enums.OrderStatusPickedUp, enums.OrderStatusInTransit}: true,
		{enums.ActorRoleDelivery, enums.OrderStatusInTransit, enums.OrderStatusDelivered}: true,
	}

	for _, role := range allRoles {
		for _, from := range allStatuses {
			for _, to := range allStatuses {
				want := allowed[transition{role, from, to}]
				got := TransitionAllowed(role, from, to)
				if got != want {
					t.Errorf("TransitionAllowed(%s, %s, %s) = %v, want %v", role, from, to, got, want)
				}
			}
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, role := range allRoles {
		for _, from := range []enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled} {
			if targets := AllowedTargets(role, from); len(targets) != 0 {
				t.Errorf("expected no exits from %s for %s, got %v", from, role, targets)
			}
		}
	}
}

func TestCustomersAndAdminsHoldNoTransitions(t *testing.T) {
	for _, role := range []enums.ActorRole{enums.ActorRoleCustomer, enums.ActorRoleAdmin} {
		for _, from := range allStatuses {
			if targets := AllowedTargets(role, from); len(targets) != 0 {
				t.Errorf("expected no transitions for %s from %s, got %v", role, from, targets)
			}
		}
	}
}
