package realtime

import (
	"github.com/google/uuid"

	"github.com/mateovidal/routewave-backend/pkg/db/models"
	"github.com/mateovidal/routewave-backend/pkg/enums"
)

// OrderChannel names the per-order room clients join explicitly.
func OrderChannel(orderID uuid.UUID) string {
	return "order-" + orderID.String()
}

// IdentityChannel names the role-scoped room a connection is auto-subscribed
// to. Admin connections carry no identity channel.
func IdentityChannel(role enums.ActorRole, userID uuid.UUID) (string, bool) {
	switch role {
	case enums.ActorRoleVendor:
		return "vendor-" + userID.String(), true
	case enums.ActorRoleDelivery:
		return "delivery-" + userID.String(), true
	case enums.ActorRoleCustomer:
		return "customer-" + userID.String(), true
	default:
		return "", false
	}
}

// StatusTargets lists every channel a status update for the order reaches:
// the order room, vendor, customer, and the assigned partner when set.
func StatusTargets(order *models.Order) []string {
	targets := []string{
		OrderChannel(order.ID),
		"vendor-" + order.VendorID.String(),
	}
	if order.DeliveryPartnerID != nil {
		targets = append(targets, "delivery-"+order.DeliveryPartnerID.String())
	}
	return append(targets, "customer-"+order.CustomerID.String())
}

// LocationTargets lists the channels a location update reaches. The sender's
// own delivery channel is deliberately excluded.
func LocationTargets(order *models.Order) []string {
	return []string{
		OrderChannel(order.ID),
		"vendor-" + order.VendorID.String(),
		"customer-" + order.CustomerID.String(),
	}
}
