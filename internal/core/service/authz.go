package service

import "github.com/ryotak125/parts-market/internal/core/domain"

// canManageOrder is the single authorization predicate for order
// mutations: the order's buyer, its seller, or an admin.
func canManageOrder(actor domain.Actor, o *domain.Order) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.UserID != "" && (actor.UserID == o.BuyerID || actor.UserID == o.SellerID)
}

// canManageLot allows the owning seller or an admin.
func canManageLot(actor domain.Actor, lot *domain.InventoryLot) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.UserID != "" && actor.UserID == lot.SellerID
}
