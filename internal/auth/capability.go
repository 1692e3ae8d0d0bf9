// Package auth supplies actor identity (JWT claims) and the capability
// checks the ledgers consult before any mutating call. The checks live here,
// not in HTTP middleware, so the ledgers enforce their own invariants even
// if an outer check is bypassed.
package auth

import "senorito-pos/internal/apperr"

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleCashier        Role = "cashier"
	RoleInventoryClerk Role = "inventory_clerk"
)

type Capability string

const (
	CapCreateOrder     Capability = "create_order"
	CapVoidOrder       Capability = "void_order"
	CapManageInventory Capability = "manage_inventory"
	CapDeleteItem      Capability = "delete_item"
	CapManagePO        Capability = "manage_po"
	CapCreateExpense   Capability = "create_expense"
)

var grants = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapCreateOrder:     true,
		CapVoidOrder:       true,
		CapManageInventory: true,
		CapDeleteItem:      true,
		CapManagePO:        true,
		CapCreateExpense:   true,
	},
	RoleCashier: {
		CapCreateOrder: true,
	},
	RoleInventoryClerk: {
		CapCreateOrder:     true,
		CapManageInventory: true,
		CapManagePO:        true,
	},
}

// Actor is the identity attached to every ledger call.
type Actor struct {
	UserID   int64
	Username string
	FullName string
	Role     Role
}

func (a Actor) Can(c Capability) bool {
	return grants[a.Role][c]
}

// Require returns an authorization error when the actor lacks the
// capability.
func Require(a Actor, c Capability) error {
	if !a.Can(c) {
		return apperr.Authorizationf("role %q may not %s", a.Role, c)
	}
	return nil
}
