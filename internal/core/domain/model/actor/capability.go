package actor

import "ordering/internal/core/domain/model/kernel"

// Capability names a permission checked against the company owning the
// order being acted on.
type Capability string

const (
	ValidateOrder Capability = "validate order"
	CancelOrder   Capability = "cancel order"
	PrepareOrder  Capability = "start order preparation"
	ShipOrder     Capability = "mark order shipped"
	InvoiceOrder  Capability = "mark order invoiced"
	EditContent   Capability = "edit order content"
	SyncDMS       Capability = "synchronize with DMS"
)

// grant describes who holds a capability: internal roles regardless of the
// owning company, client roles only for their own company.
type grant struct {
	internal []Role
	client   []Role
}

func getGrants() map[Capability]grant {
	return map[Capability]grant{
		ValidateOrder: {internal: []Role{Admin, Commercial}, client: []Role{ClientAdmin}},
		CancelOrder:   {internal: []Role{Admin, Commercial}, client: []Role{ClientAdmin}},
		PrepareOrder:  {internal: []Role{Admin, Commercial, System}},
		ShipOrder:     {internal: []Role{Admin, Commercial, System}},
		InvoiceOrder:  {internal: []Role{System}},
		EditContent:   {internal: []Role{Admin, Commercial}, client: []Role{ClientAdmin, ClientUser}},
		SyncDMS:       {internal: []Role{Admin, Commercial, System}},
	}
}

// Can reports whether the actor holds capability c on an order owned by
// ownerCompanyID.
func (a Actor) Can(c Capability, ownerCompanyID kernel.UUID) bool {
	if a.Validate() != nil {
		return false
	}
	g, ok := getGrants()[c]
	if !ok {
		return false
	}
	for _, r := range g.internal {
		if a.role == r {
			return true
		}
	}
	for _, r := range g.client {
		if a.role == r && a.BelongsTo(ownerCompanyID) {
			return true
		}
	}
	return false
}

// CanGlobally reports whether the actor holds c without reference to a
// company, which only internal grants give.
func (a Actor) CanGlobally(c Capability) bool {
	if a.Validate() != nil {
		return false
	}
	for _, r := range getGrants()[c].internal {
		if a.role == r {
			return true
		}
	}
	return false
}
