package settlement

// The order lifecycle is a finite-state machine. Every transition an
// operation wants to make is validated here, in one table, instead of
// scattering status checks across handlers.

type rule struct {
	roles     []Role
	ownerOnly bool // the acting buyer must own the order
}

func (r rule) allows(role Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var staff = []Role{RoleAdmin, RoleSeller}

// transitions[from][to] is absent when the transition is never legal.
// Released, refunded and cancelled have no outgoing edges: once an order is
// settled its financial outcome is final.
var transitions = map[Status]map[Status]rule{
	StatusPending: {
		StatusPaid:      {roles: staff},
		StatusShipped:   {roles: staff},
		StatusDelivered: {roles: staff},
		StatusCancelled: {roles: []Role{RoleAdmin, RoleSeller, RoleBuyer}, ownerOnly: true},
		StatusReleased:  {roles: []Role{RoleAdmin}},
		StatusRefunded:  {roles: []Role{RoleAdmin}},
	},
	StatusPaid: {
		StatusShipped:   {roles: staff},
		StatusDelivered: {roles: staff},
		StatusCancelled: {roles: staff},
		StatusReleased:  {roles: []Role{RoleAdmin}},
		StatusRefunded:  {roles: []Role{RoleAdmin}},
	},
	StatusShipped: {
		StatusDelivered: {roles: staff},
		StatusCancelled: {roles: staff},
		StatusReleased:  {roles: []Role{RoleAdmin}},
		StatusRefunded:  {roles: []Role{RoleAdmin}},
	},
	StatusDelivered: {
		StatusCancelled: {roles: staff},
		StatusReleased:  {roles: []Role{RoleAdmin}},
		StatusRefunded:  {roles: []Role{RoleAdmin}},
	},
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered,
		StatusCancelled, StatusReleased, StatusRefunded:
		return true
	}
	return false
}

// canTransition checks (from, to, role, owner) against the table. isOwner is
// whether the actor is the buyer who placed the order.
func canTransition(from, to Status, role Role, isOwner bool) *Error {
	if !ValidStatus(to) {
		return newError(KindValidation, "unknown order status %q", to)
	}
	row, ok := transitions[from]
	if !ok {
		return newError(KindConflict, "order already %s", from)
	}
	r, ok := row[to]
	if !ok {
		return newError(KindValidation, "cannot move order from %s to %s", from, to)
	}
	if !r.allows(role) {
		return newError(KindUnauthorized, "role %s may not set order status %s", role, to)
	}
	if r.ownerOnly && role == RoleBuyer && !isOwner {
		return newError(KindUnauthorized, "buyers may only cancel their own orders")
	}
	return nil
}
