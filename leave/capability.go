/*
capability.go - Permission matrix for cancellation and deletion

PURPOSE:
  Represents permissible actions as an explicit table of
  (role, ownership, action, request state, split flag, timing) rules,
  evaluated as a pure function. Replaces ad hoc conditionals scattered
  through handlers.

MATRIX (cancellation):
  pending:   owner may cancel, any timing
  approved + partially credited: owner may cancel while the dates have not
             fully elapsed
  approved + fully credited:     admin only, and only while the leave
             period is entirely in the future; once the period has begun,
             nobody (admin included) may cancel
  denied/cancelled: nothing to cancel

MATRIX (deletion):
  cancelled/denied: owner or admin
  any status:       admin
*/
package leave

// Action is an operation subject to the capability table.
type Action string

const (
	ActionCancel Action = "cancel"
	ActionDelete Action = "delete"
)

// tri is a three-valued match: require true, require false, or don't care.
type tri int

const (
	either tri = iota
	yes
	no
)

func (t tri) matches(v bool) bool {
	switch t {
	case yes:
		return v
	case no:
		return !v
	default:
		return true
	}
}

// capability is one row of the permission matrix. Rules are evaluated in
// order; the first match wins.
type capability struct {
	action  Action
	status  Status
	owner   tri
	admin   tri
	split   tri      // request carries a partial/zero-credit record
	timings []Timing // nil = any timing
	allow   bool
	reason  string // explanation when the rule denies
}

var capabilities = []capability{
	// --- cancel ---
	{action: ActionCancel, status: StatusPending, owner: yes, allow: true},
	{action: ActionCancel, status: StatusPending, admin: yes, allow: true},
	{action: ActionCancel, status: StatusApproved, owner: yes, split: yes,
		timings: []Timing{TimingFuture, TimingStarted}, allow: true},
	{action: ActionCancel, status: StatusApproved, admin: yes, split: yes,
		timings: []Timing{TimingFuture, TimingStarted}, allow: true},
	{action: ActionCancel, status: StatusApproved, admin: yes, split: no,
		timings: []Timing{TimingFuture}, allow: true},
	{action: ActionCancel, status: StatusApproved, split: no,
		timings: []Timing{TimingStarted, TimingElapsed}, allow: false,
		reason: "approved leave that has begun cannot be cancelled"},
	{action: ActionCancel, status: StatusApproved, allow: false,
		reason: "not permitted to cancel this approved request"},
	{action: ActionCancel, status: StatusDenied, allow: false, reason: "request already denied"},
	{action: ActionCancel, status: StatusCancelled, allow: false, reason: "request already cancelled"},

	// --- delete ---
	{action: ActionDelete, admin: yes, allow: true}, // any status
	{action: ActionDelete, status: StatusCancelled, owner: yes, allow: true},
	{action: ActionDelete, status: StatusDenied, owner: yes, allow: true},
}

// Allowed evaluates the capability table for an actor acting on a request
// at a given date. Returns nil when permitted, or a ForbiddenError naming
// the matched restriction.
func Allowed(actor Actor, action Action, req *Request, now Date) error {
	isOwner := actor.ID == req.EmployeeID
	isAdmin := actor.Role == RoleAdmin
	timing := req.Timing(now)

	for _, c := range capabilities {
		if c.action != action {
			continue
		}
		if c.status != "" && c.status != req.Status {
			continue
		}
		if !c.owner.matches(isOwner) || !c.admin.matches(isAdmin) {
			continue
		}
		if !c.split.matches(req.PartiallyCredited()) {
			continue
		}
		if c.timings != nil && !containsTiming(c.timings, timing) {
			continue
		}
		if c.allow {
			return nil
		}
		return &ForbiddenError{Actor: actor, Action: action, Reason: c.reason}
	}
	return &ForbiddenError{Actor: actor, Action: action, Reason: "no capability rule permits this action"}
}

func containsTiming(ts []Timing, t Timing) bool {
	for _, v := range ts {
		if v == t {
			return true
		}
	}
	return false
}
