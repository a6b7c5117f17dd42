package domain

type ActionKind string

const (
	ActionOnboard ActionKind = "onboard"
	ActionDelete  ActionKind = "delete"
	ActionKeep    ActionKind = "keep"
)

// Action is one reconciliation step. Actions are derived fresh every run and
// never persisted.
type Action struct {
	Kind ActionKind
	// Registry is set for ONBOARD and for KEEPs over a discovered registry.
	Registry *DiscoveredRegistry
	// Registration is set for DELETE and for KEEPs over an existing record.
	Registration *Registration
	// Account is the owning CSPM account, set whenever the target's account
	// is known. ONBOARD needs it for the role ARN and external id.
	Account *Account
	Reason  string
}

// Target names the action's subject for reports and logs.
func (a Action) Target() string {
	switch {
	case a.Registry != nil:
		return a.Registry.URL
	case a.Registration != nil:
		return a.Registration.URL
	default:
		return ""
	}
}
