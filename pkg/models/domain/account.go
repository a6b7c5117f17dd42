package domain

import "time"

// Account is a cloud account registered with the CSPM inventory, together
// with the cross-account role the vendor assumes to inspect it.
type Account struct {
	ID           string
	Name         string
	IAMRoleARN   string
	ExternalID   string
	DiscoveredAt time.Time
}

// AccountSet indexes accounts by id. Membership is what separates
// engine-managed registrations from manual ones.
type AccountSet map[string]Account

func NewAccountSet(accounts []Account) AccountSet {
	set := make(AccountSet, len(accounts))
	for _, a := range accounts {
		set[a.ID] = a
	}
	return set
}

func (s AccountSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}
