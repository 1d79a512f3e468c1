package store

import "sync"

// BrokerDirectory maps trading accounts to the broker that earns their
// commission. Accounts without an assignment resolve to the default
// broker, if one is configured.
type BrokerDirectory struct {
	mu            sync.RWMutex
	defaultBroker string
	assignments   map[string]string // account_id → broker account_id
}

// NewBrokerDirectory creates a directory with the given default broker
// (empty for none) and initial assignments.
func NewBrokerDirectory(defaultBroker string, seed map[string]string) *BrokerDirectory {
	d := &BrokerDirectory{
		defaultBroker: defaultBroker,
		assignments:   make(map[string]string, len(seed)),
	}
	for acc, broker := range seed {
		d.assignments[acc] = broker
	}
	return d
}

// ResolveBrokerFor returns the broker assigned to accountID, falling back
// to the default broker. ok is false when neither exists.
func (d *BrokerDirectory) ResolveBrokerFor(accountID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if b, ok := d.assignments[accountID]; ok {
		return b, true
	}
	if d.defaultBroker != "" {
		return d.defaultBroker, true
	}
	return "", false
}

// Assign binds accountID to brokerID, replacing any previous assignment.
func (d *BrokerDirectory) Assign(accountID, brokerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.assignments[accountID] = brokerID
}

// Unassign removes the explicit assignment for accountID. Returns false if
// there was none.
func (d *BrokerDirectory) Unassign(accountID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.assignments[accountID]; !ok {
		return false
	}
	delete(d.assignments, accountID)
	return true
}
