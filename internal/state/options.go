package state

// subscribeConfig holds per-subscription settings.
type subscribeConfig struct {
	owner string
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeConfig)

// WithOwner tags the subscription with an owner id so CleanupOwner can
// remove it in bulk.
func WithOwner(owner string) SubscribeOption {
	return func(c *subscribeConfig) { c.owner = owner }
}
