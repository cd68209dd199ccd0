package event

// subscribeConfig holds per-subscription settings.
type subscribeConfig struct {
	owner string
	once  bool
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeConfig)

// WithOwner tags the subscription with an owner id so CleanupOwner can
// remove it in bulk.
func WithOwner(owner string) SubscribeOption {
	return func(c *subscribeConfig) { c.owner = owner }
}

func withOnce() SubscribeOption {
	return func(c *subscribeConfig) { c.once = true }
}
