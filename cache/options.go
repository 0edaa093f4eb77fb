package cache

// Option configures a ResourceCache.
type Option func(*options)

type options struct {
	hooks     Hooks
	autoPrune bool
}

// WithHooks attaches hooks that observe lookups and constructions.
// A nil value leaves the cache unobserved.
func WithHooks(h Hooks) Option {
	return func(o *options) {
		if h != nil {
			o.hooks = h
		}
	}
}

// WithAutoPrune removes the entry for a resource shortly after it has been
// collected, instead of waiting for the next lookup of its key.
func WithAutoPrune() Option {
	return func(o *options) {
		o.autoPrune = true
	}
}
