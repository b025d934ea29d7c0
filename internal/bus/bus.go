// Package bus defines the event fanout collaborator used by C8: a
// publish/subscribe abstraction that lets state-machine transitions,
// forced overrides, and cross-worker sync events reach listeners
// without the health package knowing who, if anyone, is listening.
//
// The shape is modeled on pkg/discovery.Registry
// Watch/Unwatch pair: a subscription is a handle a caller can drop,
// and dropping it is the only thing that ever unregisters a listener.
package bus

import "context"

// EventBus fans out named events from a source (typically a health
// engine's config name) to interested subscribers.
type EventBus interface {
	// Post delivers event/payload to every current subscriber of source.
	// Delivery is best-effort: a slow or panicking handler must never
	// block or fail the caller.
	Post(ctx context.Context, source, event string, payload any) error

	// SubscribeWeak registers handler for events posted against source.
	// It is called "weak" because the bus holds no reference the caller
	// must remember to release beyond calling Close on the returned
	// Subscription, closing is how a worker stops listening when it
	// shuts down, standing in for the source design's GC-collected weak
	// reference.
	SubscribeWeak(source string, handler func(event string, payload any)) Subscription
}

// Subscription is a handle returned by SubscribeWeak. Close stops
// delivery to the associated handler; it is safe to call more than
// once and safe to call from within the handler itself.
type Subscription interface {
	Close()
}
