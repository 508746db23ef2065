// package transport drives a host provided, XMLHttpRequest shaped
// [http.Primitive] through a single exchange and settles the outcome into a
// [future.Future].
//
// primitives report completion through irregular signals: ready state
// transitions, a separate error notification, quirky status codes and a raw
// header blob. the adapter turns them into one canonical [http.Response],
// resolved or rejected exactly once.
//
// an exchange walks the states
//
//	Idle -> Opened -> Sent -> Settled
//
// and may jump to Settled from any of them on cancellation or failure.
package transport
