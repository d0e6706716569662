// Package ratelimit provides the process-wide token bucket that throttles
// calls to the remote catalog provider.
//
// The bucket is an explicit object, not an ambient singleton: the start and
// sync commands construct exactly one instance and hand it to the provider
// client, so tests can construct their own without global state.
package ratelimit
