// Package catalog exposes catalog synchronization over HTTP: triggering runs,
// inspecting their progress and cancelling them. The heavy lifting lives in
// the sync, match and store subpackages.
package catalog
