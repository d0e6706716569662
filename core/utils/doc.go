// Package utils contains small type-conversion helpers for duck-typed JSON
// payloads. The remote catalog provider serializes the same field as a number
// in one endpoint and a string in another; these helpers normalize both forms
// at the decode boundary.
package utils
