// Package pump copies bytes between the SDK and gpg subprocess streams.
//
// The copy loop grows its buffer adaptively: transfers that stay small pay
// for a small buffer, while large payloads quickly reach a capped buffer
// size. Both ends of a pump are optional; a nil end makes the pump a no-op.
package pump
