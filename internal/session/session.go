// Package session mints the runtime identity assigned to a freshly
// upgraded connection before it is handed to the World Director's Bind.
// Credential verification is out of scope here: the HTTP layer is assumed
// to have already resolved an authenticated userID (e.g. from a bearer
// token or a dev-mode query param) before calling NewRuntimeID.
package session

import (
	"strconv"
	"sync/atomic"
)

// runtimeCounter is the per-process monotonic source of runtime ids.
var runtimeCounter atomic.Uint64

// NewRuntimeID mints a fresh runtime id for one live connection from a
// per-process monotonic counter. A user
// reconnecting gets a new runtimeID every time; the World Director is what
// ties it back to a stable userID and evicts whichever prior runtimeID
// that user held.
func NewRuntimeID() string {
	return strconv.FormatUint(runtimeCounter.Add(1), 10)
}
