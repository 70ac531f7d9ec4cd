// Package lifecycle holds timing shared by start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds a single start or stop hook such as a DB ping or
// HTTP shutdown.
const DefaultTimeout = 10 * time.Second
