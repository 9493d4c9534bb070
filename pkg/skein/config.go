package skein

import "log/slog"

// DevMode enables development-time diagnostics for API misuse.
// When true:
//   - Computations created outside any scope report a reclamation warning
//   - Cleanups and context values registered without an active scope warn
//   - Reconciliation advisories (duplicate keys, identity-keyed primitives)
//     are reported
//
// When false (production), all diagnostics are silent no-ops with no
// overhead beyond a single boolean check.
//
// Set this at application startup:
//
//	func main() {
//	    skein.DevMode = os.Getenv("SKEIN_DEV") == "1"
//	    // ...
//	}
var DevMode = false

// DiagnosticHandler receives development diagnostics when DevMode is true.
// The default logs through slog at warn level. Replace it to route
// diagnostics elsewhere, or set it to nil to drop them.
var DiagnosticHandler = func(code, msg string, args ...any) {
	slog.Warn("[SKEIN "+code+"] "+msg, args...)
}

// Diagnostic reports a development-mode advisory. It is a no-op unless
// DevMode is enabled. Codes are stable strings like "W001" so handlers can
// filter on them.
func Diagnostic(code, msg string, args ...any) {
	if !DevMode {
		return
	}
	if h := DiagnosticHandler; h != nil {
		h(code, msg, args...)
	}
}

// Diagnostic codes reported by this package.
const (
	// DiagUnownedComputation: a computation was created with no active
	// scope and will not be disposed automatically.
	DiagUnownedComputation = "W001"

	// DiagNoScope: OnCleanup, Provide, or OnError was called with no
	// active scope; the registration was dropped.
	DiagNoScope = "W002"
)
