package clean

import "errors"

// Sentinel errors for the failure taxonomy shared across the core.
// Callers match with errors.Is; wrapping with fmt.Errorf("...: %w", err)
// preserves the kind.
var (
	// ErrInvalidPIN reports a malformed PIN (wrong length or non-digit).
	ErrInvalidPIN = errors.New("pin must be exactly 4 digits")

	// ErrPINMismatch reports a wrong PIN on verify or change.
	ErrPINMismatch = errors.New("pin does not match")

	// ErrNoPIN reports an operation that requires a configured PIN.
	ErrNoPIN = errors.New("no pin configured")

	// ErrPINAlreadySet reports a SetupPIN call when a credential already
	// exists. Rotation goes through ChangePIN.
	ErrPINAlreadySet = errors.New("pin already configured")

	// ErrContentUnavailable reports that an asset's byte content could not
	// be read. It affects only that asset, never a whole scan.
	ErrContentUnavailable = errors.New("asset content unavailable")

	// ErrNotFound reports a lookup for an id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrScanInProgress reports an attempt to start a scan while another
	// scan over the same inventory is still running.
	ErrScanInProgress = errors.New("scan already in progress")
)
