package clean

// CredentialStore holds one short secret durably and confidentially.
// The secret must not be recoverable by reading plain application files;
// implementations seal it at rest.
type CredentialStore interface {
	// Store persists the secret, replacing any previous value.
	Store(secret []byte) error

	// Retrieve returns the stored secret. ok is false when no secret has
	// ever been stored; err reports read or unseal failures.
	Retrieve() (secret []byte, ok bool, err error)

	// Delete removes the stored secret. Deleting an absent secret is a no-op.
	Delete() error
}
