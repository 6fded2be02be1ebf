package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Cryptographic error definitions.
//
// Startup errors (master key provisioning) wrap ErrInvalidInput so the CLI can report them
// plainly. ErrDecryptionFailed wraps ErrIntegrity: a sealed value that does not open under the
// current master key is either corrupted or was sealed by a different key.
var (
	// ErrUnsupportedAlgorithm indicates the configured cipher algorithm is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the master key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrMasterKeyNotSet indicates VAULT_MASTER_KEY is empty. The vault refuses to start
	// rather than generating a key it could not retain.
	ErrMasterKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "VAULT_MASTER_KEY is not set")

	// ErrInvalidMasterKeyBase64 indicates VAULT_MASTER_KEY is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "invalid master key base64")

	// ErrInvalidKMSConfig indicates KMS_PROVIDER and KMS_KEY_URI do not describe a usable KMS key.
	ErrInvalidKMSConfig = errors.Wrap(errors.ErrInvalidInput, "invalid KMS configuration")

	// ErrKMSDecryptionFailed indicates the KMS refused to unwrap the master key.
	ErrKMSDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "failed to decrypt master key with KMS")

	// ErrDecryptionFailed indicates a sealed value could not be opened.
	//
	// The specific cause (wrong key, tampering, truncation) is deliberately not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrIntegrity, "decryption failed")
)
