package commands

import (
	"encoding/json"
	"fmt"
	"io"

	authService "github.com/allisson/keyvault/internal/auth/service"
)

// bootstrapSecretOutput is the JSON form of create-bootstrap-secret.
type bootstrapSecretOutput struct {
	BootstrapSecret     string `json:"bootstrap_secret"`
	BootstrapSecretHash string `json:"bootstrap_secret_hash"`
}

// RunCreateBootstrapSecret generates a bootstrap secret and prints it with its Argon2id hash. The
// hash goes into ADMIN_BOOTSTRAP_SECRET_HASH; the secret is sent as X-Bootstrap-Secret to
// POST /admin/init and is never stored by the server.
func RunCreateBootstrapSecret(secretService authService.SecretService, writer io.Writer, format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	plainSecret, hashedSecret, err := secretService.GenerateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate bootstrap secret: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(bootstrapSecretOutput{
			BootstrapSecret:     plainSecret,
			BootstrapSecretHash: hashedSecret,
		})
	}

	_, _ = fmt.Fprintln(writer, "# Bootstrap secret (shown once, keep it out of the server environment)")
	_, _ = fmt.Fprintf(writer, "# X-Bootstrap-Secret: %s\n", plainSecret)
	_, _ = fmt.Fprintln(writer)
	// Single quotes stop .env loaders from expanding the $ separators of the hash.
	_, _ = fmt.Fprintf(writer, "ADMIN_BOOTSTRAP_SECRET_HASH='%s'\n", hashedSecret)
	return nil
}
