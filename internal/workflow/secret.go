package workflow

import "crypto/subtle"

// SecretVerifier checks the shared secret carried by automation callbacks.
// When no secret is configured every caller is accepted; this fail-open
// behavior is deliberate so local setups work without callback auth.
type SecretVerifier struct {
	secret string
}

// NewSecretVerifier constructs a verifier for the configured shared secret.
func NewSecretVerifier(secret string) SecretVerifier {
	return SecretVerifier{secret: secret}
}

// Verify reports whether the provided value matches the configured secret.
func (v SecretVerifier) Verify(provided string) bool {
	if v.secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(v.secret)) == 1
}
