package auth

import (
	log "github.com/sirupsen/logrus"
)

// SessionSecretEnvVar holds the session token signing secret.
const SessionSecretEnvVar = "TRETA_SESSION_SECRET"

// insecureDefaultSecret is the documented fallback used when no secret is
// configured. Running with it in production means anyone can forge tokens.
const insecureDefaultSecret = "treta-insecure-dev-secret"

type SecretSource int

const (
	SecretFromEnv SecretSource = iota
	SecretInsecureDefault
)

// ResolveSecret returns the signing secret and where it came from. The
// getenv func is injectable so both resolution paths are testable.
func ResolveSecret(getenv func(string) string) ([]byte, SecretSource) {
	if secret := getenv(SessionSecretEnvVar); secret != "" {
		return []byte(secret), SecretFromEnv
	}

	log.Errorf(
		"!!! session signing secret not set, falling back to the INSECURE default - set %s",
		SessionSecretEnvVar,
	)
	return []byte(insecureDefaultSecret), SecretInsecureDefault
}
