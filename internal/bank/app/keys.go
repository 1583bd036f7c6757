package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
)

// InitAuthKeys builds the KeyManager that signs and verifies session tokens.
//
// With AUTH_SIGNING_KEY_FILE set the Ed25519 key is read from that file,
// or generated and written there on first start, so sessions survive a
// restart. Without it the key is ephemeral and every session dies with the
// process.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
	}

	if cfg.SigningKeyFile != "" {
		pemKey, err := cryptox.LoadOrGenerateEd25519Key(cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load signing key: %w", err)
		}
		opts.PrivateKeyPEM = pemKey
	}

	km, err := jwtx.NewKeyManager(opts)
	if err != nil {
		return nil, err
	}

	if cfg.SigningKeyFile == "" {
		logger.Warn("using an ephemeral signing key, sessions will not survive a restart")
	} else {
		logger.Info("signing key loaded", "kid", km.Signer.KID(), "path", cfg.SigningKeyFile)
	}
	return km, nil
}
