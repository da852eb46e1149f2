// Package auth resolves the bearer token that authorizes both transports.
// The token is re-read on every lookup so a refreshed credential is picked
// up mid-job, mirroring how the web client consults storage on each tick.
package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"vidmatic/internal/dirs"
)

const tokenFileName = "token"

// ErrMissingToken is returned when no credential can be found anywhere.
var ErrMissingToken = errors.New("no credential found: set VIDMATIC_TOKEN, the token config key, or run with a token file")

// Token resolves the bearer token: env (via viper binding), config file key,
// then the token file in the config dir. First non-empty wins.
func Token() (string, error) {
	if t := strings.TrimSpace(viper.GetString("token")); t != "" {
		return t, nil
	}
	cfgDir, err := dirs.ConfigDir()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(filepath.Join(cfgDir, tokenFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrMissingToken
		}
		return "", err
	}
	t := strings.TrimSpace(string(b))
	if t == "" {
		return "", ErrMissingToken
	}
	return t, nil
}

// SaveToken writes the token file in the config dir with user-only
// permissions.
func SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	cfgDir, err := dirs.ConfigDir()
	if err != nil {
		return err
	}
	if err := dirs.Ensure(cfgDir); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cfgDir, tokenFileName), []byte(token+"\n"), 0o600)
}
