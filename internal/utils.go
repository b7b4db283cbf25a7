package internal

import (
	"github.com/google/uuid"
	"os"
	"path/filepath"
	"strings"
)

const (
	ConfigHomeEnv    = "JSSDK_CONFIG_HOME"
	CacheHomeEnv     = "JSSDK_CACHE_HOME"
	DefaultConfigDir = ".jssdk"
	DefaultCacheDir  = "cache"
	NonceLength      = 10
)

// GenerateNonce returns a random alphanumeric string of the requested length.
// Lengths beyond a single uuid are served by concatenating several.
func GenerateNonce(length int) string {
	var sb strings.Builder
	for sb.Len() < length {
		sb.WriteString(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	return sb.String()[:length]
}

func GetConfigHome() (string, error) {
	var result string

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	result = filepath.Join(homeDir, DefaultConfigDir)

	if tmp := os.Getenv(ConfigHomeEnv); tmp != "" {
		result = tmp
	}

	return result, nil
}

func GetCacheHome() (string, error) {
	var result string

	configHome, err := GetConfigHome()
	if err != nil {
		return "", err
	}

	result = filepath.Join(configHome, DefaultCacheDir)

	if tmp := os.Getenv(CacheHomeEnv); tmp != "" {
		result = tmp
	}

	return result, nil
}
