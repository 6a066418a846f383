package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	externalip "github.com/glendc/go-external-ip"
	"github.com/labstack/gommon/log"
)

// StringFromEmbedFile reads a file from an embedded filesystem into a string
func StringFromEmbedFile(efs fs.FS, filename string) (string, error) {
	file, err := efs.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func LookupEnvOrString(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func LookupEnvOrBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.ParseBool(val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrBool[%s]: %v\n", key, err)
		}
		return v
	}
	return defaultVal
}

func LookupEnvOrInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.Atoi(val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrInt[%s]: %v\n", key, err)
		}
		return v
	}
	return defaultVal
}

func LookupEnvOrInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		v, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "LookupEnvOrInt64[%s]: %v\n", key, err)
		}
		return v
	}
	return defaultVal
}

// ParseLogLevel converts a log level name to a gommon log level
func ParseLogLevel(lvl string) (log.Lvl, error) {
	switch lvl {
	case "DEBUG":
		return log.DEBUG, nil
	case "INFO":
		return log.INFO, nil
	case "WARN":
		return log.WARN, nil
	case "ERROR":
		return log.ERROR, nil
	case "OFF":
		return log.OFF, nil
	default:
		return log.DEBUG, fmt.Errorf("not a valid log level: %s", lvl)
	}
}

// RandomToken returns n cryptographically random bytes, hex-encoded.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cannot generate random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GetPublicIP to get machine's public ip address
func GetPublicIP() (string, error) {
	// set time out to 5 seconds
	cfg := externalip.ConsensusConfig{}
	cfg.Timeout = time.Second * 5
	consensus := externalip.NewConsensus(&cfg, nil)

	// add trusted voters
	consensus.AddVoter(externalip.NewHTTPSource("http://checkip.amazonaws.com/"), 1)
	consensus.AddVoter(externalip.NewHTTPSource("http://whatismyip.akamai.com"), 1)
	consensus.AddVoter(externalip.NewHTTPSource("http://ifconfig.top"), 1)

	ip, err := consensus.ExternalIP()
	if err != nil {
		return "", err
	}
	return ip.String(), nil
}

// ResolveBaseURL returns the configured public base URL of the app. When
// none is configured it falls back to the machine's public IP so that
// password-reset links stay reachable.
func ResolveBaseURL() string {
	if BaseURL != "" {
		return BaseURL
	}
	ip, err := GetPublicIP()
	if err != nil {
		log.Warn("Cannot detect public ip address, reset links will use localhost: ", err)
		return "http://localhost:5000"
	}
	return fmt.Sprintf("http://%s:5000", ip)
}
