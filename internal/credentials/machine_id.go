package credentials

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const passwordSalt = "lazysearch-keyring-salt-v1"

// deriveFilePassword returns the passphrase for the encrypted file backend.
// It is stable for a given machine and user.
func deriveFilePassword() (string, error) {
	machineID, err := machineID()
	if err != nil {
		machineID, _ = os.Hostname()
	}

	hash := sha256.Sum256([]byte(machineID + currentUser() + passwordSalt))
	return base64.StdEncoding.EncodeToString(hash[:]), nil
}

func currentUser() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if u := os.Getenv(key); u != "" {
			return u
		}
	}
	return fmt.Sprintf("uid-%d", os.Getuid())
}

func machineID() (string, error) {
	switch runtime.GOOS {
	case "linux":
		for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
			if data, err := os.ReadFile(path); err == nil {
				return strings.TrimSpace(string(data)), nil
			}
		}
	case "darwin":
		out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
		if err == nil {
			if id := fieldAfter(string(out), "IOPlatformUUID", "="); id != "" {
				return id, nil
			}
		}
	case "windows":
		out, err := exec.Command("wmic", "csproduct", "get", "UUID").Output()
		if err == nil {
			for _, line := range strings.Split(string(out), "\n") {
				if line = strings.TrimSpace(line); line != "" && line != "UUID" {
					return line, nil
				}
			}
		}
	}
	return os.Hostname()
}

// fieldAfter finds the first line containing marker and returns the unquoted
// value after sep
func fieldAfter(output, marker, sep string) string {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, marker) {
			continue
		}
		if parts := strings.SplitN(line, sep, 2); len(parts) == 2 {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"")
		}
	}
	return ""
}
