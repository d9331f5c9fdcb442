package manager

import (
	"fmt"
	"os"
	"os/user"
)

// DetectActor returns "username@hostname" for the user running the command.
// It is attached to log messages so changes to the data file can be traced.
func DetectActor() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}

	return currentUser.Username + "@" + hostname, nil
}
