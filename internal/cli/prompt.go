package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const minPasswordLength = 8

// promptNewPassword asks for a password twice on a terminal. When stdin is
// not a terminal a single line is read instead, so scripts can pipe it in.
func promptNewPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return checkPassword(strings.TrimRight(line, "\r\n"))
	}

	fmt.Printf("Enter %s: ", label)
	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Printf("Confirm %s: ", label)
	confirm, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	return checkPassword(string(password))
}

func checkPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return password, nil
}

// confirm asks a yes/no question, skipped when force is set
func confirm(question string, force bool) bool {
	if force {
		return true
	}
	fmt.Printf("%s (yes/no): ", question)
	var answer string
	fmt.Scanln(&answer)
	return answer == "yes"
}
