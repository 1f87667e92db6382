package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/jot/pkg/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check the admin password and print the session token",
	Long: `Read the admin password from stdin, check it against the configured
secret and print the session cookie value. Useful for scripting the HTTP API:

  echo "$PASSWORD" | jot login | xargs -I{} curl -b notes_session={} ...

Failed attempts are only tracked for the lifetime of one process, so the
login limiter of a running server is not affected by this command.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		guard := newGuard(loadConfig())
		if !guard.Enabled() {
			fmt.Fprintln(os.Stderr, auth.MessageNotRequired)
			return
		}

		password, err := readPassword()
		if err != nil {
			fatal("Error reading password", err)
		}

		token, err := cliLogin(guard, password)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

var hashCost int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for admin_password_hash",
	Long:  `Read a password from stdin and print its bcrypt hash for use as admin_password_hash.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		password, err := readPassword()
		if err != nil {
			fatal("Error reading password", err)
		}
		hash, err := auth.HashPassword(password, hashCost)
		if err != nil {
			fatal("Error hashing password", err)
		}
		fmt.Println(hash)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", 0, "bcrypt cost (default 10)")
}

// cliClient is the limiter key used for logins from the command line.
const cliClient = "cli"

// cliLogin returns the session token for password or a message suitable
// for the terminal.
func cliLogin(guard *auth.Guard, password string) (string, error) {
	res, err := guard.Login(password, cliClient)
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return "", errors.New("wrong password")
	case errors.Is(err, auth.ErrRateLimited):
		return "", fmt.Errorf("too many failed attempts, retry in %s", guard.Limiter().Config().Window)
	case err != nil:
		return "", fmt.Errorf("login failed: %w", err)
	}
	return res.Token, nil
}

// readPassword reads the first line of stdin.
func readPassword() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
