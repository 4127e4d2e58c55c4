// ABOUTME: Admin CLI for savet-portal role and inbox management
// ABOUTME: Works directly against the SQLite database from the config file

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/uchsavet/savet-portal/internal/config"
	"github.com/uchsavet/savet-portal/internal/store"
)

const banner = `
                          _                  _           _
  ___  __ ___   _____  __| |_      __ _   __| |_ __ ___ (_)_ __
 / __|/ _' \ \ / / _ \/ _' (_)____/ _' | / _' | '_ ' _ \| | '_ \
 \__ \ (_| |\ V /  __/ (_| |_____| (_| || (_| | | | | | | | | | |
 |___/\__,_| \_/ \___|\__,_|      \__,_| \__,_|_| |_| |_|_|_| |_|
`

// validRoles are the role values the admin panel recognizes
var validRoles = map[string]bool{
	store.RoleAdmin:     true,
	store.RoleEditor:    true,
	store.RoleModerator: true,
	store.RoleUser:      true,
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "users":
		err = cmdUsers()
	case "accounts":
		err = cmdAccounts()
	case "grant":
		err = cmdGrant(args)
	case "revoke":
		err = cmdRevoke(args)
	case "messages":
		err = cmdMessages(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: savet-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  users                            List admin users and their roles")
	fmt.Println("  accounts                         List login accounts")
	fmt.Println("  grant --user-id ID --role ROLE   Grant a role (admin/editor/moderator/user)")
	fmt.Println("  revoke --user-id ID              Demote a user to the user role")
	fmt.Println("  messages [--unread]              Show the contact form inbox")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  SAVET_CONFIG             Config file path (default: ~/.config/savet/portal.yaml)")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  savet-admin users")
	fmt.Println("  savet-admin grant --user-id 7f3a... --role editor")
	fmt.Println("  savet-admin messages --unread")
	fmt.Println()
}

// getConfigPath mirrors the server's config resolution
func getConfigPath() string {
	if envPath := os.Getenv("SAVET_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "portal.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "savet", "portal.yaml")
}

// openStore loads the config and opens the database
func openStore() (*store.SQLiteStore, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return s, nil
}

func cmdUsers() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	users, err := s.ListAdminUsers(context.Background())
	if err != nil {
		return fmt.Errorf("listing admin users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No admin users yet. Run: savet-portal bootstrap --email you@example.com")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER ID\tEMAIL\tROLE\tUPDATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.UserID, u.Email, u.Role, u.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func cmdAccounts() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	accounts, err := s.ListAccounts(context.Background())
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT ID\tEMAIL\tCREATED")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Email, a.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func cmdGrant(args []string) error {
	userID, role, err := parseGrantArgs(args)
	if err != nil {
		return err
	}
	if role == "" {
		return fmt.Errorf("--role flag is required")
	}
	if !validRoles[role] {
		return fmt.Errorf("invalid role %q (use admin, editor, moderator, or user)", role)
	}

	return setRole(userID, role)
}

func cmdRevoke(args []string) error {
	userID, role, err := parseGrantArgs(args)
	if err != nil {
		return err
	}
	if role != "" {
		return fmt.Errorf("revoke takes no --role flag")
	}

	return setRole(userID, store.RoleUser)
}

// setRole writes the role into both lookup tables so the access gate sees a
// consistent answer regardless of which table it consults first.
func setRole(userID, role string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()

	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return fmt.Errorf("looking up account %s: %w", userID, err)
	}

	if err := s.UpsertAdminRole(ctx, userID, account.Email, role); err != nil {
		return fmt.Errorf("updating admin role: %w", err)
	}
	if err := s.UpsertProfileRole(ctx, userID, account.Email, role); err != nil {
		return fmt.Errorf("updating profile role: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ %s is now %s\n", account.Email, role)
	return nil
}

func parseGrantArgs(args []string) (userID, role string, err error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--user-id" || arg == "-u":
			if i+1 >= len(args) {
				return "", "", fmt.Errorf("--user-id requires a value")
			}
			userID = args[i+1]
			i++
		case strings.HasPrefix(arg, "--user-id="):
			userID = strings.TrimPrefix(arg, "--user-id=")
		case arg == "--role" || arg == "-r":
			if i+1 >= len(args) {
				return "", "", fmt.Errorf("--role requires a value")
			}
			role = args[i+1]
			i++
		case strings.HasPrefix(arg, "--role="):
			role = strings.TrimPrefix(arg, "--role=")
		default:
			return "", "", fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	if userID == "" {
		return "", "", fmt.Errorf("--user-id flag is required")
	}
	return userID, role, nil
}

func cmdMessages(args []string) error {
	unreadOnly := false
	for _, arg := range args {
		switch arg {
		case "--unread":
			unreadOnly = true
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	msgs, err := s.ListContactMessages(context.Background(), unreadOnly, 100)
	if err != nil {
		return fmt.Errorf("listing messages: %w", err)
	}

	if len(msgs) == 0 {
		fmt.Println("Inbox is empty.")
		return nil
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	for _, m := range msgs {
		status := " "
		if !m.Read {
			status = "*"
		}
		cyan.Printf("%s %s <%s>", status, m.Name, m.Email)
		gray.Printf("  %s\n", m.CreatedAt.Format("2006-01-02 15:04"))
		if m.Subject != "" {
			fmt.Printf("  Subject: %s\n", m.Subject)
		}
		fmt.Printf("  %s\n\n", m.Body)
	}

	return nil
}
