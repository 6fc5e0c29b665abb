package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"usajobs-watch/internal/config"
	"usajobs-watch/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the USAJOBS API key in the OS keychain",
	Long:  "The environment variable " + config.EnvAPIKey + " always wins; the keychain entry is the fallback for cron environments without secrets.",
}

var authSetCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the API key in the OS keychain",
	Long:  "Reads the key from stdin so it never lands in shell history.",
	RunE:  runAuthSet,
}

var authClearCmd = &cobra.Command{
	Use:   "clear-key",
	Short: "Remove the API key from the OS keychain",
	RunE:  runAuthClear,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authClearCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	fmt.Fprint(os.Stderr, "API key: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read api key: %w", err)
	}

	key := strings.TrimSpace(line)
	if key == "" {
		return errors.New("api key is empty")
	}
	if err := secrets.SetAPIKey(key); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}
	fmt.Println("api key stored in keychain")
	return nil
}

func runAuthClear(cmd *cobra.Command, args []string) error {
	if err := secrets.DeleteAPIKey(); err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	fmt.Println("api key removed from keychain")
	return nil
}
