// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/plures/superlocalmemory-mcp/internal/secrets"
	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// secretStoreFactory creates a secrets.Store. Package-level so tests
// can substitute the mock keyring.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage credentials in the OS keyring",
		Long: `Store, list, and delete credentials under the superlocalmemory
service in the operating system keyring. Config values can reference
them as keyring://superlocalmemory/<name>.`,
	}

	cmd.AddCommand(
		newSecretSetCmd(),
		newSecretListCmd(),
		newSecretDeleteCmd(),
	)

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> [value]",
		Short: "Store a secret, prompting when no value is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runSecretSet,
	}
}

func newSecretListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored secret names",
		RunE:  runSecretList,
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret by name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretDelete,
	}
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Value for %s: ", name)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return slmerr.Errorf(slmerr.CodeCLIInputInvalid, "reading secret value: %w", err)
		}
		value = string(raw)
	}
	if value == "" {
		return slmerr.New(slmerr.CodeCLIInputInvalid, "secret value must not be empty")
	}

	store := secretStoreFactory()
	if err := store.Store(secrets.DefaultService, name, value); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored secret %s (reference it as keyring://%s/%s)\n",
		name, secrets.DefaultService, name)
	return nil
}

func runSecretList(cmd *cobra.Command, _ []string) error {
	store := secretStoreFactory()
	keys, err := store.List(secrets.DefaultService)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(keys) == 0 {
		fmt.Fprintln(out, "No secrets stored.")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(out, k)
	}
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := secretStoreFactory()

	if err := store.Delete(secrets.DefaultService, name); err != nil {
		if slmerr.HasCode(err, slmerr.CodeSecretNotFound) {
			return slmerr.Errorf(slmerr.CodeSecretNotFound, "secret %q not found", name)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret: %s\n", name)
	return nil
}
