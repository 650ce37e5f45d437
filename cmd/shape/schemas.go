package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "Manage stored schemas",
	Long:  `Stores, lists, prints and deletes named schemas in a directory or Redis store.`,
}

var schemasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored schema names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(b *backend) error {
			names, err := b.registry().List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		})
	},
}

var schemasPutCmd = &cobra.Command{
	Use:   "put NAME FILE",
	Short: "Compile a schema file and store it under NAME",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := loadRaw(args[1])
		if err != nil {
			return usageError(err)
		}
		return withStore(cmd, func(b *backend) error {
			v, err := b.registry().Put(cmd.Context(), args[0], raw)
			if err != nil {
				return usageError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d fields)\n", args[0], v.Schema().Len())
			return nil
		})
	},
}

var schemasGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a stored schema",
	Long:  `Prints the stored shorthand schema, or its compiled form with --compiled.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compiled, _ := cmd.Flags().GetBool("compiled")
		return withStore(cmd, func(b *backend) error {
			v, err := b.registry().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if compiled {
				return writeIndented(cmd.OutOrStdout(), v.Schema())
			}
			return writeIndented(cmd.OutOrStdout(), v.Raw())
		})
	},
}

var schemasDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a stored schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(b *backend) error {
			return b.registry().Delete(cmd.Context(), args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
	schemasCmd.AddCommand(schemasListCmd, schemasPutCmd, schemasGetCmd, schemasDeleteCmd)

	schemasCmd.PersistentFlags().String("store", defaultStore, "Schema store: a directory or a redis:// URL")
	schemasGetCmd.Flags().Bool("compiled", false, "Print the compiled schema instead of the shorthand")
}

func withStore(cmd *cobra.Command, fn func(*backend) error) error {
	spec, _ := cmd.Flags().GetString("store")
	b, err := openStore(spec, false)
	if err != nil {
		return usageError(err)
	}
	defer func() {
		if err := b.close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()
	return fn(b)
}

func writeIndented(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
