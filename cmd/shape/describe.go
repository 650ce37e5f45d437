package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/shape/internal/presentation/tui"
	"github.com/aretw0/shape/pkg/openapi"
)

type describeOptions struct {
	schemaPath string
	name       string
	store      string
	openapi    bool
	markdown   bool
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the fields of a schema",
	Long: `Prints the compiled fields of a schema as a table. With --openapi the schema is
exported as an OpenAPI 3 schema object instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		o := describeOptions{}
		o.schemaPath, _ = cmd.Flags().GetString("schema")
		o.name, _ = cmd.Flags().GetString("name")
		o.store, _ = cmd.Flags().GetString("store")
		o.openapi, _ = cmd.Flags().GetBool("openapi")
		o.markdown, _ = cmd.Flags().GetBool("markdown")

		return runDescribe(cmd.Context(), cmd.OutOrStdout(), o, tui.IsTerminal(os.Stdout), tui.Width(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().StringP("schema", "s", "", "Schema file (.json, .yaml or .yml)")
	describeCmd.Flags().StringP("name", "n", "", "Name of a stored schema, used instead of --schema")
	describeCmd.Flags().String("store", defaultStore, "Schema store for --name: a directory or a redis:// URL")
	describeCmd.Flags().Bool("openapi", false, "Print the OpenAPI 3 schema object as JSON")
	describeCmd.Flags().Bool("markdown", false, "Print the markdown table without rendering it")
}

func runDescribe(ctx context.Context, w io.Writer, o describeOptions, styled bool, width int) error {
	v, err := loadValidator(ctx, o.schemaPath, o.name, o.store)
	if err != nil {
		return usageError(err)
	}

	if o.openapi {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(openapi.FromNode(v.Schema()))
	}

	title := o.name
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(o.schemaPath), filepath.Ext(o.schemaPath))
	}
	md := tui.SchemaMarkdown(title, v.Schema())
	if o.markdown {
		_, err := io.WriteString(w, md)
		return err
	}

	render, err := tui.NewRenderer(styled, width)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("failed to render schema: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
