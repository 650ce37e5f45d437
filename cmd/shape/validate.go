package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/shape"
	"github.com/aretw0/shape/internal/presentation/tui"
	"github.com/aretw0/shape/pkg/adapters/file"
	"github.com/aretw0/shape/pkg/schema"
)

type validateOptions struct {
	schemaPath string
	name       string
	store      string
	dataPath   string
	whitelist  bool
	output     string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a data file against a schema",
	Long: `Validates one object against a schema file (--schema) or a stored schema (--name).
The data is read from --data, or from stdin as JSON when --data is "-".

Exit status is 0 when the object is valid, 1 when it is not, and 2 when the
schema or the data cannot be read.`,
	Example: `  shape validate --schema product.yaml --data lamp.json
  cat lamp.json | shape validate --name product --store .shape/schemas --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		o := validateOptions{}
		o.schemaPath, _ = cmd.Flags().GetString("schema")
		o.name, _ = cmd.Flags().GetString("name")
		o.store, _ = cmd.Flags().GetString("store")
		o.dataPath, _ = cmd.Flags().GetString("data")
		o.whitelist, _ = cmd.Flags().GetBool("whitelist")
		o.output, _ = cmd.Flags().GetString("output")

		return runValidate(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), tui.Profile(os.Stdout), o)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("schema", "s", "", "Schema file (.json, .yaml or .yml)")
	validateCmd.Flags().StringP("name", "n", "", "Name of a stored schema, used instead of --schema")
	validateCmd.Flags().String("store", defaultStore, "Schema store for --name: a directory or a redis:// URL")
	validateCmd.Flags().StringP("data", "d", "-", "Data file to validate, or - for stdin")
	validateCmd.Flags().Bool("whitelist", true, "Remove properties the schema does not declare")
	validateCmd.Flags().StringP("output", "o", "pretty", "Output format: pretty or json")
}

func runValidate(ctx context.Context, w io.Writer, stdin io.Reader, p termenv.Profile, o validateOptions) error {
	if o.output != "pretty" && o.output != "json" {
		return usageError(fmt.Errorf("invalid output %q (want pretty or json)", o.output))
	}

	v, err := loadValidator(ctx, o.schemaPath, o.name, o.store)
	if err != nil {
		return usageError(err)
	}

	obj, err := readData(o.dataPath, stdin)
	if err != nil {
		return usageError(err)
	}

	res := v.Validate(obj, shape.WithWhitelist(o.whitelist))
	logger.Debug("validated", "valid", res.Valid, "data", o.dataPath)

	if o.output == "json" {
		err = tui.PrintJSON(w, res)
	} else {
		err = tui.PrintResult(w, p, res)
	}
	if err != nil {
		return usageError(err)
	}

	if !res.Valid {
		return &exitStatus{code: exitInvalid}
	}
	return nil
}

// loadValidator compiles the schema file at path, or fetches name from the
// store when path is empty.
func loadValidator(ctx context.Context, path, name, storeSpec string) (*shape.Validator, error) {
	switch {
	case path != "" && name != "":
		return nil, errors.New("--schema and --name are mutually exclusive")
	case path != "":
		raw, err := file.LoadSchema(path)
		if err != nil {
			return nil, err
		}
		return shape.New(raw, shape.WithLogger(logger))
	case name != "":
		b, err := openStore(storeSpec, true)
		if err != nil {
			return nil, err
		}
		defer b.close()
		return b.registry().Get(ctx, name)
	default:
		return nil, errors.New("one of --schema or --name is required")
	}
}

func readData(path string, stdin io.Reader) (map[string]any, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return file.DecodeData(data, true)
	}
	return file.LoadData(path)
}

// loadRaw reads a schema file for commands that store it.
func loadRaw(path string) (*schema.Raw, error) {
	if path == "" {
		return nil, errors.New("a schema file is required")
	}
	return file.LoadSchema(path)
}
