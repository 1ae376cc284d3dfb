package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/yawn/internal/catalog"
	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/querydoc"
	"github.com/roach88/yawn/internal/queryir"
)

// ValidationError is one problem found by validate.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Tables    int               `json:"tables"`
	Documents int               `json:"documents"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var catalogDir string

	cmd := &cobra.Command{
		Use:   "validate [query.yaml]...",
		Short: "Validate a catalog and query documents without a database",
		Long: `Validate a CUE catalog and, optionally, query documents against it.

Every document is built, its aliases are resolved in a fresh compilation
context and the resolved tree is checked: every column qualifier must name
an alias in scope and no alias may be handed out twice.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, catalogDir, args, cmd)
		},
	}

	cmd.Flags().StringVar(&catalogDir, "catalog", "", "catalog directory (required)")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func runValidate(opts *RootOptions, catalogDir string, docs []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cat, err := LoadCatalog(catalogDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Code == ErrCodeCatalog {
			return outputValidationErrors(formatter, []ValidationError{{
				File:    catalogDir,
				Code:    loadErr.Code,
				Message: loadErr.Message,
				Line:    lineOf(loadErr),
			}})
		}
		code, message := loadErrorParts(err)
		return outputCommandError(formatter, code, message)
	}
	for _, line := range catalogSummary(cat) {
		formatter.VerboseLog("%s", line)
	}

	var errs []ValidationError
	for _, path := range docs {
		formatter.VerboseLog("Validating document: %s", path)
		errs = append(errs, validateDocument(cat, path)...)
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter, ValidationResult{Valid: true, Tables: len(cat.Tables()), Documents: len(docs)})
}

// validateDocument builds, resolves and checks one document.
func validateDocument(cat *catalog.Catalog, path string) []ValidationError {
	doc, err := LoadDocument(path)
	if err != nil {
		code, message := loadErrorParts(err)
		return []ValidationError{{File: path, Code: code, Message: message}}
	}
	plan, err := querydoc.Build(cat, nil, doc)
	if err != nil {
		return []ValidationError{{File: path, Code: ErrCodeBuild, Message: err.Error()}}
	}
	sel, err := query.Resolve(plan.Model(), plan.Root())
	if err != nil {
		return []ValidationError{{File: path, Code: ErrCodeResolve, Message: err.Error()}}
	}
	var out []ValidationError
	for _, p := range queryir.Validate(sel).Problems {
		out = append(out, ValidationError{File: path, Code: ErrCodeResolve, Message: p})
	}
	return out
}

func lineOf(err *LoadError) int {
	if err.Pos.IsValid() {
		return err.Pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog valid (%d table(s)), %d document(s) valid\n", result.Tables, result.Documents)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		loc := err.File
		if err.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, err.Line)
		}
		fmt.Fprintln(formatter.Writer, loc)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, strings.TrimSpace(err.Message))
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
