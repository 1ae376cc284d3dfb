package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/yawn/internal/catalog"
	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/querydoc"
	"github.com/roach88/yawn/internal/queryir"
	"github.com/roach88/yawn/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Catalog string // catalog directory
	Dialect string // sqlite | postgres
	Output  string // output file path
}

// CompilationResult is the rendered statement of one query document.
type CompilationResult struct {
	Dialect string   `json:"dialect"`
	SQL     string   `json:"sql"`
	Params  []any    `json:"params"`
	Columns []string `json:"columns"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query.yaml>",
		Short: "Compile a query document to SQL",
		Long: `Compile a YAML query document against a CUE catalog and print the
parameterized SQL statement.

Every table, join and sub-query gets its alias from one compilation
context, so the output is identical across runs.

Example:
  yawn compile --catalog ./catalog ./queries/longest.yaml
  yawn compile --catalog ./catalog --dialect postgres -o longest.sql ./queries/longest.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog directory (required)")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "sqlite", "SQL dialect (sqlite|postgres)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the SQL to this file")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func runCompile(opts *CompileOptions, docPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	dialect, err := querysql.ParseDialect(opts.Dialect)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	plan, err := loadPlan(formatter, opts.Catalog, docPath, nil)
	if err != nil {
		return err
	}
	sel, err := resolvePlan(formatter, plan)
	if err != nil {
		return err
	}

	sql, params, err := querysql.NewSQLCompiler(dialect).Compile(sel)
	if err != nil {
		return outputCommandError(formatter, ErrCodeRender, err.Error())
	}
	result := &CompilationResult{Dialect: dialect.String(), SQL: sql, Params: params, Columns: plan.Columns}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(sql+"\n"), 0644); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}
	return outputCompileSuccess(formatter, result, opts.Output)
}

// loadPlan loads the catalog and the document and builds the query. c
// may be nil when the plan is only resolved.
func loadPlan(formatter *OutputFormatter, catalogDir, docPath string, c query.Compiler) (*querydoc.Plan, error) {
	cat, err := LoadCatalog(catalogDir)
	if err != nil {
		code, message := loadErrorParts(err)
		return nil, outputCommandError(formatter, code, message)
	}
	formatter.VerboseLog("Loaded %d table(s) from %s", len(cat.Tables()), catalogDir)

	doc, err := LoadDocument(docPath)
	if err != nil {
		code, message := loadErrorParts(err)
		return nil, outputCommandError(formatter, code, message)
	}

	plan, err := querydoc.Build(cat, c, doc)
	if err != nil {
		return nil, outputCommandError(formatter, ErrCodeBuild, err.Error())
	}
	return plan, nil
}

// resolvePlan resolves every alias of plan and validates the tree.
func resolvePlan(formatter *OutputFormatter, plan *querydoc.Plan) (*queryir.Select, error) {
	sel, err := query.Resolve(plan.Model(), plan.Root())
	if err != nil {
		return nil, outputCommandError(formatter, ErrCodeResolve, err.Error())
	}
	if v := queryir.Validate(sel); !v.Valid {
		_ = formatter.Error(ErrCodeResolve, "resolved query is invalid", v.Problems)
		return nil, NewExitError(ExitFailure, fmt.Sprintf("%s: %s", ErrCodeResolve, strings.Join(v.Problems, "; ")))
	}
	return sel, nil
}

// outputCompileSuccess outputs the rendered statement.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.SQL)
	if len(result.Params) > 0 {
		fmt.Fprintf(formatter.Writer, "-- params: %v\n", result.Params)
	}
	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote %s SQL to %s\n", result.Dialect, outputFile)
	}
	return nil
}

// outputCommandError outputs a single error. These are command-level
// errors (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// catalogSummary is the text summary of a catalog.
func catalogSummary(cat *catalog.Catalog) []string {
	var lines []string
	for _, t := range cat.Tables() {
		lines = append(lines, fmt.Sprintf("  %s: %d column(s), %d join(s)", t.Name, len(t.Columns), len(t.Joins)))
	}
	return lines
}
