package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfup/internal/compiler"
)

// Finding is one validate result. Line is zero when unknown.
type Finding struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool      `json:"valid"`
	Operations int       `json:"operations"`
	Errors     []Finding `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <request.cue>",
		Short: "Check a request without applying it",
		Long: `Compile a request and check it for likely mistakes without touching
any data.

Compile errors are reported as E001 with their source line. Requests that
compile are checked for template variables the WHERE pattern never binds,
relative LOAD sources without a base, SELECT variables out of scope,
USING NAMED without USING, and repeated CREATE of one graph.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, requestPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(requestPath); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("request file not found: %s", requestPath), nil)
	}

	doc, err := compiler.CompileFile(requestPath)
	if err != nil {
		return outputValidationErrors(formatter, []Finding{compileFinding(err)})
	}
	formatter.VerboseLog("Compiled %d operation(s)", len(doc.Request.Operations))

	var findings []Finding
	for _, v := range compiler.Validate(doc) {
		findings = append(findings, Finding{Code: v.Code, Field: v.Field, Message: v.Message})
	}
	if len(findings) > 0 {
		return outputValidationErrors(formatter, findings)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Operations: len(doc.Request.Operations)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Request valid (%d operation(s))\n", len(doc.Request.Operations))
	return nil
}

func compileFinding(err error) Finding {
	var cerr *compiler.CompileError
	if errors.As(err, &cerr) {
		f := Finding{Code: ErrCodeCompile, Field: cerr.Field, Message: cerr.Message}
		if cerr.Pos.IsValid() {
			f.Line = cerr.Pos.Line()
		}
		return f
	}
	return Finding{Code: ErrCodeCompile, Field: "request", Message: err.Error()}
}

// outputValidationErrors outputs every finding. Findings exit 1.
func outputValidationErrors(formatter *OutputFormatter, errs []Finding) error {
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
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
