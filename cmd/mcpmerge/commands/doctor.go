package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpmerge/internal/doctor"
	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
	"github.com/thoreinstein/mcpmerge/internal/paths"
)

var (
	doctorJSON bool
	doctorAll  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show every check, including passed ones")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor <config-path>",
	Short: "Check whether a config file can be safely merged into",
	Long: `Inspect a JSON configuration file without changing it.

Reports whether the file parses, whether its mcpServers collection is
well-formed, whether its permissions are sensible, and whether a backup
from a previous merge is available. Secret-looking env values are masked.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --json      Machine-readable JSON output

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present (a merge would be refused)`,
	Example: `  # Check Claude's config before installing into it
  mcpmerge doctor ~/.claude.json

See Also: mcpmerge`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	if doctorJSON && doctorAll {
		return apperrors.NewUserError(errors.Mark(errors.New("flags --json and --all are mutually exclusive"), apperrors.ErrUsage), "")
	}
	return nil
}

func runDoctor(cmd *cobra.Command, args []string) error {
	target, err := paths.Clean(args[0])
	if err != nil {
		return apperrors.NewUserError(err, "")
	}

	runner := doctor.NewRunner()
	for _, c := range doctor.DefaultChecks(doctor.LoadTarget(target)) {
		runner.AddCheck(c)
	}
	report := runner.Run(cmd.Context())
	report.Target = target

	if !quiet {
		out := cmd.OutOrStdout()
		if doctorJSON {
			err = outputDoctorJSON(out, report)
		} else {
			outputDoctorText(out, report)
		}
		if err != nil {
			return err
		}
	}

	if report.HasErrors() {
		return apperrors.NewExitError(errDoctorErrors, apperrors.ExitSystem)
	}
	if report.HasWarnings() {
		return apperrors.NewExitError(errDoctorWarnings, apperrors.ExitUser)
	}
	return nil
}

func outputDoctorJSON(w io.Writer, report *doctor.DoctorReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport) {
	fmt.Fprintf(w, "%s\n", report.Target)

	for _, result := range report.Results {
		if !doctorAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

// errDoctorWarnings is returned with exit code 1.
var errDoctorWarnings = errors.New("doctor found warnings")

// errDoctorErrors is returned with exit code 2.
var errDoctorErrors = errors.New("doctor found errors")
