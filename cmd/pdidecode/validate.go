package main

import (
	"errors"
	"fmt"

	"github.com/KevinKickass/OpenIOLink/internal/devices"
	"github.com/spf13/cobra"
)

type fileReport struct {
	File   string          `json:"file"`
	Spec   string          `json:"spec,omitempty"`
	Valid  bool            `json:"valid"`
	Error  string          `json:"error,omitempty"`
	Issues []devices.Issue `json:"issues,omitempty"`
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate device spec files",
		Long: `Validate checks spec files against the JSON schema and the semantic rules
(bit ranges, encodings, overlapping fields). Every issue is reported with its
code; the command fails when any file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := opts.manager()
			if err != nil {
				return err
			}
			f, err := opts.formatter(cmd)
			if err != nil {
				return err
			}

			reports := make([]fileReport, 0, len(args))
			invalid := 0
			for _, path := range args {
				report := fileReport{File: path, Valid: true}
				spec, err := m.LoadFile(path)
				if err != nil {
					report.Valid = false
					report.Error = err.Error()
					var verr *devices.SpecValidationError
					if errors.As(err, &verr) {
						report.Spec = verr.Spec
						report.Issues = verr.Issues
					}
					invalid++
				} else {
					report.Spec = spec.Name
				}
				reports = append(reports, report)
			}

			if f.format == formatJSON {
				if err := f.json(reports); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(reports))
				for _, r := range reports {
					if r.Valid {
						rows = append(rows, []string{r.File, r.Spec, "OK", "", ""})
						continue
					}
					if len(r.Issues) == 0 {
						rows = append(rows, []string{r.File, r.Spec, "ERROR", "", r.Error})
						continue
					}
					for _, is := range r.Issues {
						rows = append(rows, []string{r.File, r.Spec, is.Code, is.Field, is.Message})
					}
				}
				if err := f.table([]string{"FILE", "SPEC", "RESULT", "FIELD", "MESSAGE"}, rows); err != nil {
					return err
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d spec files invalid", invalid, len(args))
			}
			return nil
		},
	}
}
