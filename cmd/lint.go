package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/mindloom/insightserver/pkg/lint"
)

func NewLintCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "lint <file|dir> ...",
		Short: "Check archive files for data-quality defects",
		Long: `Check archive files for data-quality defects.

Accepts raw JSON documents and markdown files with an embedded JSON
document. Directories are walked recursively. Exits non-zero when any
document has error severity findings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectArchiveFiles(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no archive files found")
			}

			reports, errs := lint.Files(paths)
			for _, err := range multierr.Errors(errs) {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			}

			var (
				findings    = 0
				failedFiles = len(multierr.Errors(errs))
			)
			for _, report := range reports {
				if len(report.Findings) == 0 {
					continue
				}
				if quietFlag(v) && !report.HasErrors() {
					continue
				}
				findings += len(report.Findings)
				for _, finding := range report.Findings {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", report.Source, finding)
				}
				if report.HasErrors() {
					failedFiles++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d documents, %d findings, %d failed\n", len(paths), findings, failedFiles)
			if failedFiles > 0 {
				return errors.Errorf("lint failed for %d of %d documents", failedFiles, len(paths))
			}
			return nil
		},
	}

	addQuietFlag(cmd.Flags(), v)

	return cmd
}

// collectArchiveFiles expands the given files and directories into the list
// of archive files to lint.
func collectArchiveFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to stat argument")
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".json", ".md":
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to walk directory")
		}
	}
	return paths, nil
}
