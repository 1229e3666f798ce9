package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/horario/internal/db"
	"github.com/javiermolinar/horario/internal/seed"
)

func (a *App) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import sections from a seed file or another database",
		Long: `Import sections, their configuration, course assignments and placements.

FILE is either a TOML seed file or another horario database (.db). Sections
are matched by name and assignments by course and teacher, so importing the
same file twice only adds what is missing.

Example seed:
  [[sections]]
  name = "3rd A"

  [sections.schedule]
  working_days = "mon-fri"
  start = "08:00"
  end = "13:00"
  class_duration = 45

  [[sections.schedule.breaks]]
  days = "mon-fri"
  start = "09:30"
  end = "09:45"
  label = "RECREO"

  [[sections.assignments]]
  course = "Math"
  teacher = "Ana Ruiz"
  weekly_minutes = 180

  [[sections.placements]]
  course = "Math"
  day = "monday"
  start = "08:00"

Examples:
  horario import school.toml
  horario import /path/to/other.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := cmd.Context()

			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("import source does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking import source: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("import source is a directory: %s", sourcePath)
			}

			var f *seed.File
			if isDatabase(sourcePath) {
				destPath, err := resolvePath(a.config.Storage.DBPath)
				if err != nil {
					return err
				}
				if sourcePath == destPath {
					return fmt.Errorf("source database matches current database")
				}
				f, err = exportDatabase(ctx, sourcePath)
				if err != nil {
					return err
				}
			} else {
				f, err = seed.Load(sourcePath)
				if err != nil {
					return err
				}
			}

			rep, err := seed.Apply(ctx, a.repo, f, seed.Options{
				Defaults: a.sectionDefaults,
				Logger:   a.log,
			})
			printReport(cmd.OutOrStdout(), rep)
			if err != nil {
				return fmt.Errorf("importing %s: %w", filepath.Base(sourcePath), err)
			}
			return nil
		},
	}
}

func (a *App) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write every section as a seed file",
		Long: `Write all sections, their stored configuration, course assignments and
placements as a TOML seed that "horario import" reads back. Without FILE the
seed is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			f, err := seed.Export(cmd.Context(), a.repo)
			if err != nil {
				return err
			}
			data, err := seed.Marshal(f)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d section(s) to %s\n", len(f.Sections), path)
			return nil
		},
	}
}

func isDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}

// exportDatabase reads another database into a seed document.
func exportDatabase(ctx context.Context, path string) (*seed.File, error) {
	src, err := db.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = src.Close() }()

	f, err := seed.Export(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("reading source database: %w", err)
	}
	if len(f.Sections) == 0 {
		return nil, fmt.Errorf("source database has no sections")
	}
	return f, nil
}

func printReport(w io.Writer, rep seed.Report) {
	fmt.Fprintf(w, "Sections: %d created, %d already present\n", rep.SectionsCreated, rep.SectionsReused)
	fmt.Fprintf(w, "Assignments: %d  Configurations: %d  Placements: %d\n", rep.Assignments, rep.Configs, rep.Placements)
}
