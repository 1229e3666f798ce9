package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/horario/internal/config"
	"github.com/javiermolinar/horario/internal/db"
	"github.com/javiermolinar/horario/internal/logging"
	"github.com/javiermolinar/horario/internal/timetable"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo     timetable.Repository
	config   *config.Config
	root     *cobra.Command
	debug    bool   // Enable debug logging
	section  string // --section, a name or an ID
	log      *zap.Logger
	closeLog func() error
}

// NewApp creates a new CLI application. A nil repo is opened lazily from
// the configured database path.
func NewApp(repo timetable.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg, log: zap.NewNop()}

	a.root = &cobra.Command{
		Use:   "horario",
		Short: "A school timetable editor",
		Long: `Horario builds weekly school timetables.

Each section (class group) gets a week of class slots generated from its
working days, daily window, class length and breaks. Course assignments are
placed into those slots, and every placement is checked against the grid
before it is saved.

Run without a subcommand to open the grid editor.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.openLog()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEditor(cmd.Context())
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to the configured log file)")
	a.root.PersistentFlags().StringVarP(&a.section, "section", "s", "", "Section name or ID")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.sectionCmd())
	a.root.AddCommand(a.assignmentCmd())
	a.root.AddCommand(a.setupCmd())
	a.root.AddCommand(a.slotsCmd())
	a.root.AddCommand(a.gridCmd())
	a.root.AddCommand(a.placeCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.removeCmd())
	a.root.AddCommand(a.summaryCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.autofillCmd())
	a.root.AddCommand(a.editCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "horario %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.ExecuteContext(context.Background())
}

// SetArgs overrides the command line, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// SetOutput redirects command output, for tests.
func (a *App) SetOutput(w io.Writer) {
	a.root.SetOut(w)
	a.root.SetErr(w)
}

// Close releases the repository and flushes the log.
func (a *App) Close() error {
	var err error
	if a.repo != nil {
		err = a.repo.Close()
		a.repo = nil
	}
	if a.closeLog != nil {
		if cerr := a.closeLog(); err == nil {
			err = cerr
		}
		a.closeLog = nil
	}
	return err
}

func (a *App) openLog() error {
	if a.closeLog != nil {
		return nil
	}
	log, closeFn, err := logging.New(logging.Options{
		Debug: a.debug,
		Level: a.config.Log.Level,
		Path:  a.config.Log.File,
	})
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	a.log, a.closeLog = log, closeFn
	return nil
}

// ensureRepo opens the configured database on first use.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	path := a.config.Storage.DBPath
	if path == "" {
		return fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := db.New(path, db.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	a.repo = repo
	return nil
}

// sectionDefaults is the configuration of sections that were never set up.
func (a *App) sectionDefaults(sectionID int64) *timetable.ScheduleConfig {
	return a.config.SectionDefaults(sectionID)
}
