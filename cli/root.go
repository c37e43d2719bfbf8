// ABOUTME: Root command, global flags and shared wiring for the leadgen CLI
// ABOUTME: Loads config, builds the zap logger and opens the database on demand
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harperreed/leadgen/cache"
	"github.com/harperreed/leadgen/config"
	"github.com/harperreed/leadgen/dashboard"
	"github.com/harperreed/leadgen/db"
	"github.com/harperreed/leadgen/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App carries the state shared by every subcommand of one invocation.
type App struct {
	version string

	configPath string
	dbPath     string
	project    string
	timezone   string
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	loc      *time.Location
	database *sql.DB
}

// Run executes the CLI with args and releases everything it opened.
func Run(ctx context.Context, version string, args []string, stdout, stderr io.Writer) error {
	app := &App{version: version, logger: zap.NewNop()}
	defer app.close()

	root := app.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "leadgen",
		Short: "Track sales outreach across calls, email and LinkedIn",
		Long: `leadgen indexes outreach activities per project and answers
"who needs a follow-up", "who counts toward this KPI" and similar questions.

Use --project (or default_project in the config) to pick the project.`,
		Version:           a.version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: "+config.Path()+")")
	flags.StringVar(&a.dbPath, "db", "", "Database path (default: "+config.DefaultDBPath()+")")
	flags.StringVarP(&a.project, "project", "p", "", "Project id or name")
	flags.StringVar(&a.timezone, "timezone", "", "Time zone for day boundaries (default: system)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.projectCommand(),
		a.contactCommand(),
		a.activityCommand(),
		a.kpiCommand(),
		a.overviewCommand(),
		a.configCommand(),
		a.tuiCommand(),
		a.mcpCommand(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.project != "" {
		cfg.DefaultProject = a.project
	}
	if a.timezone != "" {
		cfg.Timezone = a.timezone
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg, a.loc, a.logger = cfg, loc, logger
	return nil
}

// newLogger builds a console logger at level writing to w.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoder), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// db opens the database on first use.
func (a *App) db() (*sql.DB, error) {
	if a.database != nil {
		return a.database, nil
	}
	database, err := db.OpenDatabase(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("database opened", zap.String("path", a.cfg.DBPath))
	a.database = database
	return database, nil
}

// currentProject resolves --project or the configured default.
func (a *App) currentProject() (*models.Project, error) {
	ref := a.cfg.DefaultProject
	if ref == "" {
		return nil, fmt.Errorf("no project selected: pass --project or set default_project")
	}
	database, err := a.db()
	if err != nil {
		return nil, err
	}
	p, err := db.GetProject(database, ref)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("project %q not found", ref)
	}
	return p, nil
}

// newDashboard builds a dashboard over the local database. With snapshots
// set, re-entering a project is served from an in-memory cache first. The
// returned function releases everything.
func (a *App) newDashboard(snapshots bool) (*dashboard.Dashboard, func(), error) {
	database, err := a.db()
	if err != nil {
		return nil, nil, err
	}

	opts := dashboard.Options{
		Location:         a.loc,
		PageSize:         a.cfg.PageSize,
		ClientFetchLimit: a.cfg.ClientFetchLimit,
		BulkConcurrency:  a.cfg.BulkConcurrency,
		Logger:           a.logger,
	}
	var snapCache *cache.SnapshotCache
	if snapshots {
		snapCache, err = cache.NewSnapshotCache(a.cfg.SnapshotTTL)
		if err != nil {
			return nil, nil, err
		}
		opts.Snapshots = snapCache
	}

	d := dashboard.New(db.NewBackend(database), opts)
	release := func() {
		_ = d.Close()
		if snapCache != nil {
			_ = snapCache.Close()
		}
	}
	return d, release, nil
}

// loadDashboard builds a dashboard and loads the current project into it.
func (a *App) loadDashboard(ctx context.Context) (*dashboard.Dashboard, func(), error) {
	p, err := a.currentProject()
	if err != nil {
		return nil, nil, err
	}
	d, release, err := a.newDashboard(false)
	if err != nil {
		return nil, nil, err
	}
	if _, err := d.Refresh(ctx, p.ID); err != nil {
		release()
		return nil, nil, err
	}
	return d, release, nil
}

func (a *App) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.database != nil {
		_ = a.database.Close()
	}
}
