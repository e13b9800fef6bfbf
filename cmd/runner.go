package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plcopy/internal/checkpoint"
	"github.com/desertthunder/plcopy/internal/repositories"
	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/desertthunder/plcopy/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Service, checkpoint store and database are built from the config on first use unless injected.
type Runner struct {
	config     *shared.Config
	configPath string
	service    services.PlaylistService
	store      checkpoint.Store
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.PlaylistService
	Store      checkpoint.Store
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		service:    opts.Service,
		store:      opts.Store,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, listCommand, checkpointCommand, historyCommand, setupCommand, authCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, e.g. to keep log lines out of the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the database connection if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// before runs ahead of every action: it reloads the config when --config points elsewhere and applies --verbose.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" || (path == r.configPath && !cmd.IsSet("config")) {
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	switch {
	case err == nil:
		r.config = config
		r.configPath = path
	case errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config"):
		r.logger.Debug("no config file found, using defaults", "path", path)
	default:
		return ctx, fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
	}
	return ctx, nil
}

// applyOverrides copies transfer flags that were set on the command line into the config.
func (r *Runner) applyOverrides(cmd *cli.Command) {
	if cmd.IsSet("source") {
		r.config.Transfer.SourcePlaylistID = cmd.String("source")
	}
	if cmd.IsSet("dest") {
		r.config.Transfer.DestinationPlaylistID = cmd.String("dest")
	}
	if cmd.IsSet("checkpoint") {
		r.config.Checkpoint.Path = cmd.String("checkpoint")
	}
	if cmd.IsSet("delay") {
		r.config.Transfer.DelayMS = int(cmd.Duration("delay").Milliseconds())
	}
}

// youtube returns the playlist service, building it from the config when none was injected.
//
// Missing write credentials are not an error here; listing only needs the API key.
func (r *Runner) youtube(ctx context.Context) services.PlaylistService {
	if r.service != nil {
		return r.service
	}

	yt := r.config.Credentials.YouTube
	tokens, err := services.NewTokenSource(ctx, yt)
	if err != nil {
		r.logger.Debug("no bearer token configured, inserts are disabled", "error", err)
	}

	r.service = services.NewYouTubeService(services.YouTubeOpts{
		BaseURL:           yt.BaseURL,
		APIKey:            yt.APIKey,
		PageSize:          r.config.Transfer.PageSize,
		RequestsPerSecond: r.config.Transfer.RequestsPerSecond,
		TokenSource:       tokens,
		HTTPClient:        r.httpClient,
		Logger:            shared.WithLogger(r.logger, "service", "youtube"),
	})
	return r.service
}

// database opens the configured SQLite database and applies migrations once per process.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// checkpointStore returns the configured checkpoint backend for the current playlist pair.
func (r *Runner) checkpointStore() (checkpoint.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	switch r.config.Checkpoint.Backend {
	case shared.CheckpointBackendDatabase:
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		r.store = repositories.NewCheckpointRepository(db, r.config.Transfer.SourcePlaylistID, r.config.Transfer.DestinationPlaylistID)
	case shared.CheckpointBackendFile, "":
		r.store = checkpoint.NewFileStore(r.config.Checkpoint.Path)
	default:
		return nil, fmt.Errorf("%w: unknown checkpoint backend %q", shared.ErrInvalidConfig, r.config.Checkpoint.Backend)
	}
	return r.store, nil
}

// recorder returns the run history repository, or nil when recording is off or the database is unavailable.
func (r *Runner) recorder() tasks.RunRecorder {
	if !r.config.Database.RecordRuns {
		return nil
	}

	db, err := r.database()
	if err != nil {
		r.logger.Warn("run history disabled", "error", err)
		return nil
	}
	return repositories.NewRunRepository(db)
}

// newEngine wires a transfer engine from the runner's dependencies.
func (r *Runner) newEngine(ctx context.Context) (*tasks.TransferEngine, error) {
	store, err := r.checkpointStore()
	if err != nil {
		return nil, err
	}

	svc := r.youtube(ctx)
	return tasks.NewTransferEngine(tasks.EngineOpts{
		Lister:                svc,
		Inserter:              svc,
		Store:                 store,
		Recorder:              r.recorder(),
		Logger:                r.logger,
		SourcePlaylistID:      r.config.Transfer.SourcePlaylistID,
		DestinationPlaylistID: r.config.Transfer.DestinationPlaylistID,
		Delay:                 r.config.Transfer.Delay(),
	}), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
