// Package cli implements the shadowsync command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shadowsync/internal/mirror"
	"github.com/mesh-intelligence/shadowsync/internal/paths"
	"github.com/mesh-intelligence/shadowsync/internal/xlsx"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// envDebug switches logging to debug level when set to a true value.
const envDebug = "SHADOWSYNC_DEBUG"

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// app carries state shared by the commands of one root command.
type app struct {
	flags     rootFlags
	configDir string
	cfg       settings
}

// NewRootCmd creates the top-level "shadowsync" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "shadowsync",
		Short: "Keep per-category copies of the Shadower Admins sheet in sync",
		Long: "shadowsync ingests form responses into the Shadower Admins sheet, mirrors\n" +
			"each row into the sheet named after its category, logs every edit to the\n" +
			"Event Log and copies category sheet edits back to the master.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.shadowsync)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.shadowsync-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level (overrides log_level in config.yaml)")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newSubmitCmd(a),
		newEditCmd(a),
		newBackfillCmd(a),
		newSheetsCmd(a),
		newRowsCmd(a),
		newServeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// load resolves the config directory, reads config.yaml and sets up
// logging.
func (a *app) load(cmd *cobra.Command) error {
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolving config dir: %w", err))
	}
	a.configDir = dir

	v, err := loadConfig(dir)
	if err != nil {
		return userErr(err)
	}
	a.cfg = settingsFrom(v)

	return configureLogging(cmd.ErrOrStderr(), a.logLevel())
}

func (a *app) logLevel() string {
	if a.flags.logLevel != "" {
		return a.flags.logLevel
	}
	if dbg, err := strconv.ParseBool(os.Getenv(envDebug)); err == nil && dbg {
		return log.DebugLevel.String()
	}
	return a.cfg.LogLevel
}

func configureLogging(w io.Writer, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return userErr(fmt.Errorf("log level: %w", err))
	}
	log.SetOutput(w)
	log.SetLevel(lvl)
	return nil
}

// exitError pairs an error with the process exit code it maps to.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userErr(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitUserError, err: err}
}

func sysErr(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitSysError, err: err}
}

// userErrors are caused by the invocation rather than the system.
var userErrors = []error{
	types.ErrSheetNotFound,
	types.ErrInvalidSheetName,
	types.ErrInvalidRow,
	types.ErrInvalidColumn,
	types.ErrReservedName,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrSyncStrategyUnknown,
	types.ErrSpreadsheetIDEmpty,
	mirror.ErrNotTarget,
	xlsx.ErrSheetMissing,
	xlsx.ErrEmptyWorkbook,
}

// classify wraps err with the exit code its cause maps to.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userErr(err)
		}
	}
	return sysErr(err)
}

// exitCode maps an error returned by the root command to an exit code.
// Errors cobra raises itself, such as bad flags, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
