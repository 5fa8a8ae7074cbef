package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/shadowsync/internal/memory"
	"github.com/mesh-intelligence/shadowsync/internal/mirror"
	"github.com/mesh-intelligence/shadowsync/internal/paths"
	"github.com/mesh-intelligence/shadowsync/pkg/sqlite"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	infoColor = color.New(color.FgCyan)
)

// workspace is an attached workbook and the handler over it. The caller
// must defer close.
type workspace struct {
	wb types.Workbook
	h  *mirror.Handler
}

// newWorkbook returns an unattached workbook for backend.
func newWorkbook(backend string) types.Workbook {
	if backend == types.BackendMemory {
		return memory.NewWorkbook()
	}
	return sqlite.NewBackend()
}

// open resolves the data directory and attaches the configured backend.
func (a *app) open() (*workspace, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.DataDir)
	if err != nil {
		return nil, sysErr(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := types.Config{
		Backend:       a.cfg.Backend,
		DataDir:       dataDir,
		SpreadsheetID: a.cfg.SpreadsheetID,
		SyncStrategy:  a.cfg.SyncStrategy,
	}

	wb := newWorkbook(cfg.Backend)
	if err := wb.Attach(cfg); err != nil {
		return nil, classify(fmt.Errorf("attach workbook: %w", err))
	}
	log.WithFields(log.Fields{"backend": cfg.Backend, "data_dir": dataDir}).Debug("Workbook attached")

	h := mirror.NewHandler(wb, mirror.Options{
		TargetID:         a.cfg.TargetID,
		SweepStaleCopies: a.cfg.Sweep,
	})
	return &workspace{wb: wb, h: h}, nil
}

func (w *workspace) close() error {
	if err := w.wb.Detach(); err != nil {
		return sysErr(fmt.Errorf("detach workbook: %w", err))
	}
	return nil
}

// run opens the workspace, calls fn and closes the workspace, keeping the
// first error.
func (a *app) run(fn func(ws *workspace) error) (err error) {
	ws, err := a.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ws.close(); err == nil {
			err = cerr
		}
	}()
	return classify(fn(ws))
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysErr(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}
