package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/chazu/collide/internal/logging"
	"github.com/chazu/collide/internal/watcher"
	"github.com/chazu/collide/pkg/scene"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/spf13/cobra"
)

var (
	watchCompound string
	watchPoint    string
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-evaluate a scene whenever the file changes",
	Long: `Print the scene report after every change. With --compound and --point the
point test is repeated against the newest scene. A scene that fails to
evaluate is reported and the previous one stays current.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchCompound, "compound", "", "compound to test --point against")
	watchCmd.Flags().StringVar(&watchPoint, "point", "", "point to test after each change, as x,y")
	rootCmd.AddCommand(watchCmd)
}

// session holds the newest successfully evaluated scene. Readers always
// see a complete scene; reloads replace it whole.
type session struct {
	app     *App
	current atomic.Pointer[scene.Scene]

	// mu serializes output from overlapping reloads.
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	compound string
	point    *v2.Vec
}

// reload evaluates path and, on success, swaps it in as the current scene.
func (s *session) reload(path string) {
	sc, report, err := s.app.Load(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		writeErrors(s.errOut, report)
		logging.Warn("reload failed, keeping previous scene", "path", path, "err", err)
		return
	}
	s.current.Store(sc)
	fmt.Fprintf(s.out, "--- %s\n", path)
	writeReport(s.out, report)
	s.checkPoint()
}

// checkPoint runs the point test against the current scene.
func (s *session) checkPoint() {
	if s.point == nil || s.compound == "" {
		return
	}
	sc := s.current.Load()
	if sc == nil {
		return
	}
	hit, err := s.app.Contains(sc, s.compound, *s.point)
	if err != nil {
		fmt.Fprintf(s.errOut, "error: %v\n", err)
		return
	}
	writeHit(s.out, hit)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s := &session{
		app:      NewApp(cfg),
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
		compound: watchCompound,
	}
	if watchPoint != "" {
		p, err := parseVec(watchPoint)
		if err != nil {
			return fmt.Errorf("--point: %w", err)
		}
		s.point = &p
	}

	debounce, err := cfg.WatchDebounce()
	if err != nil {
		return err
	}
	fw, err := watcher.NewFileWatcher(debounce)
	if err != nil {
		return err
	}
	defer fw.Close()

	path := args[0]
	if err := fw.Watch([]string{path}, s.reload); err != nil {
		return err
	}
	s.reload(path)
	fw.Start()
	logging.Info("watching", "path", path, "debounce", debounce)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
