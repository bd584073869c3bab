package watcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// RunInfo describes a running watcher.
type RunInfo struct {
	Session string
	// MetricsAddr is the address the metrics endpoint listens on, or empty.
	MetricsAddr string
}

// RunHooks are called by Run as the watcher changes state. Nil hooks are
// skipped.
type RunHooks struct {
	Started  func(RunInfo)
	Stopping func()
}

// Run starts the watcher, serves /metrics on Options.MetricsAddr when set,
// and blocks until ctx is done. It then stops the watcher, which flushes the
// journal, and shuts the metrics endpoint down.
func (w *Watcher) Run(ctx context.Context, hooks RunHooks) error {
	var srv *http.Server
	info := RunInfo{Session: w.session}
	if w.opts.MetricsAddr != "" && w.opts.Metrics != nil {
		ln, err := net.Listen("tcp", w.opts.MetricsAddr)
		if err != nil {
			return fmt.Errorf("metrics endpoint: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", w.opts.Metrics.Handler())
		srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		info.MetricsAddr = ln.Addr().String()
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				w.logger.Error("metrics endpoint stopped", "addr", info.MetricsAddr, "err", err)
			}
		}()
		w.logger.Info("serving metrics", "addr", info.MetricsAddr)
	}

	if err := w.Start(); err != nil {
		if srv != nil {
			srv.Close()
		}
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	if hooks.Started != nil {
		hooks.Started(info)
	}

	<-ctx.Done()
	if hooks.Stopping != nil {
		hooks.Stopping()
	}

	err := w.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, srv.Shutdown(shutdownCtx))
	}
	return err
}

// RunDaemon runs the watcher as the daemon child until SIGTERM or SIGINT.
// The PID file names this process while it runs and is removed on exit.
func (w *Watcher) RunDaemon(pidPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	pf := pidFile(pidPath)
	if err := pf.write(os.Getpid()); err != nil {
		return err
	}
	defer pf.remove()

	return w.Run(ctx, RunHooks{
		Started: func(info RunInfo) {
			w.logger.Info("daemon running", "pid", os.Getpid(), "session", info.Session, "metrics", info.MetricsAddr)
		},
		Stopping: func() {
			w.logger.Info("daemon shutting down", "session", w.session)
		},
	})
}

// StartDaemon re-executes the current binary as "watch --daemon-child"
// followed by args, detached in its own session with output going to
// logFile, and records the child's PID in pidPath.
func StartDaemon(pidPath, logFile string, args ...string) error {
	pf := pidFile(pidPath)
	if pid, ok := pf.alive(); ok {
		return fmt.Errorf("daemon already running (PID %d, PID file: %s)", pid, pidPath)
	}

	logF, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, append([]string{"watch", "--daemon-child"}, args...)...)
	cmd.Stdout = logF
	cmd.Stderr = logF
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	// The child rewrites the same PID once it is up; writing it here makes
	// 'watch --stop' work even if the child is slow to start.
	if err := pf.write(cmd.Process.Pid); err != nil {
		cmd.Process.Kill()
		return err
	}
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("failed to release process: %w", err)
	}
	return nil
}

// StopDaemon sends SIGTERM to the daemon named by pidPath and waits up to
// timeout for it to exit, so that its final journal flush has happened when
// StopDaemon returns.
func StopDaemon(pidPath string, timeout time.Duration) error {
	pf := pidFile(pidPath)
	pid, err := pf.read()
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("daemon not running (PID file not found)")
	}
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			pf.remove()
			return nil
		}
		return fmt.Errorf("failed to send SIGTERM to process %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for processAlive(pid) {
		if time.Now().After(deadline) {
			return fmt.Errorf("daemon (PID %d) did not exit within %s", pid, timeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
	pf.remove()
	return nil
}

// IsDaemonRunning reports whether the PID file names a live process. A stale
// or unreadable PID file counts as not running and stale ones are removed.
func IsDaemonRunning(pidPath string) (bool, error) {
	pf := pidFile(pidPath)
	if _, err := pf.read(); err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, errBadPID) {
		return false, err
	}
	_, ok := pf.alive()
	return ok, nil
}

var errBadPID = errors.New("invalid PID in file")

// pidFile is the path of a daemon PID file.
type pidFile string

func (p pidFile) read() (int, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w %s", errBadPID, p)
	}
	return pid, nil
}

// write replaces the PID file atomically.
func (p pidFile) write(pid int) error {
	tmp, err := os.CreateTemp(filepath.Dir(string(p)), filepath.Base(string(p))+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	_, werr := fmt.Fprintf(tmp, "%d\n", pid)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	if err := os.Rename(tmp.Name(), string(p)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

func (p pidFile) remove() {
	os.Remove(string(p))
}

// alive returns the recorded PID when that process exists. A PID file that
// names no live process is removed.
func (p pidFile) alive() (int, bool) {
	pid, err := p.read()
	if err != nil {
		return 0, false
	}
	if !processAlive(pid) {
		p.remove()
		return 0, false
	}
	return pid, true
}

// processAlive sends signal 0 to pid.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
