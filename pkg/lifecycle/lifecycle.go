// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/pkg/errors"
)

var (
	mu            sync.Mutex
	shutdownHooks []func()
	reloadHooks   []func()
	cancel        context.CancelFunc
	exit          = os.Exit
)

func RegisterShutdownHook(hook func()) {
	mu.Lock()
	defer mu.Unlock()
	shutdownHooks = append(shutdownHooks, hook)
}

// RegisterReloadHook runs hook on SIGHUP.
func RegisterReloadHook(hook func()) {
	mu.Lock()
	defer mu.Unlock()
	reloadHooks = append(reloadHooks, hook)
}

func RegisterContextCanceller(c context.CancelFunc) {
	mu.Lock()
	defer mu.Unlock()
	cancel = c
}

// HandleSignals blocks until SIGTERM/SIGINT or ctx is done. SIGHUP runs the
// reload hooks and keeps waiting.
func HandleSignals(ctx context.Context, l logger.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(stop)

	for {
		select {
		case sig := <-stop:
			switch sig {
			case syscall.SIGTERM, syscall.SIGINT:
				l.Info("Received signal, shutting down", "signal", sig.String())
				Shutdown()
				exit(0)
				return
			case syscall.SIGHUP:
				l.Info("Received SIGHUP, reloading")
				Reload()
			}
		case <-ctx.Done():
			return
		}
	}
}

// Shutdown cancels the registered context and runs the shutdown hooks,
// most recently registered first.
func Shutdown() {
	mu.Lock()
	c := cancel
	hooks := append([]func(){}, shutdownHooks...)
	mu.Unlock()

	if c != nil {
		c()
	}
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

func Reload() {
	mu.Lock()
	hooks := append([]func(){}, reloadHooks...)
	mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// EnsureSingleInstance claims pidPath for this process. A stale or empty
// PID file is replaced.
func EnsureSingleInstance(pidPath string) error {
	if pidPath == "" {
		return errors.New(errors.LifecyclePID, "invalid PID file path")
	}

	if pidBytes, err := os.ReadFile(pidPath); err == nil {
		content := strings.TrimSpace(string(pidBytes))
		if content != "" {
			pid, err := strconv.Atoi(content)
			if err != nil {
				return errors.Wrap(err, errors.LifecyclePID).
					WithMetadata("pid_file", pidPath)
			}
			if pid != os.Getpid() && processAlive(pid) {
				return errors.New(errors.LifecycleLock,
					fmt.Sprintf("another instance is already running (PID: %d)", pid)).
					WithMetadata("pid_file", pidPath)
			}
		}
		_ = os.Remove(pidPath)
	}

	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return errors.Wrap(err, errors.LifecyclePID).WithMetadata("pid_file", pidPath)
	}

	RegisterShutdownHook(func() {
		_ = os.Remove(pidPath)
	})
	return nil
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	shutdownHooks = nil
	reloadHooks = nil
	cancel = nil
}
