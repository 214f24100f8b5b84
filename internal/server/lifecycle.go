// Package server runs the duel server's long-lived services: ordered start,
// signal-driven shutdown, and the gRPC health endpoint.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a blocking component managed by a Lifecycle.
type Service interface {
	// Start blocks until the service stops or fails.
	Start() error
	// Stop asks a running Start to return.
	Stop()
}

// FuncService adapts a pair of functions to Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls StopFn.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle starts services in registration order and stops them in reverse.
// Background workers added with Go share a context cancelled at shutdown.
type Lifecycle struct {
	logger   *zap.Logger
	mu       sync.Mutex
	services []namedService
	workers  []namedWorker
}

type namedService struct {
	name    string
	service Service
}

type namedWorker struct {
	name string
	fn   func(ctx context.Context)
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers svc under name.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Go registers a background worker that runs until its context is cancelled.
func (l *Lifecycle) Go(name string, fn func(ctx context.Context)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.workers = append(l.workers, namedWorker{name: name, fn: fn})
}

// Run starts everything and blocks until SIGINT, SIGTERM, ctx cancellation,
// or the first service failure.
//
// Postcondition: Every service is stopped and every worker has returned.
// The returned error is the failing service's error, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	workers := append([]namedWorker(nil), l.workers...)
	l.mu.Unlock()

	errCh := make(chan error, len(services))
	for _, ns := range services {
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			began := time.Now()
			if err := ns.service.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Duration("uptime", time.Since(began)),
					zap.Error(err),
				)
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
			}
		}()
	}

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.fn(ctx)
			l.logger.Debug("worker returned", zap.String("worker", w.name))
		}()
	}
	l.logger.Info("services started",
		zap.Int("services", len(services)),
		zap.Int("workers", len(workers)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		l.logger.Error("service error, shutting down", zap.Error(runErr))
	case <-ctx.Done():
		l.logger.Info("context cancelled, shutting down")
	}

	cancel()
	wg.Wait()
	l.stopAll(services)
	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return runErr
}

func (l *Lifecycle) stopAll(services []namedService) {
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		began := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(began)),
		)
	}
}
