/*
 * Copyright (c) 2024, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metricsrv runs the /healthz and /metrics HTTP endpoints the
// busmap command optionally exposes alongside its one-shot CLI work,
// trimmed from the topology server's HTTP surface to just what a batch
// tool needs for liveness probes and Prometheus scraping.
package metricsrv

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

type Server struct {
	ctx context.Context
	srv *http.Server
}

// New builds a Server listening on port. Port 0 disables the endpoint
// entirely — Start then returns immediately with no error.
func New(ctx context.Context, port int) *Server {
	if port == 0 {
		return &Server{ctx: ctx}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthz)
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		ctx: ctx,
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: LoggingMiddleware(mux),
		},
	}
}

// RunGroup returns the (execute, interrupt) pair oklog/run.Group.Add expects.
func (s *Server) RunGroup() (func() error, func(error)) {
	return s.Start, s.Stop
}

func (s *Server) Start() error {
	if s.srv == nil {
		return nil
	}
	klog.Infof("Starting metrics server on %s", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Stop(err error) {
	if s.srv == nil {
		return
	}
	klog.Infof("Stopping metrics server: %v", err)
	if shutdownErr := s.srv.Shutdown(s.ctx); shutdownErr != nil {
		klog.Errorf("Error during metrics server shutdown: %v", shutdownErr)
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// LoggingMiddleware logs each request's method, path, status and duration
// at increasing severity the way the topology server's HTTP layer does.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		logf := klog.V(5).Infof
		if rec.statusCode >= 400 {
			logf = klog.Errorf
		}
		logf("%s %s status %d duration %s", r.Method, r.URL.Path, rec.statusCode, duration.String())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
