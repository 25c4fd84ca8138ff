// Copyright (C) 2024 Erelia Studio
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides a context-carried, severity-filtered logger.
//
// A Handler and a minimum Severity are stored on the context; the
// package-level helpers D, I, W and E format a message and hand it to the
// handler if it passes the filter.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Handler is the interface implemented by types that consume log messages.
type Handler interface {
	Handle(severity Severity, message string)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(severity Severity, message string)

// Handle calls f.
func (f HandlerFunc) Handle(severity Severity, message string) { f(severity, message) }

type handlerKeyTy struct{}
type filterKeyTy struct{}

var (
	handlerKey handlerKeyTy
	filterKey  filterKeyTy
)

// PutHandler returns a context with the given message handler attached.
func PutHandler(ctx context.Context, h Handler) context.Context {
	return context.WithValue(ctx, handlerKey, h)
}

// PutFilter returns a context that discards all messages below min.
func PutFilter(ctx context.Context, min Severity) context.Context {
	return context.WithValue(ctx, filterKey, min)
}

// GetFilter returns the minimum severity attached to ctx.
// Contexts without a filter log Info and above.
func GetFilter(ctx context.Context) Severity {
	if s, ok := ctx.Value(filterKey).(Severity); ok {
		return s
	}
	return Info
}

// Writer returns a Handler that writes each message as one line to w.
func Writer(w io.Writer) Handler {
	mutex := &sync.Mutex{}
	return HandlerFunc(func(severity Severity, message string) {
		mutex.Lock()
		defer mutex.Unlock()
		fmt.Fprintf(w, "%s: %s\n", severity.Short(), message)
	})
}

// Background returns a root context that logs to stderr.
func Background() context.Context {
	return PutHandler(context.Background(), Writer(os.Stderr))
}

func logf(ctx context.Context, severity Severity, format string, args ...interface{}) {
	if severity < GetFilter(ctx) {
		return
	}
	h, ok := ctx.Value(handlerKey).(Handler)
	if !ok {
		return
	}
	h.Handle(severity, fmt.Sprintf(format, args...))
}

// D logs a debug message to the handler on ctx.
func D(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, Debug, format, args...)
}

// I logs an informational message to the handler on ctx.
func I(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, Info, format, args...)
}

// W logs a warning message to the handler on ctx.
func W(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, Warning, format, args...)
}

// E logs an error message to the handler on ctx.
func E(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, Error, format, args...)
}
