// Package logging configures logrus and turns engine events into log
// entries.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	reqid "github.com/hanpama/gqlengine/internal/reqid"
	log "github.com/sirupsen/logrus"
)

// Configure applies level and format ("text" or "json") to l.
func Configure(l *log.Logger, level, format string, out io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)
	switch strings.ToLower(format) {
	case "", "text":
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	if out != nil {
		l.SetOutput(out)
	}
	return nil
}

// Setup configures the standard logger and subscribes it to the global
// event bus.
func Setup(level, format string) error {
	if err := Configure(log.StandardLogger(), level, format, nil); err != nil {
		return err
	}
	Register(log.StandardLogger())
	return nil
}

// Register logs HTTP requests and operations at info level and custom
// resolver calls at debug level.
func Register(l log.FieldLogger) {
	entry := func(ctx context.Context) log.FieldLogger {
		if rid, ok := reqid.FromContext(ctx); ok {
			return l.WithField("request_id", rid)
		}
		return l
	}

	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		entry(ctx).WithFields(log.Fields{
			"method":     e.Request.Method,
			"path":       e.Request.URL.Path,
			"status":     e.Status,
			"operations": e.Operations,
			"stream":     e.Stream,
			"duration":   e.Duration,
		}).Info("http request")
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		fields := log.Fields{
			"operation_name": e.OperationName,
			"operation_type": e.OperationType,
			"stage":          e.Stage,
			"errors":         len(e.Errors),
			"duration":       e.Duration,
		}
		if len(e.Errors) > 0 {
			entry(ctx).WithFields(fields).WithError(e.Errors[0]).Warn("graphql operation")
			return
		}
		entry(ctx).WithFields(fields).Info("graphql operation")
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ResolverFinish) {
		le := entry(ctx).WithFields(log.Fields{
			"path":     e.Path,
			"duration": e.Duration,
		})
		if e.Err != nil {
			le = le.WithError(e.Err)
		}
		le.Debug("resolver")
	})
}
