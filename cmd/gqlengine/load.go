package main

import (
	"errors"
	"fmt"
	"os"

	config "github.com/hanpama/gqlengine/internal/config"
	engine "github.com/hanpama/gqlengine/internal/engine"
	executor "github.com/hanpama/gqlengine/internal/executor"
	fixture "github.com/hanpama/gqlengine/internal/fixture"
	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	log "github.com/sirupsen/logrus"
)

func loadSchema(files []string) (*schema.Schema, error) {
	if len(files) == 0 {
		return nil, errors.New("no schema files; set schema.files or --schema")
	}
	sources := make([]*language.Source, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		sources = append(sources, &language.Source{Name: f, Input: string(b)})
	}
	return schema.BuildFromSDL(schema.Bindings{}, sources...)
}

func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	sch, err := loadSchema(cfg.Schema.Files)
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithIntrospection(cfg.Executor.Introspection),
		engine.WithExecutorOptions(
			executor.WithMaxConcurrency(cfg.Executor.MaxConcurrency),
			executor.WithLogger(log.StandardLogger()),
		),
	}
	if cfg.Schema.Data != "" {
		root, err := fixture.Load(cfg.Schema.Data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithRootValue(root))
	}
	return engine.New(sch, opts...)
}
