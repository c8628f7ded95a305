package engine

import (
	"context"
	"time"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	executor "github.com/hanpama/gqlengine/internal/executor"
	schema "github.com/hanpama/gqlengine/internal/schema"
)

// eventRuntime publishes resolver events around custom resolvers.
type eventRuntime struct {
	base executor.Runtime
}

func (r eventRuntime) Resolve(ctx context.Context, field *schema.Field, p schema.ResolveParams) (any, error) {
	if !field.Async || !eventbus.Enabled() {
		return r.base.Resolve(ctx, field, p)
	}
	parent, path := p.Info.ParentType.Name, p.Info.Path.String()
	start := time.Now()
	eventbus.Publish(ctx, events.ResolverStart{ParentType: parent, Field: field.Name, Path: path})
	v, err := r.base.Resolve(ctx, field, p)
	eventbus.Publish(ctx, events.ResolverFinish{
		ParentType: parent,
		Field:      field.Name,
		Path:       path,
		Err:        err,
		Duration:   time.Since(start),
	})
	return v, err
}

func (r eventRuntime) ResolveType(ctx context.Context, abstractType *schema.Type, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r eventRuntime) SerializeLeafValue(ctx context.Context, leafType *schema.Type, value any) (any, error) {
	return r.base.SerializeLeafValue(ctx, leafType, value)
}
