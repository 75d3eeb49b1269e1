package ollama

import (
	"context"
	"log/slog"
	"strings"
)

// Capability is the process-wide embedding capability. The model server
// is probed exactly once, at construction; if the probe fails the
// capability is permanently degraded for the process lifetime and Embed
// always returns (nil, false). There is no per-call retry of the probe
// and no hot-reload.
type Capability struct {
	client *client
	dim    int
}

// NewCapability probes the configured model and returns either a healthy
// or a degraded capability. It never returns an error: an unreachable or
// missing embedding model is a mode, not a failure.
func NewCapability(ctx context.Context, cfg Config) *Capability {
	dim := cfg.Dimension
	if dim <= 0 {
		dim = 384
	}

	c := newClient(cfg)
	probe, err := c.embed(ctx, "healthcheck")
	if err != nil {
		slog.Warn("embedding model unavailable, running degraded; retrieval falls back to keyword matching",
			"model", cfg.Model,
			"error", err,
		)
		return &Capability{dim: dim}
	}

	if len(probe) != dim {
		slog.Warn("embedding model dimension differs from configured dimension",
			"model", cfg.Model,
			"configured", dim,
			"actual", len(probe),
		)
		dim = len(probe)
	}

	return &Capability{client: c, dim: dim}
}

// Degraded returns a capability with no embedding backend. Used when
// embeddings are disabled outright and by callers simulating the
// degraded mode.
func Degraded(dim int) *Capability {
	if dim <= 0 {
		dim = 384
	}
	return &Capability{dim: dim}
}

func (c *Capability) Available() bool {
	return c != nil && c.client != nil
}

func (c *Capability) Dimension() int {
	if c == nil {
		return 0
	}
	return c.dim
}

// Embed returns the vector for text, or (nil, false) when no embedding
// could be produced. Per-call failures in healthy mode are logged and
// absorbed; callers must treat absence as a normal state.
func (c *Capability) Embed(ctx context.Context, text string) ([]float32, bool) {
	if !c.Available() {
		return nil, false
	}
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	vec, err := c.client.embed(ctx, text)
	if err != nil {
		slog.Warn("embed request failed", "error", err)
		return nil, false
	}
	if len(vec) == 0 {
		return nil, false
	}
	return vec, true
}
