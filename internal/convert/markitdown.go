// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/doc2md/internal/container"
)

// DefaultImage is the markitdown container image used when no override is
// configured.
const DefaultImage = "markitdown:latest"

// MarkitdownEngine converts documents by piping them through the markitdown
// container image. It depends on a container.Runtime (docker or podman)
// injected at construction time.
type MarkitdownEngine struct {
	runtime container.Runtime
	image   string
}

// NewMarkitdownEngine creates an engine that runs image through rt; an
// empty image selects DefaultImage. It verifies that the image exists
// locally before returning.
func NewMarkitdownEngine(rt container.Runtime, image string) (*MarkitdownEngine, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownEngine{runtime: rt, image: image}, nil
}

// Name implements Engine.
func (m *MarkitdownEngine) Name() string { return "markitdown" }

// Convert pipes the document at path through the container and returns
// whatever text the image emits, empty output included; classifying an
// empty result is the orchestrator's job. The filename extension travels
// along as markitdown's -x hint so format detection works on a piped
// stream.
func (m *MarkitdownEngine) Convert(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening document %s: %w", path, err)
	}
	defer f.Close()

	var args []string
	if ext := filepath.Ext(path); ext != "" {
		args = []string{"-x", ext}
	}

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, args, f, &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", filepath.Base(path), err)
	}

	return out.String(), nil
}
