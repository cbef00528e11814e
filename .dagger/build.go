package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/hospitalchat/internal/dagger"
)

// Build and return directory of go binaries
func (h *Hospitalchat) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	outputs := dag.Directory()
	golang := h.goContainer()

	for _, t := range targets() {
		path := fmt.Sprintf("%s/%s/", t.goos, t.goarch)

		build := golang.
			WithEnvVariable("GOOS", t.goos).
			WithEnvVariable("GOARCH", t.goarch).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/hospitalchat"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

type target struct {
	goos   string
	goarch string
}

// targets is the release matrix. The binary is pure Go so every pair
// cross-compiles from one container.
func targets() []target {
	var out []target
	for _, goos := range []string{"linux", "darwin", "windows"} {
		for _, goarch := range []string{"amd64", "arm64"} {
			out = append(out, target{goos: goos, goarch: goarch})
		}
	}
	return out
}

// BuildRelease compiles versioned release binaries with embedded version info
func (h *Hospitalchat) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/hospitalchat/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/hospitalchat/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/hospitalchat/pkg/utils.Buildtime=%s'", buildtime),
	}

	return h.Build(ctx, strings.Join(ldflags, " "))
}
