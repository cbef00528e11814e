// Hospitalchat CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/hospitalchat/internal/dagger"
)

// Hospitalchat is the main module for the hospitalchat CI/CD pipeline
type Hospitalchat struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Hospitalchat CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", "build", "tmp", ".hospitalchat"]
	source *dagger.Directory,
) *Hospitalchat {
	return &Hospitalchat{
		Source: source,
	}
}

// goContainer returns an Alpine Go container with the module cache and the
// project source mounted. hospitalchat is pure Go, so CGO stays off.
func (h *Hospitalchat) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", h.Source)
}

// Test runs the unit tests through the ginkgo CLI
//
// +check
func (h *Hospitalchat) Test(ctx context.Context) (string, error) {
	return h.goContainer().
		WithExec([]string{"go", "run", "github.com/onsi/ginkgo/v2/ginkgo", "-r", "--randomize-all", "--race=false"}).
		Stdout(ctx)
}

// Vet runs "go vet" over every package
//
// +check
func (h *Hospitalchat) Vet(ctx context.Context) (string, error) {
	return h.goContainer().
		WithExec([]string{"go", "vet", "./..."}).
		Stdout(ctx)
}
