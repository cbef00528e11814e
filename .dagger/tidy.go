package main

import (
	"context"
	"errors"
	"fmt"

	"dagger/hospitalchat/internal/dagger"
)

// CheckGoModTidy fails when go.mod or go.sum differ from what "go mod tidy"
// would write. The diff is returned in the error.
//
// +check
func (h *Hospitalchat) CheckGoModTidy(ctx context.Context) (string, error) {
	_, err := h.goContainer().
		WithExec([]string{"go", "mod", "tidy", "-diff"}).
		Sync(ctx)

	var execErr *dagger.ExecError
	switch {
	case errors.As(err, &execErr):
		return "", fmt.Errorf("go.mod/go.sum need \"go mod tidy\":\n\n%s", execErr.Stdout)
	case err != nil:
		return "", err
	}

	return "go.mod and go.sum are tidy", nil
}
