package main

import (
	"context"
	"fmt"
	"path"
	"strings"

	"dagger/hospitalchat/internal/dagger"
)

// bucket holds the S3 compatible destination for release archives.
type bucket struct {
	endpoint        *dagger.Secret
	name            *dagger.Secret
	accessKeyID     *dagger.Secret
	secretAccessKey *dagger.Secret
}

// Package turns the Build output into one hospitalchat_<version>_<os>_<arch>
// archive per target plus a SHA256SUMS file.
func (h *Hospitalchat) Package(
	ctx context.Context,

	// Version string embedded in the binaries and archive names
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	bins := h.BuildRelease(ctx, version, commit)

	archiver := dag.Container().
		From("alpine:3.22").
		WithDirectory("/bin-out", bins).
		WithWorkdir("/dist")

	var names []string
	for _, t := range targets() {
		name := fmt.Sprintf("hospitalchat_%s_%s_%s", version, t.goos, t.goarch)
		src := path.Join("/bin-out", t.goos, t.goarch)

		if t.goos == "windows" {
			name += ".zip"
			archiver = archiver.WithExec([]string{"sh", "-c",
				fmt.Sprintf("apk add --no-cache zip >/dev/null && cd %s && zip -q /dist/%s hospitalchat.exe", src, name)})
		} else {
			name += ".tar.gz"
			archiver = archiver.WithExec([]string{"tar", "-czf", name, "-C", src, "hospitalchat"})
		}
		names = append(names, name)
	}

	archiver = archiver.WithExec([]string{"sh", "-c", "sha256sum " + strings.Join(names, " ") + " > SHA256SUMS"})

	return archiver.Directory("/dist")
}

// sync copies dir to <bucket>/<prefix> with the AWS CLI.
func (b bucket) sync(ctx context.Context, dir *dagger.Directory, prefix string) error {
	name, err := b.name.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("reading bucket name: %w", err)
	}
	endpoint, err := b.endpoint.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("reading bucket endpoint: %w", err)
	}

	_, err = dag.Container().
		From("amazon/aws-cli:latest").
		WithSecretVariable("AWS_ACCESS_KEY_ID", b.accessKeyID).
		WithSecretVariable("AWS_SECRET_ACCESS_KEY", b.secretAccessKey).
		WithEnvVariable("AWS_DEFAULT_REGION", "auto").
		WithDirectory("/dist", dir).
		WithExec([]string{
			"aws", "s3", "sync", "/dist",
			"s3://" + path.Join(name, "hospitalchat", prefix),
			"--endpoint-url", endpoint,
		}).
		Sync(ctx)
	if err != nil {
		return fmt.Errorf("uploading to %s: %w", prefix, err)
	}
	return nil
}

// Release packages a tagged version and publishes it under the version and
// under "latest". Nightly builds pass "nightly" as the version and skip
// "latest".
func (h *Hospitalchat) Release(
	ctx context.Context,

	// Version string (e.g., "v1.0.0" or "nightly")
	version string,

	// Git commit SHA
	commit string,

	// Bucket endpoint URL
	endpoint *dagger.Secret,

	// Bucket name
	bucketName *dagger.Secret,

	// Bucket access key ID
	accessKeyID *dagger.Secret,

	// Bucket secret access key
	secretAccessKey *dagger.Secret,
) (*dagger.Directory, error) {
	dist := h.Package(ctx, version, commit)
	b := bucket{
		endpoint:        endpoint,
		name:            bucketName,
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
	}

	if err := b.sync(ctx, dist, version); err != nil {
		return dist, err
	}
	if version == "nightly" {
		return dist, nil
	}
	return dist, b.sync(ctx, dist, "latest")
}
