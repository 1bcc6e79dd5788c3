package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/async-button/internal/config"
	"github.com/oshokin/async-button/internal/logger"
)

// maxDownloadSize bounds every file fetched from the update folder.
const maxDownloadSize = 256 << 20

var (
	errNoUpdateFolder = errors.New("update folder is not configured")
	errBadHTTPStatus  = errors.New("unexpected http status")
)

// Options are inputs accepted by the updater entry points.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Dir is the installation folder; empty means the working directory.
	Dir string
	// Output is where RunManifest writes; empty means ManifestFilename in Dir.
	Output string
}

// runner holds the collaborators of one update.
type runner struct {
	dir          string
	updateFolder *url.URL
	httpClient   *http.Client
	terminate    processTerminator
}

// Run brings the installation up to date with the published release.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "async-button-updater")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if settings.UpdateFolder == "" {
		return errNoUpdateFolder
	}

	updateFolder, err := url.Parse(settings.UpdateFolder)
	if err != nil {
		return fmt.Errorf("parse update folder: %w", err)
	}

	r := &runner{
		dir:          opts.Dir,
		updateFolder: updateFolder,
		httpClient:   &http.Client{Timeout: settings.Timeout},
		terminate:    terminateProcesses,
	}

	updated, err := r.run(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Update failed", "error", err)

		return err
	}

	logger.InfoKV(ctx, "Update finished", "updated_files", updated)

	return nil
}

// RunManifest writes the manifest of the files installed in opts.Dir.
func RunManifest(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "async-button-manifest")

	manifest, err := BuildManifest(opts.Dir, ReleaseFiles())
	if err != nil {
		return err
	}

	data, err := manifest.Marshal()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	output := opts.Output
	if output == "" {
		output = filepath.Join(opts.Dir, ManifestFilename)
	}

	if err := os.WriteFile(filepath.Clean(output), data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	logger.InfoKV(ctx, "Manifest written", "path", output, "version", manifest.Version, "files", len(manifest.Files))

	return nil
}

// run applies the outdated files and returns their names.
func (r *runner) run(ctx context.Context) ([]string, error) {
	logger.Info(ctx, "Downloading the release manifest")

	data, err := r.download(ctx, ManifestFilename)
	if err != nil {
		return nil, fmt.Errorf("download manifest: %w", err)
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	outdated, err := manifest.Outdated(r.dir, ReleaseFiles())
	if err != nil {
		return nil, err
	}

	if len(outdated) == 0 {
		logger.InfoKV(ctx, "Installation is current", "version", manifest.Version)

		return nil, nil
	}

	logger.InfoKV(ctx, "Files to update", "version", manifest.Version, "files", outdated)

	downloads := make(map[string][]byte, len(outdated))

	for _, name := range outdated {
		contents, err := r.download(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", name, err)
		}

		downloads[name] = contents
	}

	running := slices.DeleteFunc(slices.Clone(outdated), func(name string) bool {
		return !slices.Contains(Executables(), name)
	})

	if err := r.terminate(running); err != nil {
		return nil, fmt.Errorf("terminate running binaries: %w", err)
	}

	for _, name := range outdated {
		if err := r.apply(ctx, manifest, name, downloads[name]); err != nil {
			return nil, fmt.Errorf("apply %s: %w", name, err)
		}
	}

	return outdated, nil
}

// apply replaces one file after verifying its checksum.
func (r *runner) apply(ctx context.Context, manifest *Manifest, name string, contents []byte) error {
	checksum, err := manifest.ChecksumOf(name)
	if err != nil {
		return err
	}

	target := filepath.Join(r.dir, name)

	// go-update replaces an existing file, so a new file starts empty.
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(target, nil, DefaultFileMode); err != nil {
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       ChecksumFunction,
	}

	if err := goupdate.Apply(bytes.NewReader(contents), options); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Updated file", "file", name)

	return nil
}

// download fetches name from the update folder.
func (r *runner) download(ctx context.Context, name string) ([]byte, error) {
	target := *r.updateFolder
	target.Path = path.Join(target.Path, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", target.String(), response.Status, errBadHTTPStatus)
	}

	return io.ReadAll(io.LimitReader(response.Body, maxDownloadSize))
}
