package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/siliconpkg/sup/pkg/fetch"
	"github.com/siliconpkg/sup/pkg/httpclient"
)

// HTTP is a read-only registry served over plain HTTP GET: index.json
// at the base URL, artifacts at their index-relative paths below it.
type HTTP struct {
	base   string
	client *http.Client

	// Progress, when set, receives download progress for archives.
	Progress fetch.ProgressFunc
}

// NewHTTP opens a remote registry at the given base URL.
func NewHTTP(base string) *HTTP {
	return &HTTP{
		base:   strings.TrimRight(base, "/"),
		client: httpclient.NewRegistryClient(),
	}
}

// Source implements Registry.
func (h *HTTP) Source() string { return h.base }

// LoadIndex implements Registry.
func (h *HTTP) LoadIndex(ctx context.Context) (*Index, error) {
	url := h.base + "/" + IndexFileName

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch registry index: %s", h.base)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Errorf("registry %s has no index", h.base)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry %s returned status %d for index", h.base, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read registry index")
	}
	return ParseIndex(data)
}

// FetchArchive implements Registry by downloading the artifact with
// retry and progress reporting.
func (h *HTTP) FetchArchive(ctx context.Context, relPath string, destFs afero.Fs, destPath string) error {
	url := h.base + "/" + relPath
	return fetch.DownloadWithProgress(ctx, h.client, url, destFs, destPath, h.Progress)
}
