package metadata

import (
	"context"
	"io/ioutil"
	"net/http"
	"time"

	errorWrapper "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultFetchTimeout bounds the metadata request when FetchOptions does not
// set a timeout.
const DefaultFetchTimeout = 2 * time.Second

// BackupStore persists the last good copy of a metadata document, keyed by
// its URL, so sign-on keeps working while the identity provider is
// unreachable.
type BackupStore interface {
	Get(url string) (string, error)
	Set(url, document string) error
}

// FetchOptions configures Fetch. Only URL is required.
type FetchOptions struct {
	URL     string
	Client  *http.Client  // defaults to http.DefaultClient
	Timeout time.Duration // defaults to DefaultFetchTimeout
	Backup  BackupStore   // no fallback when nil
	Config  Config        // reader configuration for the returned Reader
}

// Fetch downloads a metadata document and returns a Reader over it. A
// successful download refreshes the backup store. When the download fails,
// or the downloaded document does not parse, the stored copy is used
// instead; if that also fails the fetch error is returned.
func Fetch(ctx context.Context, opts FetchOptions) (*Reader, error) {
	if opts.URL == "" {
		return nil, errorWrapper.New("metadata URL is required")
	}

	document, err := download(ctx, opts)
	if err == nil {
		reader, readerErr := New(document, opts.Config)
		if readerErr == nil {
			if opts.Backup != nil {
				if saveErr := opts.Backup.Set(opts.URL, document); saveErr != nil {
					logrus.Warnf("failed in saving metadata backup for %s: %v", opts.URL, saveErr)
				}
			}
			return reader, nil
		}
		err = readerErr
	}

	if opts.Backup == nil {
		return nil, err
	}
	logrus.Warnf("falling back to metadata backup for %s: %v", opts.URL, err)
	stored, backupErr := opts.Backup.Get(opts.URL)
	if backupErr != nil {
		// The fetch error is the interesting one.
		return nil, err
	}
	return New(stored, opts.Config)
}

func download(ctx context.Context, opts FetchOptions) (string, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequest("GET", opts.URL, nil)
	if err != nil {
		return "", errorWrapper.Wrap(err, "failed in creating metadata request")
	}
	req = req.WithContext(ctx)

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", errorWrapper.Wrap(err, "failed in requesting metadata document")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", errorWrapper.Errorf("unexpected status %d in fetching metadata from %s", resp.StatusCode, opts.URL)
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", errorWrapper.Wrap(err, "failed in reading metadata response")
	}
	return string(body), nil
}
