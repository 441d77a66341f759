// Package azstore stores package objects in Azure Blob Storage.
package azstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// API is the subset of *azblob.Client the store uses.
type API interface {
	UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
}

// Options configures the blob client.
type Options struct {
	AccountURL  string // https://<account>.blob.core.windows.net/ or an emulator URL
	AccountName string
	AccountKey  string // shared key; empty = DefaultAzureCredential
}

// ServiceURL returns the blob service URL of opts.
func (o Options) ServiceURL() (string, error) {
	switch {
	case o.AccountURL != "":
		return strings.TrimSuffix(o.AccountURL, "/") + "/", nil
	case o.AccountName != "":
		return fmt.Sprintf("https://%s.blob.core.windows.net/", o.AccountName), nil
	}
	return "", fmt.Errorf("storage.azure needs account_url or account_name: %w", dsdist.ErrInvalidConfig)
}

// NewClient builds a blob client with shared-key auth when a key is set and
// DefaultAzureCredential otherwise. SDK-level retries are disabled; callers
// retry through retry.Executor.
func NewClient(opts Options) (*azblob.Client, error) {
	serviceURL, err := opts.ServiceURL()
	if err != nil {
		return nil, err
	}

	clientOpts := &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{Retry: policy.RetryOptions{MaxRetries: -1}},
	}

	if opts.AccountKey != "" {
		cred, err := azblob.NewSharedKeyCredential(opts.AccountName, opts.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, clientOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Blob client: %w", err)
		}
		return client, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	client, err := azblob.NewClient(serviceURL, cred, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Blob client: %w", err)
	}
	return client, nil
}

// Store writes blobs into one container.
type Store struct {
	api        API
	serviceURL string
	container  string
}

// New returns a store for container.
func New(api API, serviceURL, container string) *Store {
	return &Store{api: api, serviceURL: strings.TrimSuffix(serviceURL, "/") + "/", container: container}
}

// Put uploads one blob.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, _ int64, contentType string) error {
	_, err := s.api.UploadStream(ctx, s.container, key, body, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("azure upload %s: %w", key, err)
	}
	return nil
}

// Location returns the blob URL of key.
func (s *Store) Location(key string) string {
	return s.serviceURL + s.container + "/" + key
}
