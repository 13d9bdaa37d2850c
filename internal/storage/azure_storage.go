package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// ErrInvalidBlobRef is returned for references that do not name a container and a blob.
var ErrInvalidBlobRef = errors.New("invalid blob reference")

// AzureImageFetcher implements ImageFetcher over Azure Blob Storage
type AzureImageFetcher struct {
	client *azblob.Client
}

// NewAzureImageFetcher creates a fetcher authenticated with a shared key.
func NewAzureImageFetcher(accountName string, accountKey string) (*AzureImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &AzureImageFetcher{client: client}, nil
}

// FetchImage downloads and decodes a blob. ref is either "container/blob"
// or a full blob URL.
func (s *AzureImageFetcher) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	containerName, blobName, err := splitBlobRef(ref)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	body := resp.Body
	defer body.Close()

	img, _, err := image.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func splitBlobRef(ref string) (container, blob string, err error) {
	path := strings.TrimSpace(ref)
	if strings.Contains(path, "://") {
		u, perr := url.Parse(path)
		if perr != nil {
			return "", "", fmt.Errorf("%w: %v", ErrInvalidBlobRef, perr)
		}
		path = u.Path
	}
	path = strings.TrimPrefix(path, "/")

	container, blob, ok := strings.Cut(path, "/")
	if !ok || container == "" || blob == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidBlobRef, ref)
	}
	return container, blob, nil
}
