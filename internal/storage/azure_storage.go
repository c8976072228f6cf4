package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureStore serves images from one blob container.
type AzureStore struct {
	client    *azblob.Client
	container string
}

func NewAzureStore(accountName, accountKey, container string) (*AzureStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &AzureStore{client: client, container: container}, nil
}

func (s *AzureStore) blobURL(name string) string {
	return strings.TrimSuffix(s.client.URL(), "/") + "/" + s.container + "/" + name
}

// List pages through every blob in the container.
func (s *AzureStore) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	pager := s.client.NewListBlobsFlatPager(s.container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			// blobs in virtual folders cannot be opened by name
			if item == nil || item.Name == nil || !flatName(*item.Name) {
				continue
			}
			info := ObjectInfo{Name: *item.Name, Path: s.blobURL(*item.Name)}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					info.Size = *item.Properties.ContentLength
				}
				if item.Properties.ContentType != nil {
					info.ContentType = *item.Properties.ContentType
				}
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

func (s *AzureStore) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if !flatName(name) {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("download failed: %w", err)
	}

	info := ObjectInfo{Name: name, Path: s.blobURL(name)}
	if resp.ContentLength != nil {
		info.Size = *resp.ContentLength
	}
	if resp.ContentType != nil {
		info.ContentType = *resp.ContentType
	}
	return resp.Body, info, nil
}
