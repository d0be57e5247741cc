// Package azure archives exported workbooks in Azure Blob Storage.
package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	exportPrefix        = "exports"
	workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrNotFound is returned when no archived workbook has the requested name
var ErrNotFound = errors.New("archived workbook not found")

// BlobStorageClient wraps the Azure Blob Storage SDK for workbook archiving
type BlobStorageClient struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
	now           func() time.Time
}

// NewBlobStorageClient creates a new Azure Blob Storage client
func NewBlobStorageClient(accountName, accountKey, containerName string, logger *zap.Logger) (*BlobStorageClient, error) {
	if accountName == "" || accountKey == "" || containerName == "" {
		return nil, fmt.Errorf("accountName, accountKey, and containerName are required")
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobStorageClient{
		client:        client,
		containerName: containerName,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// BlobName returns the archive path of an export made at t.
// The uuid keeps repeated exports of the same window apart.
func BlobName(filename string, t time.Time) (string, error) {
	if filename == "" || path.Base(filename) != filename {
		return "", fmt.Errorf("invalid workbook filename %q", filename)
	}
	return fmt.Sprintf("%s/%s/%s_%s", exportPrefix, t.UTC().Format("2006/01/02"), uuid.NewString(), filename), nil
}

// ValidBlobName reports whether name is a clean path under the export prefix
func ValidBlobName(name string) bool {
	if !strings.HasPrefix(name, exportPrefix+"/") || path.Clean(name) != name {
		return false
	}
	return !strings.Contains(name, "..") && strings.HasSuffix(name, ".xlsx")
}

// DownloadName strips the archive prefix and uniquifier from a blob name
func DownloadName(blobName string) string {
	base := path.Base(blobName)
	if _, name, ok := strings.Cut(base, "_"); ok && name != "" {
		return name
	}
	return base
}

// UploadWorkbook uploads an exported workbook and returns its blob name
func (c *BlobStorageClient) UploadWorkbook(ctx context.Context, filename string, data []byte) (string, error) {
	c.logger.Info("uploading workbook to blob storage",
		zap.String("filename", filename),
		zap.Int("size_bytes", len(data)),
	)

	blobName, err := BlobName(filename, c.now())
	if err != nil {
		return "", err
	}

	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)

	contentType := workbookContentType
	_, err = blobClient.UploadBuffer(ctx, data, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"filename": &filename,
		},
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	})
	if err != nil {
		c.logger.Error("failed to upload workbook",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload workbook: %w", err)
	}

	c.logger.Info("workbook uploaded successfully",
		zap.String("blob_name", blobName),
	)

	return blobName, nil
}

// DownloadWorkbook downloads an archived workbook
func (c *BlobStorageClient) DownloadWorkbook(ctx context.Context, blobName string) ([]byte, error) {
	c.logger.Info("downloading workbook from blob storage",
		zap.String("blob_name", blobName),
	)

	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)

	downloadResponse, err := blobClient.DownloadStream(ctx, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, blobName)
	}
	if err != nil {
		c.logger.Error("failed to download workbook",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download workbook: %w", err)
	}
	defer downloadResponse.Body.Close()

	data, err := io.ReadAll(downloadResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook data: %w", err)
	}

	c.logger.Info("workbook downloaded successfully",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(data)),
	)

	return data, nil
}
