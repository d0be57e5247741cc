package azure

import "context"

// WorkbookArchive stores copies of exported report workbooks
type WorkbookArchive interface {
	UploadWorkbook(ctx context.Context, filename string, data []byte) (string, error)
	DownloadWorkbook(ctx context.Context, blobName string) ([]byte, error)
}

var (
	_ WorkbookArchive = (*BlobStorageClient)(nil)
	_ WorkbookArchive = (*MockBlobStorageClient)(nil)
)
