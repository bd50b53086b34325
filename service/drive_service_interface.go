package service

// BlobStoreInterface defines the contract for asset blob storage operations
type BlobStoreInterface interface {
	// Upload stores a blob under the <product>/<category>/<ts>-<seq>-<name>
	// convention and returns the storage file ID and a public URL
	Upload(productKey, categoryKey, filename string, data []byte, mimeType string) (fileID string, publicURL string, err error)
	Delete(fileID string) error
	DownloadImage(fileID string) ([]byte, error)
}
