package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"watch-configurator/utils"
)

// DriveService stores asset blobs in Google Drive following the layout
// <root>/<product_key>/<category_key>/<timestamp>-<sequence>-<filename>.
// Implements BlobStoreInterface.
type DriveService struct {
	client       *drive.Service
	rootFolderID string

	// Folder lookups are cached: product and category folders are created
	// once and reused for every subsequent upload
	folderIDs   map[string]string
	folderMutex sync.Mutex

	uploadSeq int64
	seqMutex  sync.Mutex
}

// Ensure DriveService implements BlobStoreInterface
var _ BlobStoreInterface = (*DriveService)(nil)

// NewDriveService creates a new DriveService instance.
// credentialsPath should be the path to the Service Account JSON file.
func NewDriveService(credentialsPath, rootFolderID string) (*DriveService, error) {
	ctx := context.Background()

	driveService, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client:       driveService,
		rootFolderID: rootFolderID,
		folderIDs:    make(map[string]string),
	}, nil
}

// Process-wide blob store singleton. The client is created at most once per
// process lifetime; callers that arrive while creation is in progress wait
// for the same in-flight attempt instead of starting a second one. A failed
// attempt resets the state so a later call can try again.
var (
	driveInstance  *DriveService
	driveInitState int // 0 = uninitialized, 1 = initializing, 2 = ready
	driveInitDone  chan struct{}
	driveInitErr   error
	driveInitMutex sync.Mutex
)

// GetDriveService returns the shared DriveService, initializing it on first use
func GetDriveService() (*DriveService, error) {
	driveInitMutex.Lock()

	switch driveInitState {
	case 2:
		driveInitMutex.Unlock()
		return driveInstance, nil
	case 1:
		done := driveInitDone
		driveInitMutex.Unlock()
		<-done
		driveInitMutex.Lock()
		defer driveInitMutex.Unlock()
		return driveInstance, driveInitErr
	}

	// This caller performs the initialization
	driveInitState = 1
	driveInitDone = make(chan struct{})
	driveInitMutex.Unlock()

	credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	rootFolderID := os.Getenv("DRIVE_ROOT_FOLDER_ID")
	var instance *DriveService
	var err error
	if credentialsPath == "" {
		err = fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set")
	} else {
		instance, err = NewDriveService(credentialsPath, rootFolderID)
	}

	driveInitMutex.Lock()
	defer driveInitMutex.Unlock()
	driveInstance = instance
	driveInitErr = err
	if err != nil {
		log.Printf("❌ Drive service initialization failed: %v", err)
		driveInitState = 0
	} else {
		log.Printf("✓ Drive service initialized")
		driveInitState = 2
	}
	close(driveInitDone)
	return driveInstance, driveInitErr
}

// ensureFolder finds or creates a folder with the given name under parentID
func (ds *DriveService) ensureFolder(parentID, name string) (string, error) {
	cacheKey := parentID + "/" + name

	ds.folderMutex.Lock()
	defer ds.folderMutex.Unlock()

	if id, ok := ds.folderIDs[cacheKey]; ok {
		return id, nil
	}

	query := fmt.Sprintf("'%s' in parents and name = '%s' and mimeType = 'application/vnd.google-apps.folder' and trashed=false", parentID, name)
	list, err := ds.client.Files.List().Q(query).Fields("files(id)").Do()
	if err != nil {
		return "", fmt.Errorf("failed to look up folder %s: %w", name, err)
	}

	if len(list.Files) > 0 {
		ds.folderIDs[cacheKey] = list.Files[0].Id
		return list.Files[0].Id, nil
	}

	folder := &drive.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
		Parents:  []string{parentID},
	}
	created, err := ds.client.Files.Create(folder).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", name, err)
	}

	log.Printf("📁 Created Drive folder: %s", name)
	ds.folderIDs[cacheKey] = created.Id
	return created.Id, nil
}

// nextSequence returns a monotonically increasing per-process upload sequence
func (ds *DriveService) nextSequence() int {
	ds.seqMutex.Lock()
	defer ds.seqMutex.Unlock()
	ds.uploadSeq++
	return int(ds.uploadSeq)
}

// Upload stores a blob under <product>/<category>/<ts>-<seq>-<name> and
// returns the Drive file ID and a publicly resolvable URL
func (ds *DriveService) Upload(productKey, categoryKey, filename string, data []byte, mimeType string) (string, string, error) {
	productFolderID, err := ds.ensureFolder(ds.rootFolderID, productKey)
	if err != nil {
		return "", "", err
	}
	categoryFolderID, err := ds.ensureFolder(productFolderID, categoryKey)
	if err != nil {
		return "", "", err
	}

	blobName := fmt.Sprintf("%d-%d-%s", time.Now().Unix(), ds.nextSequence(), utils.SanitizeFilename(filename))

	file := &drive.File{
		Name:    blobName,
		Parents: []string{categoryFolderID},
	}

	created, err := ds.client.Files.Create(file).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id").
		Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to upload blob %s: %w", blobName, err)
	}

	// Make the file readable by anyone with the link
	permission := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := ds.client.Permissions.Create(created.Id, permission).Do(); err != nil {
		log.Printf("⚠️  Warning: Could not set public permission for %s: %v", created.Id, err)
	}

	publicURL := fmt.Sprintf("https://drive.google.com/uc?id=%s", created.Id)
	log.Printf("✅ Uploaded blob %s/%s/%s (file id: %s)", productKey, categoryKey, blobName, created.Id)
	return created.Id, publicURL, nil
}

// Delete removes a stored blob by its Drive file ID
func (ds *DriveService) Delete(fileID string) error {
	if err := ds.client.Files.Delete(fileID).Do(); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", fileID, err)
	}
	log.Printf("🗑️  Deleted blob: %s", fileID)
	return nil
}

// DownloadImage downloads a blob's raw bytes by its Drive file ID
func (ds *DriveService) DownloadImage(fileID string) ([]byte, error) {
	resp, err := ds.client.Files.Get(fileID).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", fileID, err)
	}
	return data, nil
}
