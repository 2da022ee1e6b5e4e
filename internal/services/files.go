package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/shared"
)

const (
	foldersPath = "/api/files/folders"
	folderPath  = "/api/files/folder"
	filePath    = "/api/files/file"
	uploadPath  = "/api/files/upload"
)

const viewFailedMessage = "Failed to load file"

// Upload is a local file about to be sent to the backend.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length.
func (u *Upload) Size() int64 {
	if u == nil {
		return 0
	}
	return int64(len(u.Data))
}

// FileContent is the body of a viewed file.
type FileContent struct {
	ContentType string
	Data        []byte
}

// FilesService calls the folder and file endpoints. Its client must attach the bearer token.
type FilesService struct {
	api *APIService
}

// NewFilesService creates a [FilesService] over an authorized api.
func NewFilesService(api *APIService) *FilesService {
	return &FilesService{api: api}
}

// ListFolders returns every folder owned by userID.
func (s *FilesService) ListFolders(ctx context.Context, userID models.ID) ([]models.Folder, error) {
	resp, err := s.api.Get(ctx, foldersPath+"/"+url.PathEscape(userID.String()))
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	folders, err := models.NormalizeFolders(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrContract, err)
	}
	return folders, nil
}

// CreateFolder creates a folder named name for userID.
func (s *FilesService) CreateFolder(ctx context.Context, name string, userID models.ID) (models.Folder, error) {
	body := map[string]string{"name": name, "user": userID.String()}
	resp, err := s.api.PostJSON(ctx, folderPath, body)
	if err != nil {
		return models.Folder{}, err
	}
	if err := resp.Err(); err != nil {
		return models.Folder{}, err
	}

	folder, err := models.NormalizeFolder(resp.Body)
	if err != nil {
		return models.Folder{}, fmt.Errorf("%w: %v", shared.ErrContract, err)
	}
	return folder, nil
}

// DeleteFolder removes a folder by ID.
func (s *FilesService) DeleteFolder(ctx context.Context, folderID models.ID) error {
	resp, err := s.api.Delete(ctx, folderPath+"/"+url.PathEscape(folderID.String()))
	if err != nil {
		return err
	}
	return resp.Err()
}

// UploadFile sends upload as multipart {file, folderId, userId} and returns the created file.
func (s *FilesService) UploadFile(ctx context.Context, folderID, userID models.ID, upload *Upload) (models.File, error) {
	if upload.Size() == 0 {
		return models.File{}, shared.ErrEmptyFile
	}

	files := []FormFile{{Field: "file", Filename: upload.Name, ContentType: upload.ContentType, Data: upload.Data}}
	resp, err := s.api.PostMultipart(ctx, uploadPath, files,
		FormField{Name: "folderId", Value: folderID.String()},
		FormField{Name: "userId", Value: userID.String()},
	)
	if err != nil {
		return models.File{}, err
	}
	if err := resp.Err(); err != nil {
		return models.File{}, err
	}

	var body struct {
		File json.RawMessage `json:"file"`
	}
	if err := resp.Decode(&body); err != nil {
		return models.File{}, err
	}
	if isNullJSON(body.File) {
		return models.File{}, fmt.Errorf("%w: upload response has no file", shared.ErrContract)
	}

	file, err := models.NormalizeFile(body.File)
	if err != nil {
		return models.File{}, fmt.Errorf("%w: %v", shared.ErrContract, err)
	}
	if file.FolderID.IsZero() {
		file.FolderID = folderID
	}
	return file, nil
}

// DeleteFile removes a file entity by ID.
func (s *FilesService) DeleteFile(ctx context.Context, fileID models.ID) error {
	resp, err := s.api.Delete(ctx, filePath+"/"+url.PathEscape(fileID.String()))
	if err != nil {
		return err
	}
	return resp.Err()
}

// ViewFile downloads content by its content handle.
//
// A JSON-typed response is always an error, whatever its status.
func (s *FilesService) ViewFile(ctx context.Context, fileID models.ID) (*FileContent, error) {
	resp, err := s.api.Get(ctx, filePath+"/view/"+url.PathEscape(fileID.String()))
	if err != nil {
		return nil, err
	}

	if resp.DeclaresJSON() {
		msg := viewFailedMessage
		if obj, ok := resp.JSONData.(map[string]any); ok {
			if s, ok := obj["error"].(string); ok && s != "" {
				msg = s
			}
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	if !resp.OK() {
		return nil, &APIError{Status: resp.StatusCode, Message: viewFailedMessage}
	}

	return &FileContent{ContentType: resp.ContentType(), Data: resp.Body}, nil
}
