// package dashboard orchestrates folder and file operations over the in-memory resource tree
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/session"
	"github.com/desertthunder/lectern/internal/shared"
)

const (
	confirmDeleteFolder = "Are you sure you want to delete this folder?"
	confirmDeleteFile   = "Are you sure you want to delete this file?"
)

// SessionState is the part of the session store the dashboard reads.
type SessionState interface {
	Token() string
	User() *models.User
	Logout() error
}

// FilesAPI is the backend surface for folders and files.
type FilesAPI interface {
	ListFolders(ctx context.Context, userID models.ID) ([]models.Folder, error)
	CreateFolder(ctx context.Context, name string, userID models.ID) (models.Folder, error)
	DeleteFolder(ctx context.Context, folderID models.ID) error
	UploadFile(ctx context.Context, folderID, userID models.ID, upload *services.Upload) (models.File, error)
	DeleteFile(ctx context.Context, fileID models.ID) error
	ViewFile(ctx context.Context, fileID models.ID) (*services.FileContent, error)
}

// Confirmer asks the user a yes/no question before destructive actions.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// Viewer presents downloaded file content.
type Viewer interface {
	View(ctx context.Context, name string, content *services.FileContent) error
}

// Options configures a [Controller].
type Options struct {
	Session    SessionState
	Files      FilesAPI
	Confirmer  Confirmer
	Navigator  session.Navigator
	Viewer     Viewer
	LoginRoute string
	Logger     *log.Logger
}

// Controller holds the folder tree as last seen from the server and patches it after each mutation.
//
// Requests run outside the lock; whichever response lands last wins.
type Controller struct {
	mu      sync.Mutex
	folders []models.Folder

	session    SessionState
	files      FilesAPI
	confirmer  Confirmer
	nav        session.Navigator
	viewer     Viewer
	loginRoute string
	logger     *log.Logger
}

// New creates a [Controller].
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.LoginRoute == "" {
		opts.LoginRoute = "/login"
	}
	if opts.Navigator == nil {
		opts.Navigator = session.NavigatorFunc(func(string) {})
	}

	return &Controller{
		folders:    []models.Folder{},
		session:    opts.Session,
		files:      opts.Files,
		confirmer:  opts.Confirmer,
		nav:        opts.Navigator,
		viewer:     opts.Viewer,
		loginRoute: opts.LoginRoute,
		logger:     shared.WithLogger(opts.Logger, "component", "dashboard"),
	}
}

// requireToken redirects to login when no token is held.
func (c *Controller) requireToken() error {
	if c.session.Token() == "" {
		c.logger.Warn("no token, redirecting to login")
		c.nav.Navigate(c.loginRoute)
		return shared.ErrNotAuthenticated
	}
	return nil
}

// fail turns a 401 into a full logout before reporting it.
func (c *Controller) fail(action string, err error) error {
	if services.IsUnauthorized(err) {
		c.logger.Warn("session rejected by server", "action", action)
		if lerr := c.session.Logout(); lerr != nil {
			c.logger.Error("logout after 401 failed", "error", lerr)
		}
		c.nav.Navigate(c.loginRoute)
		return fmt.Errorf("%w: %w", shared.ErrSessionExpired, err)
	}
	c.logger.Error(action+" failed", "error", err)
	return fmt.Errorf("failed to %s: %w", action, err)
}

func (c *Controller) userID(userID models.ID) (models.ID, error) {
	if !userID.IsZero() {
		return userID, nil
	}
	if u := c.session.User(); u != nil && !u.ID.IsZero() {
		return u.ID, nil
	}
	return "", fmt.Errorf("%w: user id", shared.ErrMissingArgument)
}

// FetchFolders replaces the tree with the server's folders for userID
// (the session user when empty).
func (c *Controller) FetchFolders(ctx context.Context, userID models.ID) ([]models.Folder, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	uid, err := c.userID(userID)
	if err != nil {
		return nil, err
	}

	folders, err := c.files.ListFolders(ctx, uid)
	if err != nil {
		return nil, c.fail("fetch folders", err)
	}

	c.mu.Lock()
	c.folders = folders
	c.mu.Unlock()

	c.logger.Debug("folders fetched", "count", len(folders))
	return c.Folders(), nil
}

// CreateFolder creates a folder and appends it. A blank name never reaches the network.
func (c *Controller) CreateFolder(ctx context.Context, name string, userID models.ID) (models.Folder, error) {
	if err := c.requireToken(); err != nil {
		return models.Folder{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Folder{}, shared.ErrEmptyName
	}

	uid, err := c.userID(userID)
	if err != nil {
		return models.Folder{}, err
	}

	folder, err := c.files.CreateFolder(ctx, name, uid)
	if err != nil {
		return models.Folder{}, c.fail("create folder", err)
	}

	c.mu.Lock()
	c.folders = append(c.folders, folder)
	c.mu.Unlock()

	c.logger.Info("folder created", "id", folder.ID, "name", folder.Name)
	return folder.Clone(), nil
}

// CreateFile uploads into folderID and appends the new file to that folder only.
func (c *Controller) CreateFile(ctx context.Context, folderID, userID models.ID, upload *services.Upload) (models.File, error) {
	if err := c.requireToken(); err != nil {
		return models.File{}, err
	}
	if folderID.IsZero() {
		return models.File{}, fmt.Errorf("%w: folder id", shared.ErrMissingArgument)
	}
	if upload.Size() == 0 {
		return models.File{}, shared.ErrEmptyFile
	}

	uid, err := c.userID(userID)
	if err != nil {
		return models.File{}, err
	}

	file, err := c.files.UploadFile(ctx, folderID, uid, upload)
	if err != nil {
		return models.File{}, c.fail("upload file", err)
	}

	c.mu.Lock()
	for i := range c.folders {
		if c.folders[i].ID.String() == folderID.String() {
			c.folders[i].Files = append(c.folders[i].Files, file)
		}
	}
	c.mu.Unlock()

	c.logger.Info("file uploaded", "id", file.ID, "folder", folderID)
	return file, nil
}

// DeleteFolder asks for confirmation, deletes, then drops the folder locally.
func (c *Controller) DeleteFolder(ctx context.Context, folderID models.ID) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	if err := c.confirm(confirmDeleteFolder); err != nil {
		return err
	}

	if err := c.files.DeleteFolder(ctx, folderID); err != nil {
		return c.fail("delete folder", err)
	}

	c.mu.Lock()
	kept := c.folders[:0:0]
	for _, f := range c.folders {
		if f.ID != folderID {
			kept = append(kept, f)
		}
	}
	c.folders = kept
	c.mu.Unlock()

	c.logger.Info("folder deleted", "id", folderID)
	return nil
}

// DeleteFile asks for confirmation, deletes, then drops the file from folderID
// (any folder when empty). An unknown id leaves the tree unchanged.
func (c *Controller) DeleteFile(ctx context.Context, fileID, folderID models.ID) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	if err := c.confirm(confirmDeleteFile); err != nil {
		return err
	}

	if err := c.files.DeleteFile(ctx, fileID); err != nil {
		return c.fail("delete file", err)
	}

	c.mu.Lock()
	for i := range c.folders {
		if !folderID.IsZero() && c.folders[i].ID != folderID {
			continue
		}
		files := c.folders[i].Files[:0:0]
		for _, f := range c.folders[i].Files {
			if f.ID != fileID {
				files = append(files, f)
			}
		}
		c.folders[i].Files = files
	}
	c.mu.Unlock()

	c.logger.Info("file deleted", "id", fileID)
	return nil
}

// ViewFile downloads content by its content handle and hands it to the viewer.
func (c *Controller) ViewFile(ctx context.Context, fileID models.ID) error {
	if err := c.requireToken(); err != nil {
		return err
	}

	content, err := c.files.ViewFile(ctx, fileID)
	if err != nil {
		return c.fail("view file", err)
	}

	name := fileID.String()
	if f, ok := c.findByContentID(fileID); ok && f.Name != "" {
		name = f.Name
	}

	if c.viewer == nil {
		return fmt.Errorf("%w: no viewer configured", shared.ErrNotImplemented)
	}
	return c.viewer.View(ctx, name, content)
}

func (c *Controller) confirm(message string) error {
	if c.confirmer == nil {
		return nil
	}
	ok, err := c.confirmer.Confirm(message)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrCancelled
	}
	return nil
}

// Folders returns a deep copy of the tree.
func (c *Controller) Folders() []models.Folder {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Folder, len(c.folders))
	for i, f := range c.folders {
		out[i] = f.Clone()
	}
	return out
}

// Find returns the folder with id.
func (c *Controller) Find(folderID models.ID) (models.Folder, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.folders {
		if f.ID.String() == folderID.String() {
			return f.Clone(), true
		}
	}
	return models.Folder{}, false
}

func (c *Controller) findByContentID(fileID models.ID) (models.File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, folder := range c.folders {
		for _, f := range folder.Files {
			if f.FileID == fileID {
				return f, true
			}
		}
	}
	return models.File{}, false
}

// Reset drops the cached tree.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.folders = []models.Folder{}
	c.mu.Unlock()
}
