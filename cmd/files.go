package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/lectern/internal/dashboard"
	"github.com/desertthunder/lectern/internal/formatter"
	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadDashboard restores the session and fetches the folder tree, which the
// file operations need to patch and name files.
func (r *Runner) loadDashboard(ctx context.Context, assumeYes bool) (*dashboard.Controller, error) {
	if err := r.init(); err != nil {
		return nil, err
	}

	if _, err := r.session.Restore(ctx); err != nil {
		return nil, err
	}

	ctrl := r.dashboard(assumeYes)
	if _, err := ctrl.FetchFolders(ctx, ""); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// FoldersList prints the signed-in user's folders.
func (r *Runner) FoldersList(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadDashboard(ctx, false)
	if err != nil {
		return err
	}
	folders := ctrl.Folders()

	if path := cmd.String("csv"); path != "" {
		written, err := formatter.WriteFoldersCSV(folders, path)
		if err != nil {
			return err
		}
		r.logger.Info("folders exported", "path", written)
		return r.writePlain("✓ Wrote %d folders to %s\n", len(folders), written)
	}

	if cmd.Bool("json") {
		return r.writeJSON(folders, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Folders (%d)", len(folders)))
	return r.writePlain("%s", formatter.ExportFoldersText(folders))
}

// FoldersCreate creates a folder for the signed-in user.
func (r *Runner) FoldersCreate(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadDashboard(ctx, false)
	if err != nil {
		return err
	}

	folder, err := ctrl.CreateFolder(ctx, cmd.StringArg("name"), "")
	if err != nil {
		return err
	}
	return r.writePlain("✓ Created folder %s [%s]\n", folder.Name, folder.ID)
}

// FoldersDelete deletes a folder after confirmation.
func (r *Runner) FoldersDelete(ctx context.Context, cmd *cli.Command) error {
	id := models.ID(strings.TrimSpace(cmd.StringArg("id")))
	if id.IsZero() {
		return fmt.Errorf("%w: folder id", shared.ErrMissingArgument)
	}

	ctrl, err := r.loadDashboard(ctx, cmd.Bool("yes"))
	if err != nil {
		return err
	}
	if _, ok := ctrl.Find(id); !ok {
		return fmt.Errorf("%w: %s", shared.ErrFolderNotFound, id)
	}

	if err := ctrl.DeleteFolder(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted folder %s\n", id)
}

// FilesUpload uploads a local file into a folder.
func (r *Runner) FilesUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	folderID := models.ID(cmd.String("folder"))

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctrl, err := r.loadDashboard(ctx, false)
	if err != nil {
		return err
	}
	if _, ok := ctrl.Find(folderID); !ok {
		return fmt.Errorf("%w: %s", shared.ErrFolderNotFound, folderID)
	}

	upload := &services.Upload{Name: filepath.Base(path), Data: data}
	upload.ContentType = services.DetectContentType(upload)

	r.logger.Info("uploading", "file", upload.Name, "size", formatter.FormatSize(upload.Size()), "type", upload.ContentType)
	file, err := ctrl.CreateFile(ctx, folderID, "", upload)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Uploaded %s [%s]\n", file.Name, file.ID)
}

// FilesView downloads a file by its content ID and opens it.
func (r *Runner) FilesView(ctx context.Context, cmd *cli.Command) error {
	id := models.ID(strings.TrimSpace(cmd.StringArg("id")))
	if id.IsZero() {
		return fmt.Errorf("%w: file id", shared.ErrMissingArgument)
	}

	ctrl, err := r.loadDashboard(ctx, false)
	if err != nil {
		return err
	}
	if err := ctrl.ViewFile(ctx, id); err != nil {
		return err
	}

	r.writePlain("→ Opened %s\n", id)

	// Stay alive until the viewer has removed its temp copy.
	select {
	case <-time.After(dashboard.DefaultViewDelay + 100*time.Millisecond):
	case <-ctx.Done():
	}
	return nil
}

// FilesDelete deletes a file after confirmation.
func (r *Runner) FilesDelete(ctx context.Context, cmd *cli.Command) error {
	id := models.ID(strings.TrimSpace(cmd.StringArg("id")))
	if id.IsZero() {
		return fmt.Errorf("%w: file id", shared.ErrMissingArgument)
	}

	ctrl, err := r.loadDashboard(ctx, cmd.Bool("yes"))
	if err != nil {
		return err
	}

	if err := ctrl.DeleteFile(ctx, id, models.ID(cmd.String("folder"))); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted file %s\n", id)
}
