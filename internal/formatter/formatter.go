// package formatter exports summaries and folder listings to various formats (Markdown, HTML, CSV, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	stdhtml "html"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/lectern/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// SummaryNote is a summarized lecture ready for export.
type SummaryNote struct {
	Title      string
	Language   string
	Length     string
	Summary    string
	Transcript string
	CreatedAt  time.Time
}

// RTL reports whether the note's language is written right to left.
func (n *SummaryNote) RTL() bool {
	switch strings.ToLower(n.Language) {
	case "urdu", "ur", "ur-pk":
		return true
	}
	return false
}

func (n *SummaryNote) langTag() string {
	if n.RTL() {
		return "ur"
	}
	return "en"
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
)

// ExportSummaryMarkdown builds the Markdown note: title, metadata, summary and the optional transcript.
func ExportSummaryMarkdown(note *SummaryNote) []byte {
	var buf bytes.Buffer

	title := note.Title
	if title == "" {
		title = "Lecture Summary"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	if !note.CreatedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Date**: %s\n", note.CreatedAt.Format("2006-01-02 15:04")))
	}
	if note.Language != "" {
		buf.WriteString(fmt.Sprintf("**Language**: %s\n", note.Language))
	}
	if note.Length != "" {
		buf.WriteString(fmt.Sprintf("**Length**: %s\n", note.Length))
	}
	buf.WriteString("\n## Summary\n\n")
	buf.WriteString(strings.TrimSpace(note.Summary))
	buf.WriteString("\n")

	if t := strings.TrimSpace(note.Transcript); t != "" {
		buf.WriteString("\n## Transcript\n\n")
		buf.WriteString(t)
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// RenderSummary renders the note as a standalone HTML document.
func RenderSummary(note *SummaryNote) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert(ExportSummaryMarkdown(note), &body); err != nil {
		return nil, fmt.Errorf("failed to render summary: %w", err)
	}

	dir := "ltr"
	if note.RTL() {
		dir = "rtl"
	}

	title := note.Title
	if title == "" {
		title = "Lecture Summary"
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n")
	buf.WriteString(fmt.Sprintf("<html lang=%q dir=%q>\n<head>\n<meta charset=\"utf-8\">\n", note.langTag(), dir))
	buf.WriteString(fmt.Sprintf("<title>%s</title>\n</head>\n<body>\n", stdhtml.EscapeString(title)))
	buf.Write(body.Bytes())
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// ExportFoldersCSV converts folders to CSV with columns: Folder, Folder ID, File, File ID, Content ID, Size, Content Type.
//
// Empty folders get one row with the file columns blank.
func ExportFoldersCSV(folders []models.Folder) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Folder", "Folder ID", "File", "File ID", "Content ID", "Size", "Content Type"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, folder := range folders {
		if len(folder.Files) == 0 {
			if err := writer.Write([]string{folder.Name, folder.ID.String(), "", "", "", "", ""}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}
		for _, file := range folder.Files {
			record := []string{
				folder.Name,
				folder.ID.String(),
				file.Name,
				file.ID.String(),
				file.FileID.String(),
				strconv.FormatInt(file.Size, 10),
				file.ContentType,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportFoldersText converts folders to an indented plain text listing.
func ExportFoldersText(folders []models.Folder) []byte {
	var buf bytes.Buffer

	if len(folders) == 0 {
		buf.WriteString("No folders\n")
		return buf.Bytes()
	}

	for _, folder := range folders {
		buf.WriteString(fmt.Sprintf("%s [%s] (%d files)\n", folder.Name, folder.ID, len(folder.Files)))
		for _, file := range folder.Files {
			size := ""
			if file.Size > 0 {
				size = " " + FormatSize(file.Size)
			}
			buf.WriteString(fmt.Sprintf("  - %s [%s]%s\n", file.Name, file.ID, size))
		}
	}

	return buf.Bytes()
}

// FormatSize formats a byte count for display (e.g. 1.5 KB).
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// SummaryExportResult contains the paths of files created by WriteSummaryExport
type SummaryExportResult struct {
	Directory    string
	MarkdownFile string
	HTMLFile     string
}

// WriteSummaryExport writes the note as notes.md and notes.html in outputDir.
//
// Defaults to the current directory.
func WriteSummaryExport(note *SummaryNote, outputDir string) (*SummaryExportResult, error) {
	if outputDir == "" {
		outputDir = "."
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	htmlData, err := RenderSummary(note)
	if err != nil {
		return nil, err
	}

	result := &SummaryExportResult{
		Directory:    outputDir,
		MarkdownFile: filepath.Join(outputDir, "notes.md"),
		HTMLFile:     filepath.Join(outputDir, "notes.html"),
	}

	if err := os.WriteFile(result.MarkdownFile, ExportSummaryMarkdown(note), 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	if err := os.WriteFile(result.HTMLFile, htmlData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write HTML file: %w", err)
	}

	return result, nil
}

// WriteFoldersCSV exports folders to a CSV file, defaulting to folders.csv.
func WriteFoldersCSV(folders []models.Folder, path string) (string, error) {
	if path == "" {
		path = "folders.csv"
	}

	data, err := ExportFoldersCSV(folders)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}
