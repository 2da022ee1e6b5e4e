// package models defines the data model for the lecture notes client
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is the canonical identifier of any backend entity.
type ID string

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return id == "" }

// UnmarshalJSON accepts a string, a number or an extended-JSON {"$oid": "..."} object.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
	case '{':
		var oid struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(b, &oid); err != nil {
			return err
		}
		*id = ID(oid.OID)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("unsupported identifier %s", b)
		}
		*id = ID(n.String())
	}
	return nil
}

// pickID prefers the backend's _id over id.
func pickID(rawID, id ID) ID {
	if !rawID.IsZero() {
		return rawID
	}
	return id
}

// User is an authenticated profile.
//
// RawID mirrors the backend "_id" when one was present so that serialized
// users keep both keys.
type User struct {
	ID      ID
	RawID   ID
	Email   string
	Name    string
	Picture string
	Extra   map[string]any
}

var userKeys = []string{"_id", "id", "email", "name", "picture"}

// NormalizeUser decodes a backend profile payload into a [User].
func NormalizeUser(raw json.RawMessage) (*User, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("user payload is empty")
	}

	var wire struct {
		RawID   ID     `json:"_id"`
		ID      ID     `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	var extra map[string]any
	if err := json.Unmarshal(raw, &extra); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	for _, k := range userKeys {
		delete(extra, k)
	}
	if len(extra) == 0 {
		extra = nil
	}

	return &User{
		ID:      pickID(wire.RawID, wire.ID),
		RawID:   wire.RawID,
		Email:   wire.Email,
		Name:    wire.Name,
		Picture: wire.Picture,
		Extra:   extra,
	}, nil
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Extra != nil {
		c.Extra = make(map[string]any, len(u.Extra))
		for k, v := range u.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// MarshalJSON writes the profile with both "id" and, when known, "_id".
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+5)
	for k, v := range u.Extra {
		out[k] = v
	}
	out["id"] = u.ID
	if !u.RawID.IsZero() {
		out["_id"] = u.RawID
	}
	if u.Email != "" {
		out["email"] = u.Email
	}
	if u.Name != "" {
		out["name"] = u.Name
	}
	if u.Picture != "" {
		out["picture"] = u.Picture
	}
	return json.Marshal(out)
}

// UnmarshalJSON routes through [NormalizeUser].
func (u *User) UnmarshalJSON(b []byte) error {
	nu, err := NormalizeUser(b)
	if err != nil {
		return err
	}
	*u = *nu
	return nil
}

// Session is the client's belief about the current credential and profile.
//
// A non-nil User always comes with a non-empty Token.
type Session struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// Authenticated reports whether a token is held.
func (s Session) Authenticated() bool { return s.Token != "" }

// File is an uploaded document inside a folder.
//
// FileID is the content handle used for viewing; ID identifies the entity for deletion.
type File struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	FileID      ID     `json:"fileId"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	FolderID    ID     `json:"folderId,omitempty"`
}

// NormalizeFile decodes a backend file payload into a [File].
func NormalizeFile(raw json.RawMessage) (File, error) {
	var wire struct {
		RawID        ID     `json:"_id"`
		ID           ID     `json:"id"`
		Name         string `json:"name"`
		OriginalName string `json:"originalName"`
		FileID       ID     `json:"fileId"`
		Size         int64  `json:"size"`
		ContentType  string `json:"contentType"`
		MimeType     string `json:"mimetype"`
		FolderID     ID     `json:"folderId"`
		Folder       ID     `json:"folder"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return File{}, fmt.Errorf("failed to decode file: %w", err)
	}

	f := File{
		ID:          pickID(wire.RawID, wire.ID),
		Name:        wire.Name,
		FileID:      wire.FileID,
		Size:        wire.Size,
		ContentType: wire.ContentType,
		FolderID:    wire.FolderID,
	}
	if f.Name == "" {
		f.Name = wire.OriginalName
	}
	if f.ContentType == "" {
		f.ContentType = wire.MimeType
	}
	if f.FolderID.IsZero() {
		f.FolderID = wire.Folder
	}
	return f, nil
}

// Folder groups files owned by one user.
type Folder struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Owner ID     `json:"user,omitempty"`
	Files []File `json:"files"`
}

// NormalizeFolder decodes a backend folder payload, normalizing every nested file.
func NormalizeFolder(raw json.RawMessage) (Folder, error) {
	var wire struct {
		RawID ID                `json:"_id"`
		ID    ID                `json:"id"`
		Name  string            `json:"name"`
		User  ID                `json:"user"`
		Files []json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Folder{}, fmt.Errorf("failed to decode folder: %w", err)
	}

	folder := Folder{
		ID:    pickID(wire.RawID, wire.ID),
		Name:  wire.Name,
		Owner: wire.User,
		Files: make([]File, 0, len(wire.Files)),
	}
	for _, rf := range wire.Files {
		f, err := NormalizeFile(rf)
		if err != nil {
			return Folder{}, err
		}
		if f.FolderID.IsZero() {
			f.FolderID = folder.ID
		}
		folder.Files = append(folder.Files, f)
	}
	return folder, nil
}

// NormalizeFolders decodes a JSON array of folders.
func NormalizeFolders(raw json.RawMessage) ([]Folder, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %w", err)
	}

	folders := make([]Folder, 0, len(items))
	for _, item := range items {
		f, err := NormalizeFolder(item)
		if err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	return folders, nil
}

// Clone returns a deep copy of f.
func (f Folder) Clone() Folder {
	c := f
	c.Files = append([]File(nil), f.Files...)
	if c.Files == nil {
		c.Files = []File{}
	}
	return c
}

// Recording is a locally captured lecture with its live transcript.
type Recording struct {
	ID         string
	Sequence   int
	Language   string
	Transcript string
	AudioPath  string
	Uploaded   bool
	CreatedAt  time.Time
	DeletedAt  *time.Time
}

// NewRecording creates a [Recording] stamped with the current time.
func NewRecording(language, transcript, audioPath string) *Recording {
	return &Recording{
		Language:   language,
		Transcript: transcript,
		AudioPath:  audioPath,
		CreatedAt:  time.Now(),
	}
}

// Validate checks required fields.
func (r *Recording) Validate() error {
	if strings.TrimSpace(r.Language) == "" {
		return fmt.Errorf("recording language is required")
	}
	return nil
}
