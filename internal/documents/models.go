// Package documents files uploaded documents into owner-scoped folders.
package documents

import (
	"fmt"
	"strings"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"gorm.io/datatypes"
)

// Folder groups documents. An empty ParentID places the folder at the root.
type Folder struct {
	legal.Ownership
	Name     string `gorm:"column:name;not null" json:"name"`
	ParentID string `gorm:"column:parent_id;size:64;index" json:"parentId,omitempty"`
}

// TableName provides the explicit table binding for GORM.
func (Folder) TableName() string {
	return "folders"
}

// Document is the metadata of one uploaded file.
type Document struct {
	legal.Ownership
	Name       string                      `gorm:"column:name;not null" json:"name"`
	MimeType   string                      `gorm:"column:mime_type" json:"mimeType"`
	Size       int64                       `gorm:"column:size" json:"size"`
	URL        string                      `gorm:"column:url;not null" json:"url"`
	StorageKey string                      `gorm:"column:storage_key;not null" json:"storageKey"`
	FolderID   string                      `gorm:"column:folder_id;size:64;index" json:"folderId,omitempty"`
	Tags       datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
}

// TableName provides the explicit table binding for GORM.
func (Document) TableName() string {
	return "documents"
}

// Models lists the tables owned by this package for migrations.
func Models() []interface{} {
	return []interface{}{&Folder{}, &Document{}}
}

// FolderInput creates or renames a folder.
type FolderInput struct {
	legal.VersionGuard
	Name     *string `json:"name"`
	ParentID *string `json:"parentId"`
}

// Validate requires a name on create and rejects blank names.
func (in FolderInput) Validate(forCreate bool) error {
	return requireName(in.Name, forCreate)
}

// Apply copies the provided fields onto the folder.
func (in FolderInput) Apply(folder *Folder) {
	if in.Name != nil {
		folder.Name = strings.TrimSpace(*in.Name)
	}
	if in.ParentID != nil {
		folder.ParentID = strings.TrimSpace(*in.ParentID)
	}
}

// FileInput updates document metadata.
type FileInput struct {
	legal.VersionGuard
	Name     *string   `json:"name"`
	Tags     *[]string `json:"tags"`
	FolderID *string   `json:"folderId"`
}

// Validate rejects blank names.
func (in FileInput) Validate(forCreate bool) error {
	return requireName(in.Name, forCreate)
}

// Apply copies the provided fields onto the document.
func (in FileInput) Apply(document *Document) {
	if in.Name != nil {
		document.Name = strings.TrimSpace(*in.Name)
	}
	if in.Tags != nil {
		tags := make([]string, 0, len(*in.Tags))
		for _, tag := range *in.Tags {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		document.Tags = tags
	}
	if in.FolderID != nil {
		document.FolderID = strings.TrimSpace(*in.FolderID)
	}
	if document.Tags == nil {
		document.Tags = []string{}
	}
}

func requireName(name *string, forCreate bool) error {
	if name == nil {
		if forCreate {
			return fmt.Errorf("%w: name is required", legal.ErrInvalidInput)
		}
		return nil
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("%w: name must not be empty", legal.ErrInvalidInput)
	}
	return nil
}
