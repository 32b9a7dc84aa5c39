package server

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/documents"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	resourceFolders   = "folders"
	resourceDocuments = "documents"
	uploadFormField   = "files"
)

func (h *httpHandler) handleListFolders(c *gin.Context) {
	folders, err := h.documents.ListFolders(c.Request.Context(), c.GetString(userIDContextKey))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

func (h *httpHandler) handleCreateFolder(c *gin.Context) {
	var input documents.FolderInput
	if err := decodeJSON(c, &input); err != nil {
		h.respondInvalidRequest(c)
		return
	}
	userID := c.GetString(userIDContextKey)
	folder, err := h.documents.CreateFolder(c.Request.Context(), userID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(userID, resourceFolders, RealtimeActionCreated, folder.ID)
	c.JSON(http.StatusCreated, gin.H{"folder": folder})
}

func (h *httpHandler) handleRenameFolder(c *gin.Context) {
	var input documents.FolderInput
	if err := decodeJSON(c, &input); err != nil {
		h.respondInvalidRequest(c)
		return
	}
	userID := c.GetString(userIDContextKey)
	folder, err := h.documents.RenameFolder(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(userID, resourceFolders, RealtimeActionUpdated, folder.ID)
	c.JSON(http.StatusOK, gin.H{"folder": folder})
}

func (h *httpHandler) handleDeleteFolder(c *gin.Context) {
	userID := c.GetString(userIDContextKey)
	folderID := c.Param("id")
	if err := h.documents.DeleteFolder(c.Request.Context(), userID, folderID); err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(userID, resourceFolders, RealtimeActionDeleted, folderID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *httpHandler) handleListFiles(c *gin.Context) {
	files, err := h.documents.ListFiles(c.Request.Context(), c.GetString(userIDContextKey), c.Query("folderId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *httpHandler) handleGetFile(c *gin.Context) {
	file, err := h.documents.GetFile(c.Request.Context(), c.GetString(userIDContextKey), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": file})
}

func (h *httpHandler) handleUpdateFile(c *gin.Context) {
	var input documents.FileInput
	if err := decodeJSON(c, &input); err != nil {
		h.respondInvalidRequest(c)
		return
	}
	userID := c.GetString(userIDContextKey)
	file, err := h.documents.UpdateFile(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(userID, resourceDocuments, RealtimeActionUpdated, file.ID)
	c.JSON(http.StatusOK, gin.H{"file": file})
}

func (h *httpHandler) handleDeleteFile(c *gin.Context) {
	userID := c.GetString(userIDContextKey)
	fileID := c.Param("id")
	if err := h.documents.DeleteFile(c.Request.Context(), userID, fileID); err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(userID, resourceDocuments, RealtimeActionDeleted, fileID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *httpHandler) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.respondInvalidRequest(c)
		return
	}
	headers := form.File[uploadFormField]
	uploads := make([]documents.Upload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}()
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			h.logger.Warn("failed to open uploaded file", zap.String("file_name", header.Filename), zap.Error(err))
			h.respondInvalidRequest(c)
			return
		}
		opened = append(opened, file)
		uploads = append(uploads, documents.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		})
	}

	userID := c.GetString(userIDContextKey)
	saved, err := h.documents.Upload(c.Request.Context(), userID, c.PostForm("folderId"), uploads)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ids := make([]string, 0, len(saved))
	for _, document := range saved {
		ids = append(ids, document.ID)
	}
	h.publish(userID, resourceDocuments, RealtimeActionCreated, ids...)
	c.JSON(http.StatusCreated, gin.H{"files": saved})
}

func (h *httpHandler) handleDownload(c *gin.Context) {
	name := c.Param("name")
	if err := storage.ValidateName(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	reader, err := h.documents.OpenBlob(c.Request.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to open blob", zap.String("storage_key", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Warn("blob download interrupted", zap.String("storage_key", name), zap.Error(err))
	}
}
