package handler

import (
	"mime"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"complianceadvisor/internal/errors"
	"complianceadvisor/internal/model"
	"complianceadvisor/internal/service"
)

// DocumentHandler handles upload, listing, download and deletion of documents.
type DocumentHandler struct {
	docs service.DocumentService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(docs service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// UploadedResponse lists the caller's logical document names.
type UploadedResponse struct {
	Uploaded []string `json:"uploaded"`
}

// DocumentsResponse lists the caller's document records.
type DocumentsResponse struct {
	Documents []model.Document `json:"documents"`
}

// DeleteRequest names the document to delete.
type DeleteRequest struct {
	DocumentName string `json:"document_name"`
}

// Upload godoc
// @Summary Upload a document
// @Description Replaces any existing document with the same name.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security SessionCookie
// @Param file formData file true "Document file"
// @Param document_name formData string false "Logical document name"
// @Param country formData string false "Country"
// @Param entity_type formData string false "Entity type (alias: entity)"
// @Param product_category formData string false "Product category (alias: product)"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/upload [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Filename == "" {
		return httpError(errors.ErrMissingFile)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return httpError(err)
	}
	defer src.Close()

	session := mustSession(c)
	_, err = h.docs.Upload(c.Request().Context(), session.UserID, service.UploadInput{
		DocumentName:    c.FormValue("document_name"),
		Country:         c.FormValue("country"),
		EntityType:      firstFormValue(c, "entity_type", "entity"),
		ProductCategory: firstFormValue(c, "product_category", "product"),
		Filename:        fileHeader.Filename,
		Content:         src,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Uploaded successfully"})
}

// MyDocuments godoc
// @Summary Names of the caller's documents
// @Tags documents
// @Produce json
// @Security SessionCookie
// @Success 200 {object} UploadedResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/my-documents [get]
func (h *DocumentHandler) MyDocuments(c echo.Context) error {
	docs, err := h.docs.List(c.Request().Context(), mustSession(c).UserID)
	if err != nil {
		return httpError(err)
	}

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.DocumentName)
	}
	return c.JSON(http.StatusOK, UploadedResponse{Uploaded: names})
}

// ListDocuments godoc
// @Summary The caller's document records, most recent first
// @Tags documents
// @Produce json
// @Security SessionCookie
// @Success 200 {object} DocumentsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/documents [get]
func (h *DocumentHandler) ListDocuments(c echo.Context) error {
	docs, err := h.docs.List(c.Request().Context(), mustSession(c).UserID)
	if err != nil {
		return httpError(err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return c.JSON(http.StatusOK, DocumentsResponse{Documents: docs})
}

// Preview godoc
// @Summary Serve a document inline
// @Tags documents
// @Produce octet-stream
// @Security SessionCookie
// @Param docName path string true "Logical document name"
// @Success 200 {file} file
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /download/{docName} [get]
func (h *DocumentHandler) Preview(c echo.Context) error {
	return h.serve(c, "inline")
}

// Download godoc
// @Summary Serve a document as an attachment
// @Tags documents
// @Produce octet-stream
// @Security SessionCookie
// @Param docName path string true "Logical document name"
// @Success 200 {file} file
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /download-attachment/{docName} [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	return h.serve(c, "attachment")
}

// Delete godoc
// @Summary Delete a document
// @Description Deleting a name that does not exist succeeds.
// @Tags documents
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body DeleteRequest true "Document to delete"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/delete-document [post]
func (h *DocumentHandler) Delete(c echo.Context) error {
	var req DeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := h.docs.Delete(c.Request().Context(), mustSession(c).UserID, req.DocumentName); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Deleted successfully"})
}

func (h *DocumentHandler) serve(c echo.Context, disposition string) error {
	name := c.Param("docName")
	// echo routes on RawPath, and so leaves the param escaped, only when
	// the path carries an escaped separator.
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	doc, rc, err := h.docs.Open(c.Request().Context(), mustSession(c).UserID, name)
	if err != nil {
		return httpError(err)
	}
	defer rc.Close()

	filename := doc.OriginalFilename
	if filename == "" {
		filename = doc.DocumentName
	}
	if v := mime.FormatMediaType(disposition, map[string]string{"filename": filename}); v != "" {
		c.Response().Header().Set(echo.HeaderContentDisposition, v)
	} else {
		c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, contentType, rc)
}

func firstFormValue(c echo.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.FormValue(k); v != "" {
			return v
		}
	}
	return ""
}
