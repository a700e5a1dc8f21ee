package image

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/buket/service/internal/response"
	"github.com/buket/service/internal/storage"
)

const (
	// formField is the multipart field carrying the image.
	formField = "image"
	// formOverhead is the room left for multipart boundaries and part
	// headers on top of the file size limit.
	formOverhead = 1 << 20
)

var (
	// errNoFile marks a request without an image part.
	errNoFile = errors.New("no image in request")
	// errTooLarge marks an image above the upload limit.
	errTooLarge = errors.New("image too large")
)

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc       *Service
	maxUpload int64
	log       *zap.Logger
}

// NewHandler creates a new image Handler. maxUpload caps the request body in bytes.
func NewHandler(svc *Service, maxUpload int64, log *zap.Logger) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload, log: log}
}

type uploadResponse struct {
	Message  string `json:"message" example:"Image uploaded successfully"`
	FileName string `json:"file_name" example:"1700000000000-cat.png"`
	CDNURL   string `json:"cdn_url" example:"https://cdn.jsdelivr.net/gh/octo/assets/images/1700000000000-cat.png"`
}

type listResponse struct {
	Total  int     `json:"total" example:"1"`
	Images []Image `json:"images"`
}

type deleteResponse struct {
	Message  string `json:"message" example:"Image deleted"`
	FileName string `json:"fileName" example:"1700000000000-cat.png"`
}

// Upload godoc
//
//	@Summary		Upload image
//	@Description	Stores the image as "<unix millis>-<original name>" and returns its CDN URL.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Image file"
//	@Success		200		{object}	uploadResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Security		BearerAuth
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	name, content, err := h.readImage(w, r)
	if err != nil {
		h.writeFormError(w, err, "No image uploaded")
		return
	}

	img, err := h.svc.Store(r.Context(), name, content)
	if err != nil {
		h.writeError(w, err, "upload")
		return
	}

	response.OK(w, uploadResponse{
		Message:  "Image uploaded successfully",
		FileName: img.Name,
		CDNURL:   img.CDNURL,
	})
}

// List godoc
//
//	@Summary		List images
//	@Description	Returns every stored image with its CDN URL.
//	@Tags			images
//	@Produce		json
//	@Success		200	{object}	listResponse
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err, "list")
		return
	}
	response.OK(w, listResponse{Total: len(images), Images: images})
}

// Update godoc
//
//	@Summary		Replace image
//	@Description	Deletes the stored file and uploads the new content under the same name. The returned URL carries a ?v= cache-busting version.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			fileName	path		string	true	"Stored file name"
//	@Param			image		formData	file	true	"Replacement image"
//	@Success		200			{object}	uploadResponse
//	@Failure		400			{object}	response.ErrorBody
//	@Failure		401			{object}	response.ErrorBody
//	@Failure		404			{object}	response.ErrorBody
//	@Failure		409			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Security		BearerAuth
//	@Router			/update/{fileName} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	fileName, err := fileNameParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid file name")
		return
	}

	_, content, err := h.readImage(w, r)
	if err != nil {
		h.writeFormError(w, err, "No image provided")
		return
	}

	img, err := h.svc.Replace(r.Context(), fileName, content)
	if err != nil {
		h.writeError(w, err, "update")
		return
	}

	response.OK(w, uploadResponse{
		Message:  "Image updated successfully",
		FileName: img.Name,
		CDNURL:   img.CDNURL,
	})
}

// Delete godoc
//
//	@Summary		Delete image
//	@Tags			images
//	@Produce		json
//	@Param			fileName	path		string	true	"Stored file name"
//	@Success		200			{object}	deleteResponse
//	@Failure		401			{object}	response.ErrorBody
//	@Failure		404			{object}	response.ErrorBody
//	@Failure		409			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Security		BearerAuth
//	@Router			/delete/{fileName} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	fileName, err := fileNameParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid file name")
		return
	}

	if err := h.svc.Remove(r.Context(), fileName); err != nil {
		h.writeError(w, err, "delete")
		return
	}

	response.OK(w, deleteResponse{Message: "Image deleted", FileName: fileName})
}

// readImage returns the original name and bytes of the image form part.
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, errTooLarge
		}
		return "", nil, errNoFile
	}

	file, header, err := r.FormFile(formField)
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		return "", nil, errTooLarge
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read image: %w", err)
	}
	return header.Filename, content, nil
}

// fileNameParam returns the decoded {fileName} path segment. chi matches on
// the escaped path whenever the request escapes characters Go would not,
// and then hands back the segment still encoded.
func fileNameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "fileName")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

func (h *Handler) writeFormError(w http.ResponseWriter, err error, noFileMsg string) {
	switch {
	case errors.Is(err, errNoFile):
		response.BadRequest(w, noFileMsg)
	case errors.Is(err, errTooLarge):
		response.BadRequest(w, fmt.Sprintf("image exceeds %d bytes", h.maxUpload))
	default:
		response.BadRequest(w, err.Error())
	}
}

// writeError maps workflow errors onto HTTP statuses. Upstream bodies are
// forwarded verbatim.
func (h *Handler) writeError(w http.ResponseWriter, err error, op string) {
	var upErr *storage.UpstreamError
	switch {
	case errors.Is(err, ErrNotFound):
		if op == "delete" {
			response.NotFound(w, "File not found, nothing to delete")
			return
		}
		response.NotFound(w, "File not found in GitHub repo")
	case errors.Is(err, ErrInvalidName):
		response.BadRequest(w, err.Error())
	case errors.Is(err, storage.ErrConflict):
		if errors.As(err, &upErr) {
			response.Error(w, http.StatusConflict, upErr.Detail())
			return
		}
		response.Conflict(w, err.Error())
	case errors.As(err, &upErr):
		h.log.Error(op+" failed", zap.Int("upstream_status", upErr.StatusCode), zap.Error(err))
		response.InternalError(w, upErr.Detail())
	default:
		h.log.Error(op+" failed", zap.Error(err))
		response.InternalError(w, err.Error())
	}
}
