package handlers

import (
	"io"
	"net/http"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/services"
)

type PhotoStore interface {
	SaveItemPhoto(filename string, r io.Reader) (string, error)
}

type UploadHandler struct {
	store    PhotoStore
	maxBytes int64
}

func NewUploadHandler(store PhotoStore, maxBytes int64) *UploadHandler {
	return &UploadHandler{store: store, maxBytes: maxBytes}
}

// UploadItemPhoto stores a collateral photo
// @Summary Upload item photo
// @Description Returns the public path to send as an item's photo_path.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image, at most 10 MB"
// @Success 201 {object} object{path=string}
// @Failure 400 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) UploadItemPhoto(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+maxBodyBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		services.SendErrorResponse(w, "Multipart field \"file\" is required", http.StatusBadRequest, nil)
		return
	}
	defer file.Close()

	path, err := h.store.SaveItemPhoto(header.Filename, file)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}
