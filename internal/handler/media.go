package handler

import (
	"net/http"

	"blip/internal/client"
	"blip/internal/model"
)

// maxUploadBytes caps profile media uploads at 8 MiB.
const maxUploadBytes = 8 << 20

// MediaHandler serves media upload routes.
type MediaHandler struct {
	ipfs *client.IPFSClient
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(ipfs *client.IPFSClient) *MediaHandler {
	return &MediaHandler{ipfs: ipfs}
}

// Upload handles POST /media
// @Summary      Upload media
// @Description  Stores a file on the configured IPFS node and returns its CID
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      200  {object}  model.UploadResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /media [post]
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, &model.ValidationError{Field: "file", Message: err.Error()})
		return
	}
	defer file.Close()

	cid, err := h.ipfs.Add(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.UploadResponse{CID: cid})
}
