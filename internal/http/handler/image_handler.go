package handler

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/response"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/imagedir"
)

// ImageHandler serves stored product images from the local image directory.
type ImageHandler struct {
	dir string
}

func NewImageHandler(dir string) *ImageHandler {
	return &ImageHandler{dir: dir}
}

func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || filepath.Base(name) != name || !imagedir.HasImageExtension(name) {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid image name", nil)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.dir, name))
}
