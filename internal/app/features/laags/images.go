// internal/app/features/laags/images.go
package laags

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	imagestore "github.com/dalemusser/laag/internal/app/store/images"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/limits"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/app/system/uploads"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.uber.org/zap"
)

const imagePrefix = "laags"

func (h *Handler) maxUpload() int64 {
	if h.MaxUpload > 0 {
		return h.MaxUpload
	}
	return limits.MaxUploadBytes
}

// parseMultipart bounds and parses a multipart body sized for up to
// MaxImagesPerRequest images.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload()*limits.MaxImagesPerRequest+(1<<20))
	if err := r.ParseMultipartForm(limits.MaxMultipartMemory); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid upload.")
		return false
	}
	return true
}

// saveImages stores every file and returns their paths. A rejected file
// stops the batch; files stored before it are left in place.
func (h *Handler) saveImages(ctx context.Context, w http.ResponseWriter, r *http.Request, files []*multipart.FileHeader) ([]string, bool) {
	if len(files) > limits.MaxImagesPerRequest {
		h.ErrLog.LogBadRequest(w, r, "too many images", nil, "Too many images in one upload.")
		return nil, false
	}
	paths := make([]string, 0, len(files))
	for _, fh := range files {
		p, err := uploads.SaveImage(ctx, h.Blobs, fh, imagePrefix, h.maxUpload())
		if uploads.IsClientError(err) {
			h.ErrLog.LogBadRequest(w, r, "image rejected", err, fh.Filename+": "+err.Error())
			return nil, false
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "store image failed", err, "Failed to upload images.")
			return nil, false
		}
		paths = append(paths, p)
	}
	return paths, true
}

// canUpload allows the organizer and active members of the laag's group.
func (h *Handler) canUpload(ctx context.Context, a authz.Actor, l models.Laag) (bool, error) {
	if a.ID == l.Organizer {
		return true, nil
	}
	return h.Members.IsActiveMember(ctx, l.GroupID, a.ID)
}

// HandleAddImages attaches photos to a laag.
// POST /groups/{id}/laags/{laagID}/images (multipart field "images")
func (h *Handler) HandleAddImages(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !h.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	allowed, err := h.canUpload(ctx, a, l)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership check failed", err, "A database error occurred.")
		return
	}
	if !allowed {
		h.ErrLog.LogForbidden(w, r, "image upload denied", "Only group members can add photos.")
		return
	}

	files, err := uploads.FormImages(r, "images")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "images missing", err, "Choose at least one image.")
		return
	}
	paths, ok := h.saveImages(ctx, w, r, files)
	if !ok {
		return
	}

	added := make([]models.LaagImage, 0, len(paths))
	for _, p := range paths {
		img, err := h.Images.Add(ctx, l.ID, p, a.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "record image failed", err, "Failed to upload images.")
			return
		}
		added = append(added, img)
	}
	h.Log.Info("laag images added", zap.String("laag_id", l.ID.Hex()), zap.Int("count", len(added)))
	httpx.WriteJSON(w, http.StatusCreated, h.withURLs(added))
}

// HandleDeleteImage hides a photo. The uploader, the organizer or an
// admin may do this. The blob itself is kept.
// POST /groups/{id}/laags/{laagID}/images/{imageID}/delete
func (h *Handler) HandleDeleteImage(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	imgID, ok := h.urlID(w, r, "imageID", "image")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	img, err := h.Images.GetByID(ctx, imgID)
	if errors.Is(err, imagestore.ErrNotFound) || (err == nil && img.LaagID != l.ID) {
		h.ErrLog.LogNotFound(w, r, "image not found", err, "Image not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading image", err, "A database error occurred.")
		return
	}
	if !a.Admin && a.ID != img.UploadedBy && a.ID != l.Organizer {
		h.ErrLog.LogForbidden(w, r, "image delete denied", "You can't delete this image.")
		return
	}
	if err := h.Images.SoftDelete(ctx, img.ID); err != nil && !errors.Is(err, imagestore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "delete image failed", err, "Failed to delete image.")
		return
	}
	httpx.NoContent(w)
}
