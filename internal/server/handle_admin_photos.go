package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/futsalmap/webgis/internal/photos"
)

const maxPhotosPerUpload = 10

// PhotoFiles stores uploaded image files.
type PhotoFiles interface {
	Save(venueID int64, r io.Reader) (photos.Stored, error)
	Delete(fileName string) error
}

// handleAdminUploadPhotos accepts up to ten images in the multipart field
// "photos", each at most maxFileBytes, with an optional shared caption.
func handleAdminUploadPhotos(logger *slog.Logger, store Store, files PhotoFiles, maxFileBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venueID, ok := idParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid venue id")
			return
		}
		if _, err := store.GetVenue(r.Context(), venueID); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "venue not found")
				return
			}
			logger.Error("getting venue", "id", venueID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxPhotosPerUpload*maxFileBytes+1<<20)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File["photos"]
		switch {
		case len(headers) == 0:
			writeError(w, http.StatusBadRequest, "at least one photo is required")
			return
		case len(headers) > maxPhotosPerUpload:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d photos per upload", maxPhotosPerUpload))
			return
		}
		caption := strings.TrimSpace(r.FormValue("caption"))

		var saved []NewPhoto
		discard := func() {
			for _, p := range saved {
				files.Delete(p.FileName)
			}
		}

		for _, fh := range headers {
			stored, err := saveUpload(files, venueID, fh)
			if err != nil {
				discard()
				switch {
				case errors.Is(err, photos.ErrNotImage):
					writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is not a supported image", fh.Filename))
				case errors.Is(err, photos.ErrTooLarge):
					writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("%s exceeds the size limit", fh.Filename))
				default:
					logger.Error("saving upload", "file", fh.Filename, "error", err)
					writeError(w, http.StatusInternalServerError, "internal error")
				}
				return
			}
			saved = append(saved, NewPhoto{URL: stored.URL, FileName: stored.FileName, Caption: caption})
		}

		added, err := store.AddPhotos(r.Context(), venueID, saved)
		if err != nil {
			discard()
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "venue not found")
				return
			}
			logger.Error("adding photos", "venue_id", venueID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, added)
	}
}

func saveUpload(files PhotoFiles, venueID int64, fh *multipart.FileHeader) (photos.Stored, error) {
	f, err := fh.Open()
	if err != nil {
		return photos.Stored{}, err
	}
	defer f.Close()
	return files.Save(venueID, f)
}

func handleAdminSetPrimaryPhoto(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venueID, ok := idParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid venue id")
			return
		}
		photoID, ok := idParam(r, "photoID")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid photo id")
			return
		}

		if err := store.SetPrimaryPhoto(r.Context(), venueID, photoID); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "photo not found")
				return
			}
			logger.Error("setting primary photo", "venue_id", venueID, "photo_id", photoID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handleAdminDeletePhoto removes the row first, then the file.
func handleAdminDeletePhoto(logger *slog.Logger, store Store, files PhotoFiles) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid photo id")
			return
		}

		photo, err := store.DeletePhoto(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "photo not found")
			return
		}
		if err != nil {
			logger.Error("deleting photo", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := files.Delete(photo.FileName); err != nil {
			logger.Warn("removing photo file", "file", photo.FileName, "error", err)
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
