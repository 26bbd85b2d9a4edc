// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"hirexfed/internal/imaging"
	"hirexfed/internal/storage"
)

// mediaPrefix is the object key prefix of uploaded site images.
const mediaPrefix = "media"

// imageField and removeImageField are the inputs of the image_field partial.
const (
	imageField       = "image"
	removeImageField = "remove_image"
)

// uploadError is an image upload rejected for a reason the editor can fix.
type uploadError struct {
	msg string
}

func (e *uploadError) Error() string { return e.msg }

// imageChange describes what a form did to a row's image. key is the value
// to store; created is a freshly uploaded object and old the object to
// release once the row is saved.
type imageChange struct {
	key     *string
	created string
	old     string
}

// imageFromForm processes the image input of a multipart form. Without a
// new file the current key is kept, unless remove_image is ticked. New
// images are checked, scaled down to imaging.MaxWidth and stored under
// media/.
func (a *Admin) imageFromForm(r *http.Request, current *string) (imageChange, error) {
	change := imageChange{key: current}
	oldKey := ""
	if current != nil {
		oldKey = *current
	}

	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		if formBool(r, removeImageField) && current != nil {
			change.key = nil
			change.old = oldKey
		}
		return change, nil
	}
	if err != nil {
		return change, &uploadError{msg: "Could not read the uploaded image."}
	}
	defer file.Close()

	if a.media == nil {
		return change, &uploadError{msg: "Image storage is not configured."}
	}
	if header.Size > imaging.MaxUploadSize {
		return change, &uploadError{msg: fmt.Sprintf("Image is too large (max %d MB).", imaging.MaxUploadSize>>20)}
	}

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxUploadSize+1))
	if err != nil {
		return change, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > imaging.MaxUploadSize {
		return change, &uploadError{msg: fmt.Sprintf("Image is too large (max %d MB).", imaging.MaxUploadSize>>20)}
	}

	img, err := imaging.Prepare(data, imaging.MaxWidth)
	if errors.Is(err, imaging.ErrUnsupported) {
		return change, &uploadError{msg: "Unsupported image. Use JPEG, PNG, GIF or WebP."}
	}
	if err != nil {
		slog.Warn("image rejected", "filename", header.Filename, "error", err)
		return change, &uploadError{msg: "The image could not be processed."}
	}

	key := storage.NewKey(mediaPrefix, imageName(header.Filename, img.Ext), time.Now())
	if err := a.media.Put(r.Context(), key, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		return change, fmt.Errorf("store image: %w", err)
	}
	slog.Info("image uploaded", "key", key, "width", img.Width, "height", img.Height)

	change.key = &key
	change.created = key
	change.old = oldKey
	return change, nil
}

// imageName swaps the extension of the uploaded filename for the one of
// the stored encoding.
func imageName(filename, ext string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base)) + ext
}

// commitImage releases the replaced image once the row is saved.
func (a *Admin) commitImage(ctx context.Context, c imageChange) {
	if c.old != "" && (c.key == nil || *c.key != c.old) {
		a.deleteObject(ctx, c.old)
	}
}

// rollbackImage removes an image uploaded for a row that failed to save.
func (a *Admin) rollbackImage(ctx context.Context, c imageChange) {
	if c.created != "" {
		a.deleteObject(ctx, c.created)
	}
}

// deleteImage releases the image of a deleted row.
func (a *Admin) deleteImage(ctx context.Context, key *string) {
	if key != nil && *key != "" {
		a.deleteObject(ctx, *key)
	}
}

func (a *Admin) deleteObject(ctx context.Context, key string) {
	if a.media == nil {
		return
	}
	if err := a.media.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("delete image failed", "key", key, "error", err)
	}
}

// renderImageError re-renders the form for upload errors the editor can
// fix and answers 500 for storage failures.
func (a *Admin) renderImageError(w http.ResponseWriter, r *http.Request, err error, rerender func(msg string)) {
	var ue *uploadError
	if errors.As(err, &ue) {
		rerender(ue.msg)
		return
	}
	slog.Error("image upload failed", "error", err)
	http.Error(w, "Failed to store the image.", http.StatusInternalServerError)
}
