// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package intake

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// Upload limits.
const (
	MaxFileSize  = 5 << 20 // 5 MiB per file
	MaxFileCount = 5       // per submission
)

// GenericUploadField is the input name of the form-wide documents channel
// used when a form allows uploads but has no file field of its own.
const GenericUploadField = "documents"

// allowedTypes maps each accepted extension to the declared content types
// browsers are known to send for it.
var allowedTypes = map[string][]string{
	".pdf": {"application/pdf", "application/x-pdf"},
	".doc": {
		"application/msword", "application/doc", "application/vnd.ms-word",
		"application/octet-stream",
	},
	".docx": {
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/zip", "application/x-zip-compressed", "application/octet-stream",
	},
}

var (
	sigPDF = []byte("%PDF-")
	sigOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	sigZIP = []byte("PK\x03\x04")
)

// docxMainPart is the entry every WordprocessingML package contains.
const docxMainPart = "word/document.xml"

const msgUnsupportedFormat = "Unsupported file format. Allowed formats: PDF, DOC, DOCX."

// Upload is one file received from a visitor. Size is the size declared
// by the client; Open returns the content.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// AcceptedFile is an upload that passed validation, with its content read
// into memory.
type AcceptedFile struct {
	FieldName   string
	Filename    string
	ContentType string
	Data        []byte
}

// fileExt returns the lowercased extension of a client-supplied filename,
// tolerating Windows paths.
func fileExt(name string) string {
	return strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
}

// baseName strips any client-supplied directory from a filename.
func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// ValidateUpload checks extension, size, declared content type and magic
// bytes of one upload. Errors are *ValidationError values for field.
func ValidateUpload(field string, u Upload) (*AcceptedFile, error) {
	name := baseName(u.Filename)
	ext := fileExt(name)
	allowed, ok := allowedTypes[ext]
	if !ok {
		return nil, invalid(field, msgUnsupportedFormat)
	}
	if u.Size > MaxFileSize {
		return nil, invalid(field, tooLarge(name))
	}

	ct := strings.ToLower(strings.TrimSpace(strings.Split(u.ContentType, ";")[0]))
	if ct != "" && !contains(allowed, ct) {
		return nil, invalid(field, fmt.Sprintf("File %q does not match the expected file type.", name))
	}

	rc, err := u.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", name, err)
	}
	defer rc.Close()

	// Read one byte past the cap so a lying Size header is still caught.
	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", name, err)
	}
	if len(data) > MaxFileSize {
		return nil, invalid(field, tooLarge(name))
	}

	if !matchesSignature(ext, data) {
		return nil, invalid(field, fmt.Sprintf("File %q content does not match its extension.", name))
	}

	if ct == "" {
		ct = allowed[0]
	}
	return &AcceptedFile{FieldName: field, Filename: name, ContentType: ct, Data: data}, nil
}

func tooLarge(name string) string {
	return fmt.Sprintf("File %q is too large. Maximum size is %dMB.", name, MaxFileSize>>20)
}

// matchesSignature reports whether data starts with the magic bytes of the
// format implied by ext. DOCX files must additionally be readable zip
// archives containing the main document part.
func matchesSignature(ext string, data []byte) bool {
	switch ext {
	case ".pdf":
		return bytes.HasPrefix(data, sigPDF)
	case ".doc":
		return bytes.HasPrefix(data, sigOLE)
	case ".docx":
		if !bytes.HasPrefix(data, sigZIP) {
			return false
		}
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return false
		}
		for _, f := range zr.File {
			if f.Name == docxMainPart {
				return true
			}
		}
		return false
	}
	return false
}

func contains(list []string, v string) bool {
	for _, it := range list {
		if it == v {
			return true
		}
	}
	return false
}
