// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package intake

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

var (
	pdfBytes = []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
	docBytes = append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 64)...)
)

func zipWith(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		w.Write([]byte("<xml/>"))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestValidateUpload(t *testing.T) {
	docx := zipWith(t, "[Content_Types].xml", "word/document.xml")
	plainZip := zipWith(t, "notes.txt")
	brokenZip := append([]byte("PK\x03\x04"), []byte("not really a zip")...)

	const docxType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	tests := []struct {
		name    string
		upload  Upload
		wantMsg string // empty means accepted
	}{
		{name: "valid pdf", upload: MemoryUpload("resume.pdf", "application/pdf", pdfBytes)},
		{name: "valid pdf no content type", upload: MemoryUpload("resume.PDF", "", pdfBytes)},
		{name: "valid doc", upload: MemoryUpload("cv.doc", "application/msword", docBytes)},
		{name: "valid docx", upload: MemoryUpload("cv.docx", docxType, docx)},
		{name: "docx as octet-stream", upload: MemoryUpload("cv.docx", "application/octet-stream", docx)},
		{name: "content type with params", upload: MemoryUpload("a.pdf", "application/pdf; charset=binary", pdfBytes)},
		{
			name:    "unsupported extension",
			upload:  MemoryUpload("photo.png", "image/png", []byte("\x89PNG")),
			wantMsg: msgUnsupportedFormat,
		},
		{
			name:    "no extension",
			upload:  MemoryUpload("resume", "application/pdf", pdfBytes),
			wantMsg: msgUnsupportedFormat,
		},
		{
			name:    "pdf with arbitrary bytes",
			upload:  MemoryUpload("resume.pdf", "application/pdf", []byte("hello world")),
			wantMsg: `File "resume.pdf" content does not match its extension.`,
		},
		{
			name:    "pdf declared as word",
			upload:  MemoryUpload("resume.pdf", "application/msword", pdfBytes),
			wantMsg: `File "resume.pdf" does not match the expected file type.`,
		},
		{
			name:    "zip without document part",
			upload:  MemoryUpload("cv.docx", docxType, plainZip),
			wantMsg: `File "cv.docx" content does not match its extension.`,
		},
		{
			name:    "zip magic but unreadable archive",
			upload:  MemoryUpload("cv.docx", docxType, brokenZip),
			wantMsg: `File "cv.docx" content does not match its extension.`,
		},
		{
			name:    "doc with pdf bytes",
			upload:  MemoryUpload("cv.doc", "application/msword", pdfBytes),
			wantMsg: `File "cv.doc" content does not match its extension.`,
		},
		{
			name:    "empty file",
			upload:  MemoryUpload("empty.pdf", "application/pdf", nil),
			wantMsg: `File "empty.pdf" content does not match its extension.`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			af, err := ValidateUpload("documents", tt.upload)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("ValidateUpload: %v", err)
				}
				if af.FieldName != "documents" || len(af.Data) == 0 {
					t.Errorf("unexpected accepted file: %+v", af)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if verr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", verr.Message, tt.wantMsg)
			}
			if verr.Field != "documents" {
				t.Errorf("field = %q, want documents", verr.Field)
			}
		})
	}
}

func TestValidateUploadOversized(t *testing.T) {
	big := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("x"), MaxFileSize)...)
	want := `File "big.pdf" is too large. Maximum size is 5MB.`

	// Declared size over the cap.
	_, err := ValidateUpload("cv", MemoryUpload("big.pdf", "application/pdf", big))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != want {
		t.Fatalf("declared oversize: got %v, want %q", err, want)
	}

	// A client lying about the size is caught while reading.
	u := MemoryUpload("big.pdf", "application/pdf", big)
	u.Size = 100
	_, err = ValidateUpload("cv", u)
	if !errors.As(err, &verr) || verr.Message != want {
		t.Fatalf("actual oversize: got %v, want %q", err, want)
	}

	// Exactly at the cap passes the size check.
	exact := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("x"), MaxFileSize-len(pdfBytes))...)
	if _, err := ValidateUpload("cv", MemoryUpload("exact.pdf", "application/pdf", exact)); err != nil {
		t.Errorf("file at the cap rejected: %v", err)
	}
}

func TestValidateUploadStripsClientPath(t *testing.T) {
	af, err := ValidateUpload("cv", MemoryUpload(`C:\Users\jane\My CV.pdf`, "application/pdf", pdfBytes))
	if err != nil {
		t.Fatalf("ValidateUpload: %v", err)
	}
	if af.Filename != "My CV.pdf" {
		t.Errorf("filename = %q, want %q", af.Filename, "My CV.pdf")
	}
	if strings.Contains(af.Filename, `\`) {
		t.Error("filename still contains a path separator")
	}
}
