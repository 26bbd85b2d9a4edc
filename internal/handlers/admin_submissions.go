// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"hirexfed/internal/intake"
	"hirexfed/internal/models"
	"hirexfed/internal/render"
	"hirexfed/internal/store"
)

// submissionListLimit caps the submissions list page.
const submissionListLimit = 200

// SubmissionsList renders submissions filtered by form, status and email.
func (a *Admin) SubmissionsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := store.SubmissionFilter{
		Email: formQuery(q.Get("q")),
		Limit: submissionListLimit,
	}
	formParam := q.Get("form")
	if id, err := uuid.Parse(formParam); err == nil {
		filter.FormID = id
	} else {
		formParam = ""
	}
	statusParam := q.Get("status")
	if models.ValidStatus(statusParam) {
		filter.Status = models.SubmissionStatus(statusParam)
	} else {
		statusParam = ""
	}

	items, err := a.stores.Submissions.List(ctx, filter)
	if err != nil {
		slog.Error("list submissions failed", "error", err)
	}
	forms, err := a.stores.Forms.List(ctx)
	if err != nil {
		slog.Error("list forms failed", "error", err)
	}

	a.page(w, r, "submissions_list", &render.PageData{
		Title:   "Submissions",
		Section: "submissions",
		Data: map[string]any{
			"Items":        items,
			"Forms":        forms,
			"Statuses":     models.SubmissionStatuses,
			"FilterForm":   formParam,
			"FilterStatus": statusParam,
			"Query":        filter.Email,
		},
	})
}

// formQuery trims a search query and caps its length.
func formQuery(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxShortLen {
		s = s[:maxShortLen]
	}
	return s
}

// loadSubmission returns the submission named by the "id" URL parameter.
// It writes 400, 404 or 500 and returns nil when it cannot be loaded.
func (a *Admin) loadSubmission(w http.ResponseWriter, r *http.Request) *models.IntakeSubmission {
	id, ok := urlID(w, r, "id")
	if !ok {
		return nil
	}
	sub, err := a.stores.Submissions.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("load submission failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if sub == nil {
		http.NotFound(w, r)
		return nil
	}
	return sub
}

// SubmissionDetail renders a submission's answers, files and workflow.
func (a *Admin) SubmissionDetail(w http.ResponseWriter, r *http.Request) {
	sub := a.loadSubmission(w, r)
	if sub == nil {
		return
	}
	a.renderSubmission(w, r, http.StatusOK, sub, "")
}

func (a *Admin) renderSubmission(w http.ResponseWriter, r *http.Request, status int, sub *models.IntakeSubmission, errMsg string) {
	ctx := r.Context()
	fields, err := a.stores.Forms.Fields(ctx, sub.FormID)
	if err != nil {
		slog.Error("list form fields failed", "error", err)
	}
	files, err := a.stores.Files.ListBySubmission(ctx, sub.ID)
	if err != nil {
		slog.Error("list submission files failed", "error", err)
	}
	users, err := a.stores.Users.List(ctx)
	if err != nil {
		slog.Error("list users failed", "error", err)
	}

	data := &render.PageData{
		Title:   "Submission",
		Section: "submissions",
		Data: map[string]any{
			"Item":       sub,
			"Answers":    sub.Answers(fields),
			"Files":      files,
			"Statuses":   models.SubmissionStatuses,
			"Priorities": models.Priorities,
			"Users":      users,
			"Error":      errMsg,
		},
	}
	a.pageStatus(w, r, status, "submission_detail", data)
}

// SubmissionUpdate saves the workflow fields of a submission.
func (a *Admin) SubmissionUpdate(w http.ResponseWriter, r *http.Request) {
	sub := a.loadSubmission(w, r)
	if sub == nil {
		return
	}

	status := formValue(r, "status")
	priority := formValue(r, "priority")
	notes := formValue(r, "notes")
	contacted, errContacted := formDate(r, "contacted_at")
	followUp, errFollowUp := formDate(r, "follow_up_at")

	errMsg := ""
	switch {
	case !models.ValidStatus(status):
		errMsg = "Invalid status."
	case !models.ValidPriority(priority):
		errMsg = "Invalid priority."
	case errContacted != nil || errFollowUp != nil:
		errMsg = "Dates must be in YYYY-MM-DD format."
	case tooLong(notes, maxNotesLen):
		errMsg = "Notes are limited to " + strconv.Itoa(maxNotesLen) + " characters."
	}
	if errMsg != "" {
		a.renderSubmission(w, r, http.StatusUnprocessableEntity, sub, errMsg)
		return
	}

	assignee := formUUID(r, "assigned_to")
	if assignee != nil {
		u, err := a.stores.Users.FindByID(r.Context(), *assignee)
		if err != nil {
			slog.Error("load assignee failed", "error", err)
		}
		if u == nil {
			a.renderSubmission(w, r, http.StatusUnprocessableEntity, sub, "Unknown assignee.")
			return
		}
	}

	sub.Status = models.SubmissionStatus(status)
	sub.Priority = models.Priority(priority)
	sub.AssignedTo = assignee
	sub.ContactedAt = contacted
	sub.FollowUpAt = followUp
	sub.Notes = notes

	if err := a.stores.Submissions.UpdateWorkflow(r.Context(), sub); err != nil {
		slog.Error("update submission failed", "error", err, "id", sub.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("submission updated", "id", sub.ID, "status", sub.Status, "priority", sub.Priority)
	a.redirect(w, r, "/admin/submissions/"+sub.ID.String(), "Submission updated.")
}

// SubmissionDelete removes a submission and its files.
func (a *Admin) SubmissionDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	err := a.intake.DeleteSubmission(r.Context(), id)
	if errors.Is(err, intake.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("delete submission failed", "error", err, "id", id)
		a.flash(w, r, "error", "Failed to delete the submission.")
		http.Redirect(w, r, "/admin/submissions/"+id.String(), http.StatusSeeOther)
		return
	}
	slog.Info("submission deleted", "id", id)
	a.redirect(w, r, "/admin/submissions", "Submission deleted.")
}

// --- Files ---

// FilePreview streams an uploaded document for display in the browser.
func (a *Admin) FilePreview(w http.ResponseWriter, r *http.Request) {
	a.serveFile(w, r, "inline")
}

// FileDownload streams an uploaded document as an attachment.
func (a *Admin) FileDownload(w http.ResponseWriter, r *http.Request) {
	a.serveFile(w, r, "attachment")
}

func (a *Admin) serveFile(w http.ResponseWriter, r *http.Request, disposition string) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	f, obj, err := a.intake.OpenFile(r.Context(), id)
	if errors.Is(err, intake.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("open file failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer obj.Body.Close()

	// Only previewable types are shown inline; the rest always download.
	if disposition == "inline" && !f.IsPreviewable() {
		disposition = "attachment"
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": f.OriginalFilename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, no-store")
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		slog.Warn("stream file failed", "error", err, "id", id)
	}
}

// FileDelete removes an uploaded document and returns to its submission.
func (a *Admin) FileDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	f, err := a.stores.Files.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("load file failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if f == nil {
		http.NotFound(w, r)
		return
	}
	back := "/admin/submissions/" + f.SubmissionID.String()
	if err := a.intake.DeleteFile(r.Context(), id); err != nil && !errors.Is(err, intake.ErrNotFound) {
		slog.Error("delete file failed", "error", err, "id", id)
		a.flash(w, r, "error", "Failed to delete the file.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	slog.Info("intake file deleted", "id", id, "submission_id", f.SubmissionID)
	a.redirect(w, r, back, "File deleted.")
}
