package httpapi

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"hrms.org/internal/audit"
	"hrms.org/internal/auth"
	"hrms.org/internal/validation"
)

const uploadField = "file"

// uploadKind maps declared content types to the sniffed types that may back them.
type uploadKind struct {
	name     string
	declared map[string][]string
	reject   string
}

var (
	pictureUpload = uploadKind{
		name: "profile_picture",
		declared: map[string][]string{
			"image/jpeg": {"image/jpeg"},
			"image/jpg":  {"image/jpeg"},
			"image/png":  {"image/png"},
		},
		reject: "Invalid file type. Only JPG, JPEG, PNG allowed",
	}
	resumeUpload = uploadKind{
		name: "resume",
		declared: map[string][]string{
			"application/pdf":    {"application/pdf"},
			"application/msword": {"application/msword", "application/x-ole-storage"},
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				"application/zip",
			},
		},
		reject: "Invalid file type. Only PDF, DOC, DOCX allowed",
	}
)

type uploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (a *API) handleProfilePicture(w http.ResponseWriter, r *http.Request) {
	f, ok := a.readUpload(w, r, pictureUpload)
	if !ok {
		return
	}
	dataURL := "data:" + f.ContentType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
	if _, err := a.auth.SetProfilePicture(r.Context(), requester(r).ID, dataURL); err != nil {
		respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "upload.profile_picture", map[string]any{
		"content_type": f.ContentType,
		"bytes":        len(f.Data),
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Profile picture uploaded successfully",
		"file_data": dataURL,
	})
}

func (a *API) handleResume(w http.ResponseWriter, r *http.Request) {
	f, ok := a.readUpload(w, r, resumeUpload)
	if !ok {
		return
	}
	resume := auth.Resume{
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Data:        base64.StdEncoding.EncodeToString(f.Data),
	}
	if _, err := a.auth.SetResume(r.Context(), requester(r).ID, resume); err != nil {
		respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "upload.resume", map[string]any{
		"content_type": f.ContentType,
		"bytes":        len(f.Data),
	})
	writeJSON(w, http.StatusOK, message{Message: "Resume uploaded successfully"})
}

// readUpload extracts the multipart file field and checks its declared type,
// size and sniffed content. It writes the error response itself.
func (a *API) readUpload(w http.ResponseWriter, r *http.Request, kind uploadKind) (uploadedFile, bool) {
	if err := r.ParseMultipartForm(a.maxUpload); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "File too large")
			return uploadedFile{}, false
		}
		respondError(w, r, &validation.Error{Fields: []string{"multipart form with a file field is required"}})
		return uploadedFile{}, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		respondError(w, r, &validation.Error{Fields: []string{uploadField + " is required"}})
		return uploadedFile{}, false
	}
	defer file.Close()

	declared := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	accepted, ok := kind.declared[declared]
	if !ok {
		writeError(w, r, http.StatusBadRequest, kind.reject)
		return uploadedFile{}, false
	}

	data, err := io.ReadAll(io.LimitReader(file, a.maxUpload+1))
	if err != nil {
		respondError(w, r, err)
		return uploadedFile{}, false
	}
	if int64(len(data)) > a.maxUpload {
		writeError(w, r, http.StatusRequestEntityTooLarge, "File too large")
		return uploadedFile{}, false
	}
	if len(data) == 0 {
		writeError(w, r, http.StatusBadRequest, "File is empty")
		return uploadedFile{}, false
	}
	if !sniffedAs(mimetype.Detect(data), accepted) {
		_ = audit.LogEvent(r.Context(), "upload.rejected", map[string]any{
			"kind":     kind.name,
			"declared": declared,
		})
		writeError(w, r, http.StatusBadRequest, "File content does not match its declared type")
		return uploadedFile{}, false
	}
	return uploadedFile{
		Filename:    filepath.Base(header.Filename),
		ContentType: declared,
		Data:        data,
	}, true
}

// sniffedAs reports whether mt or one of its parents is an accepted type.
func sniffedAs(mt *mimetype.MIME, accepted []string) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, a := range accepted {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}
