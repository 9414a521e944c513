package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"picframe/internal/frame"
)

type imagesResponse struct {
	Images       []*frame.ImageSummary `json:"images"`
	CurrentImage *string               `json:"current_image"`
}

type usersResponse struct {
	Users []*frame.UserSummary `json:"users"`
}

type setNameRequest struct {
	Name string `json:"name"`
}

type setNameResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
	IP      string `json:"ip"`
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	Filename   string `json:"filename"`
	Message    string `json:"message"`
	UploaderIP string `json:"uploader_ip"`
}

type rotateResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type historyEvent struct {
	ID         string     `json:"id"`
	Filename   string     `json:"filename"`
	Trigger    string     `json:"trigger"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

type historyResponse struct {
	Events []historyEvent `json:"events"`
}

const defaultHistoryLimit = 50

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.svc.ListImages(r.URL.Query().Get("user"))
	if err != nil {
		s.writeFrameError(w, r, err, "")
		return
	}
	current, err := s.svc.CurrentImage()
	if err != nil {
		s.writeFrameError(w, r, err, "")
		return
	}

	resp := imagesResponse{Images: images}
	if current != "" {
		resp.CurrentImage = &current
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers()
	if err != nil {
		s.writeFrameError(w, r, err, "")
		return
	}
	if users == nil {
		users = []*frame.UserSummary{}
	}
	s.writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

func (s *Server) handleSetName(w http.ResponseWriter, r *http.Request) {
	var req setNameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	addr := s.clientAddress(r)
	name, err := s.svc.SetDisplayName(addr, req.Name)
	if err != nil {
		s.writeFrameError(w, r, err, "")
		return
	}
	s.writeJSON(w, http.StatusOK, setNameResponse{Success: true, Name: name, IP: addr})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, http.ErrMissingFile):
			s.writeError(w, http.StatusBadRequest, "No file provided")
		default:
			s.writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		}
		return
	}
	defer file.Close()

	addr := s.clientAddress(r)
	filename, err := s.svc.Upload(header.Filename, addr, file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		s.writeFrameError(w, r, err, "Failed to store upload")
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Success:    true,
		Filename:   filename,
		Message:    "Image uploaded successfully",
		UploaderIP: addr,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	filename := frame.SecureFilename(r.PathValue("filename"))
	if err := s.svc.Delete(filename); err != nil {
		s.writeFrameError(w, r, err, "")
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Image deleted"})
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	filename := frame.SecureFilename(r.PathValue("filename"))
	if err := s.svc.Display(r.Context(), filename); err != nil {
		s.writeFrameError(w, r, err, "Failed to display image")
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Image displayed"})
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	filename, err := s.svc.Rotate(r.Context())
	if err != nil {
		s.writeFrameError(w, r, err, "Failed to display image")
		return
	}
	s.writeJSON(w, http.StatusOK, rotateResponse{Success: true, Filename: filename})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	events, err := s.svc.GetHistory(limit)
	if err != nil {
		s.writeFrameError(w, r, err, "")
		return
	}

	resp := historyResponse{Events: make([]historyEvent, len(events))}
	for i, e := range events {
		resp.Events[i] = historyEvent{
			ID:        e.ID,
			Filename:  e.Filename,
			Trigger:   e.Trigger,
			Status:    e.Status,
			Error:     e.Error,
			StartedAt: e.StartedAt,
		}
		if e.FinishedAt.Valid {
			finished := e.FinishedAt.Time
			resp.Events[i].FinishedAt = &finished
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUploadedFile(w http.ResponseWriter, r *http.Request) {
	rc, info, err := s.svc.OpenImage(r.PathValue("filename"))
	if err != nil {
		s.writeFrameError(w, r, err, "")
		return
	}
	defer rc.Close()

	if ctype := mime.TypeByExtension(filepath.Ext(info.Name)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("serving image interrupted", "filename", info.Name, "error", err)
	}
}
