package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/dmitrijs2005/gophbox/internal/server/models"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

type userResponse struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	StorageLimit int64  `json:"storage_limit"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type fileResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	CreatedAt time.Time `json:"created_at"`
}

type usageResponse struct {
	UserID            int64   `json:"user_id"`
	StorageUsed       int64   `json:"storage_used"`
	StorageLimit      int64   `json:"storage_limit"`
	StorageUsedHuman  string  `json:"storage_used_human"`
	StorageLimitHuman string  `json:"storage_limit_human"`
	Percent           float64 `json:"percent"`
	FileCount         int     `json:"file_count"`
}

func toFileResponse(f *models.File) fileResponse {
	return fileResponse{
		ID:        f.ID,
		Name:      f.OriginalName,
		Size:      f.SizeBytes,
		SizeHuman: humanize.IBytes(uint64(f.SizeBytes)),
		CreatedAt: f.CreatedAt,
	}
}

func (s *HTTPServer) healthz(c *gin.Context) {
	if err := s.health.Ping(c.Request.Context()); err != nil {
		s.logger.Warn(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		abortWithError(c, http.StatusBadRequest, "passwords do not match")
		return
	}

	u, err := s.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			abortWithError(c, http.StatusConflict, "username or email already exists")
			return
		}
		s.respondError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "username", u.UserName, "user_id", u.ID)
	c.JSON(http.StatusCreated, userResponse{
		ID: u.ID, Username: u.UserName, Email: u.Email, StorageLimit: u.StorageLimit,
	})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			abortWithError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{AccessToken: token, TokenType: "Bearer"})
}

func (s *HTTPServer) me(c *gin.Context) {
	userID, _ := userIDFromContext(c.Request.Context())

	u, err := s.files.Usage(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, usageResponse{
		UserID:            userID,
		StorageUsed:       u.StorageUsed,
		StorageLimit:      u.StorageLimit,
		StorageUsedHuman:  humanize.IBytes(uint64(u.StorageUsed)),
		StorageLimitHuman: humanize.IBytes(uint64(u.StorageLimit)),
		Percent:           u.Percent(),
		FileCount:         u.FileCount,
	})
}

func (s *HTTPServer) listFiles(c *gin.Context) {
	userID, _ := userIDFromContext(c.Request.Context())

	files, err := s.files.ListFiles(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]fileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toFileResponse(f))
	}
	c.JSON(http.StatusOK, gin.H{"files": out})
}

// uploadFile streams the multipart field "file" straight into the file
// service without buffering it in memory or on disk.
func (s *HTTPServer) uploadFile(c *gin.Context) {
	userID, _ := userIDFromContext(c.Request.Context())

	if s.opts.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadSize+multipartOverhead)
	}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "expected multipart/form-data")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			abortWithError(c, http.StatusBadRequest, "no file selected")
			return
		}
		if err != nil {
			if statusFor(err) == http.StatusRequestEntityTooLarge {
				s.respondError(c, err)
				return
			}
			abortWithError(c, http.StatusBadRequest, "malformed multipart body")
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		rec, err := s.files.Upload(c.Request.Context(), userID, part.FileName(), part)
		_ = part.Close()
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, toFileResponse(rec))
		return
	}
}

func (s *HTTPServer) downloadFile(c *gin.Context) {
	userID, _ := userIDFromContext(c.Request.Context())
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	d, err := s.files.Download(c.Request.Context(), userID, fileID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer d.Content.Close()

	contentType := mime.TypeByExtension(filepath.Ext(d.OriginalName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": d.OriginalName})
	if disposition == "" {
		disposition = "attachment"
	}

	c.DataFromReader(http.StatusOK, d.SizeBytes, contentType, d.Content, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (s *HTTPServer) deleteFile(c *gin.Context) {
	userID, _ := userIDFromContext(c.Request.Context())
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	if err := s.files.Delete(c.Request.Context(), userID, fileID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func fileIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid file id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
