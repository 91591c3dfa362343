package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/http/middleware"
	"go.uber.org/zap"
)

const storedURLPrefix = "/api/files/"

var avatarExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// UserHandlers serves the profile and user administration routes
type UserHandlers struct {
	userSvc domain.UserService
	files   domain.FileStore
	logger  *zap.Logger
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(userSvc domain.UserService, files domain.FileStore, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{userSvc: userSvc, files: files, logger: logger.Named("users")}
}

// GetProfile returns the caller's profile
func (h *UserHandlers) GetProfile(c *gin.Context) {
	user, err := h.userSvc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		internalError(c, h.logger, "Get profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user, "success": true})
}

// UpdateProfile changes the caller's name and email
func (h *UserHandlers) UpdateProfile(c *gin.Context) {
	var upd domain.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		invalidBody(c)
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserID), upd)
	if err != nil {
		var rf *domain.RequiredFieldError
		switch {
		case errors.As(err, &rf):
			respondError(c, http.StatusBadRequest, rf.Error())
		case errors.Is(err, domain.ErrEmailInUse):
			respondError(c, http.StatusBadRequest, "Email already in use")
		case errors.Is(err, domain.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		default:
			internalError(c, h.logger, "Update profile", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    user,
		"success": true,
	})
}

// UploadAvatar stores an image and makes it the caller's avatar
func (h *UserHandlers) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		if bodyTooLarge(err) {
			respondTooLarge(c)
			return
		}
		respondError(c, http.StatusBadRequest, "No file provided")
		return
	}
	if !avatarExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
		respondError(c, http.StatusBadRequest, "Avatar must be a png, jpg, jpeg or gif image")
		return
	}

	f, err := fh.Open()
	if err != nil {
		internalError(c, h.logger, "Avatar upload", err)
		return
	}
	defer f.Close()

	stored, err := h.files.Save("avatars", fh.Filename, f)
	if err != nil {
		if !respondFileError(c, err) {
			internalError(c, h.logger, "Avatar upload", err)
		}
		return
	}

	var previous string
	if cur := middleware.CurrentUser(c); cur != nil {
		previous = cur.Avatar
	}

	user, err := h.userSvc.SetAvatar(c.Request.Context(), c.GetString(middleware.CtxUserID), stored.URL)
	if err != nil {
		h.removeStored(stored.URL)
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		internalError(c, h.logger, "Avatar upload", err)
		return
	}
	if previous != "" && previous != stored.URL {
		h.removeStored(previous)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Avatar updated successfully",
		"data":    user,
		"success": true,
	})
}

// removeStored deletes a file previously returned by the store. URLs the
// store did not issue, such as a provider photo, are left alone.
func (h *UserHandlers) removeStored(url string) {
	rel, ok := strings.CutPrefix(url, storedURLPrefix)
	if !ok || rel == "" {
		return
	}
	if err := h.files.Delete(rel); err != nil && !errors.Is(err, domain.ErrFileNotFound) {
		h.logger.Warn("stale avatar not removed", zap.String("file", rel), zap.Error(err))
	}
}

// ListUsers returns one page of users, optionally filtered by search
func (h *UserHandlers) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.userSvc.ListUsers(c.Request.Context(), domain.UserQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	})
	if err != nil {
		internalError(c, h.logger, "Get users", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       result.Users,
		"pagination": result.Pagination,
		"success":    true,
	})
}

// GetUser returns a single user
func (h *UserHandlers) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		internalError(c, h.logger, "Get user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user, "success": true})
}

// DeleteUser removes a user; the last active admin cannot be removed
func (h *UserHandlers) DeleteUser(c *gin.Context) {
	err := h.userSvc.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrLastAdmin):
			respondError(c, http.StatusBadRequest, "Cannot delete the last admin user")
		default:
			internalError(c, h.logger, "Delete user", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully", "success": true})
}
