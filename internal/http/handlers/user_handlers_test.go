package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/http/middleware"
	"github.com/you/emrsvc/internal/mocks"
	"go.uber.org/zap"
)

func multipartRequest(t *testing.T, target, field, filename string, content []byte, extra map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUserHandlers_UpdateProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		updateErr      error
		expectedStatus int
		expectedBody   map[string]interface{}
	}{
		{"profile updated", nil, http.StatusOK, map[string]interface{}{"message": "Profile updated successfully", "data": map[string]interface{}{"firstName": "Jane"}}},
		{"email taken", domain.ErrEmailInUse, http.StatusBadRequest, map[string]interface{}{"message": "Email already in use"}},
		{"blank name", &domain.RequiredFieldError{Field: "firstName"}, http.StatusBadRequest, map[string]interface{}{"message": "firstName is required"}},
		{"user gone", domain.ErrUserNotFound, http.StatusNotFound, map[string]interface{}{"message": "User not found"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userSvc := mocks.NewMockUserService()
			if tt.updateErr != nil {
				userSvc.UpdateProfileFunc = func(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.User, error) {
					return nil, tt.updateErr
				}
			}
			handler := NewUserHandlers(userSvc, mocks.NewMockFileStore(), zap.NewNop())

			req := newJSONRequest(t, http.MethodPut, "/api/users/profile", map[string]string{"firstName": "Jane"})
			w := serve(http.MethodPut, "/api/users/profile", req, withUser("user-1", domain.RoleUser), handler.UpdateProfile)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assertBody(t, w, tt.expectedBody)
		})
	}
}

func TestUserHandlers_GetProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewUserHandlers(mocks.NewMockUserService(), mocks.NewMockFileStore(), zap.NewNop())

	req := newJSONRequest(t, http.MethodGet, "/api/users/profile", nil)
	w := serve(http.MethodGet, "/api/users/profile", req, withUser("user-7", domain.RoleUser), handler.GetProfile)

	assert.Equal(t, http.StatusOK, w.Code)
	assertBody(t, w, map[string]interface{}{"data": map[string]interface{}{"id": "user-7"}, "success": true})
}

func TestUserHandlers_ListUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userSvc := mocks.NewMockUserService()
	var got domain.UserQuery
	userSvc.ListUsersFunc = func(ctx context.Context, q domain.UserQuery) (*domain.UserPage, error) {
		got = q
		return &domain.UserPage{
			Users:      []*domain.User{createTestUserForHandler("user-1", domain.RoleUser)},
			Pagination: domain.Pagination{Page: 2, Limit: 5, Total: 6, TotalPages: 2},
		}, nil
	}
	handler := NewUserHandlers(userSvc, mocks.NewMockFileStore(), zap.NewNop())

	req := newJSONRequest(t, http.MethodGet, "/api/users?page=2&limit=5&search=Jan", nil)
	w := serve(http.MethodGet, "/api/users", req, withUser("user-1", domain.RoleUser), handler.ListUsers)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.UserQuery{Page: 2, Limit: 5, Search: "Jan"}, got)
	body := decode(t, w)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, map[string]interface{}{
		"page": float64(2), "limit": float64(5), "total": float64(6), "totalPages": float64(2),
	}, body["pagination"])
	assert.Equal(t, true, body["success"])
}

func TestUserHandlers_DeleteUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		deleteErr      error
		expectedStatus int
		expectedBody   map[string]interface{}
	}{
		{"user deleted", nil, http.StatusOK, map[string]interface{}{"message": "User deleted successfully"}},
		{"last admin", domain.ErrLastAdmin, http.StatusBadRequest, map[string]interface{}{"message": "Cannot delete the last admin user"}},
		{"unknown user", domain.ErrUserNotFound, http.StatusNotFound, map[string]interface{}{"message": "User not found"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userSvc := mocks.NewMockUserService()
			var deleted string
			userSvc.DeleteUserFunc = func(ctx context.Context, userID string) error {
				deleted = userID
				return tt.deleteErr
			}
			handler := NewUserHandlers(userSvc, mocks.NewMockFileStore(), zap.NewNop())

			req := newJSONRequest(t, http.MethodDelete, "/api/users/user-9", nil)
			w := serve(http.MethodDelete, "/api/users/:id", req, withUser("admin-1", domain.RoleAdmin), handler.DeleteUser)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "user-9", deleted)
			assertBody(t, w, tt.expectedBody)
		})
	}
}

func TestUserHandlers_UploadAvatar(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("image stored and set", func(t *testing.T) {
		files := mocks.NewMockFileStore()
		var folder string
		files.SaveFunc = func(f, name string, r io.Reader) (*domain.StoredFile, error) {
			folder = f
			return &domain.StoredFile{URL: "/api/files/avatars/abc_me.png", Filename: "abc_me.png"}, nil
		}
		userSvc := mocks.NewMockUserService()
		var avatar string
		userSvc.SetAvatarFunc = func(ctx context.Context, userID, url string) (*domain.User, error) {
			avatar = url
			u := createTestUserForHandler(userID, domain.RoleUser)
			u.Avatar = url
			return u, nil
		}
		handler := NewUserHandlers(userSvc, files, zap.NewNop())

		req := multipartRequest(t, "/api/users/avatar", "avatar", "me.png", []byte("\x89PNG\r\n\x1a\n"), nil)
		w := serve(http.MethodPost, "/api/users/avatar", req, withUser("user-1", domain.RoleUser), handler.UploadAvatar)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "avatars", folder)
		assert.Equal(t, "/api/files/avatars/abc_me.png", avatar)
		assertBody(t, w, map[string]interface{}{"data": map[string]interface{}{"avatar": "/api/files/avatars/abc_me.png"}})
	})

	t.Run("previous avatar removed", func(t *testing.T) {
		files := mocks.NewMockFileStore()
		var deleted []string
		files.DeleteFunc = func(relPath string) error {
			deleted = append(deleted, relPath)
			return nil
		}
		handler := NewUserHandlers(mocks.NewMockUserService(), files, zap.NewNop())

		req := multipartRequest(t, "/api/users/avatar", "avatar", "me.png", []byte("\x89PNG\r\n\x1a\n"), nil)
		w := serve(http.MethodPost, "/api/users/avatar", req,
			withAvatar("user-1", "/api/files/avatars/old_me.png"), handler.UploadAvatar)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"avatars/old_me.png"}, deleted)
	})

	t.Run("provider photo left alone", func(t *testing.T) {
		files := mocks.NewMockFileStore()
		var deleted []string
		files.DeleteFunc = func(relPath string) error {
			deleted = append(deleted, relPath)
			return nil
		}
		handler := NewUserHandlers(mocks.NewMockUserService(), files, zap.NewNop())

		req := multipartRequest(t, "/api/users/avatar", "avatar", "me.png", []byte("\x89PNG\r\n\x1a\n"), nil)
		w := serve(http.MethodPost, "/api/users/avatar", req,
			withAvatar("user-1", "https://lh3.googleusercontent.com/a/photo.jpg"), handler.UploadAvatar)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, deleted)
	})

	t.Run("stored file removed when avatar update fails", func(t *testing.T) {
		files := mocks.NewMockFileStore()
		files.SaveFunc = func(f, name string, r io.Reader) (*domain.StoredFile, error) {
			return &domain.StoredFile{URL: "/api/files/avatars/new_me.png", Filename: "new_me.png"}, nil
		}
		var deleted []string
		files.DeleteFunc = func(relPath string) error {
			deleted = append(deleted, relPath)
			return nil
		}
		userSvc := mocks.NewMockUserService()
		userSvc.SetAvatarFunc = func(ctx context.Context, userID, url string) (*domain.User, error) {
			return nil, errors.New("db down")
		}
		handler := NewUserHandlers(userSvc, files, zap.NewNop())

		req := multipartRequest(t, "/api/users/avatar", "avatar", "me.png", []byte("\x89PNG\r\n\x1a\n"), nil)
		w := serve(http.MethodPost, "/api/users/avatar", req,
			withAvatar("user-1", "/api/files/avatars/old_me.png"), handler.UploadAvatar)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, []string{"avatars/new_me.png"}, deleted, "the previous avatar must survive a failed update")
	})

	t.Run("non image rejected", func(t *testing.T) {
		handler := NewUserHandlers(mocks.NewMockUserService(), mocks.NewMockFileStore(), zap.NewNop())
		req := multipartRequest(t, "/api/users/avatar", "avatar", "cv.pdf", []byte("%PDF-1.4"), nil)
		w := serve(http.MethodPost, "/api/users/avatar", req, withUser("user-1", domain.RoleUser), handler.UploadAvatar)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no file", func(t *testing.T) {
		handler := NewUserHandlers(mocks.NewMockUserService(), mocks.NewMockFileStore(), zap.NewNop())
		req := multipartRequest(t, "/api/users/avatar", "", "", nil, map[string]string{"note": "x"})
		w := serve(http.MethodPost, "/api/users/avatar", req, withUser("user-1", domain.RoleUser), handler.UploadAvatar)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertBody(t, w, map[string]interface{}{"message": "No file provided"})
	})
}

func withAvatar(userID, avatar string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := createTestUserForHandler(userID, domain.RoleUser)
		u.Avatar = avatar
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxUserRole, domain.RoleUser)
		c.Set(middleware.CtxUser, u)
		c.Next()
	}
}
