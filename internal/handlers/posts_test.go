package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/mocks"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

func setupPostRouter(handler *PostHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Next()
	})
	r.POST("/posts", handler.CreatePost)
	r.GET("/posts/feed", handler.Feed)
	r.GET("/posts/:post_id", handler.GetPost)
	r.DELETE("/posts/:post_id", handler.DeletePost)
	r.POST("/posts/:post_id/like", handler.ToggleLike)
	r.POST("/posts/:post_id/comments", handler.AddComment)
	r.POST("/posts/comments/:comment_id/like", handler.ToggleCommentLike)
	return r
}

func TestCreatePostSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	notifications := new(mocks.NotificationRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, notifications, nil))

	posts.On("CreatePost", mock.Anything, testUserID, "first post", "", "", models.VisibilityPublic, []models.PostMedia{}).
		Return(models.Post{ID: 1, UserID: testUserID, Body: "first post", Visibility: models.VisibilityPublic}, nil).Once()
	users.On("BulkSummaries", mock.Anything, []string{testUserID}).
		Return([]models.UserSummary{{ID: testUserID, Username: "alice"}}, nil).Once()

	body := bytes.NewBufferString(`{"body":"first post"}`)
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Post.Author)
	assert.Equal(t, "alice", resp.Post.Author.Username)

	posts.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestCreatePostUnknownVisibility(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, new(mocks.NotificationRepositoryMock), nil))

	body := bytes.NewBufferString(`{"body":"first post","visibility":"everyone"}`)
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePostEmpty(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, new(mocks.NotificationRepositoryMock), nil))

	body := bytes.NewBufferString(`{"body":"  "}`)
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFeedPaginates(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, new(mocks.NotificationRepositoryMock), nil))

	posts.On("Feed", mock.Anything, testUserID, 2, 10).
		Return([]models.Post{{ID: 11, UserID: testOtherID, Body: "hi"}}, int64(21), nil).Once()
	users.On("BulkSummaries", mock.Anything, []string{testOtherID}).
		Return([]models.UserSummary{{ID: testOtherID, Username: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/posts/feed?page=2&page_size=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.EqualValues(t, 21, resp["total_count"])
	assert.EqualValues(t, 3, resp["total_pages"])

	posts.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestToggleLikeNotifiesAuthor(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	notifications := new(mocks.NotificationRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, notifications, nil))

	postID := int64(7)
	posts.On("ToggleLike", mock.Anything, postID, testUserID).Return(true, testOtherID, nil).Once()
	notifications.On("Create", mock.Anything, testOtherID, testUserID, models.NotificationLike, "liked your post", &postID).
		Return(models.Notification{ID: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/posts/7/like", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["liked"])

	posts.AssertExpectations(t)
	notifications.AssertExpectations(t)
}

func TestToggleLikeOwnPostSkipsNotification(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	notifications := new(mocks.NotificationRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, notifications, nil))

	posts.On("ToggleLike", mock.Anything, int64(7), testUserID).Return(true, testUserID, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/posts/7/like", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	posts.AssertExpectations(t)
}

func TestUnlikeSkipsNotification(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	notifications := new(mocks.NotificationRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, notifications, nil))

	posts.On("ToggleLike", mock.Anything, int64(7), testUserID).Return(false, testOtherID, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/posts/7/like", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	posts.AssertExpectations(t)
}

func TestAddCommentNotifiesAuthor(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	notifications := new(mocks.NotificationRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, notifications, nil))

	postID := int64(7)
	posts.On("AddComment", mock.Anything, postID, testUserID, "nice").
		Return(models.PostComment{ID: 3, PostID: postID, UserID: testUserID, Body: "nice"}, testOtherID, nil).Once()
	notifications.On("Create", mock.Anything, testOtherID, testUserID, models.NotificationComment, "commented on your post", &postID).
		Return(models.Notification{ID: 1}, nil).Once()
	users.On("BulkSummaries", mock.Anything, []string{testUserID}).
		Return([]models.UserSummary{{ID: testUserID, Username: "alice"}}, nil).Once()

	body := bytes.NewBufferString(`{"body":"nice"}`)
	req := httptest.NewRequest(http.MethodPost, "/posts/7/comments", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	posts.AssertExpectations(t)
	notifications.AssertExpectations(t)
}

func TestGetPostNotFound(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, new(mocks.NotificationRepositoryMock), nil))

	posts.On("GetPost", mock.Anything, int64(99), testUserID).Return(models.Post{}, repositories.ErrPostNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/posts/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	posts.AssertExpectations(t)
}

func TestDeletePostForbidden(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, new(mocks.NotificationRepositoryMock), nil))

	posts.On("DeletePost", mock.Anything, int64(7), testUserID).Return(repositories.ErrNotPostAuthor).Once()

	req := httptest.NewRequest(http.MethodDelete, "/posts/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	posts.AssertExpectations(t)
}

func TestToggleCommentLikeNotFound(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	posts := new(mocks.PostRepositoryMock)
	router := setupPostRouter(NewPostHandler(users, posts, new(mocks.NotificationRepositoryMock), nil))

	posts.On("ToggleCommentLike", mock.Anything, int64(4), testUserID).Return(false, repositories.ErrCommentNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/posts/comments/4/like", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	posts.AssertExpectations(t)
}
