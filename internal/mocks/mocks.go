package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"social-service/internal/models"
	"social-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)

func (m *UserRepositoryMock) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	args := m.Called(ctx, username, email, passwordHash)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByLogin(ctx context.Context, login string) (models.User, error) {
	args := m.Called(ctx, login)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	args := m.Called(ctx, userID, update)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	args := m.Called(ctx, query, limit)
	var users []models.UserSummary
	if val := args.Get(0); val != nil {
		users = val.([]models.UserSummary)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) BulkSummaries(ctx context.Context, userIDs []string) ([]models.UserSummary, error) {
	args := m.Called(ctx, userIDs)
	var users []models.UserSummary
	if val := args.Get(0); val != nil {
		users = val.([]models.UserSummary)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) Follow(ctx context.Context, followerID, followeeID string) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *UserRepositoryMock) Unfollow(ctx context.Context, followerID, followeeID string) error {
	args := m.Called(ctx, followerID, followeeID)
	return args.Error(0)
}

func (m *UserRepositoryMock) Followers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	args := m.Called(ctx, userID)
	var users []models.UserSummary
	if val := args.Get(0); val != nil {
		users = val.([]models.UserSummary)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) Following(ctx context.Context, userID string) ([]models.UserSummary, error) {
	args := m.Called(ctx, userID)
	var users []models.UserSummary
	if val := args.Get(0); val != nil {
		users = val.([]models.UserSummary)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) FollowCounts(ctx context.Context, userID string) (int64, int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type MessageRepositoryMock struct {
	mock.Mock
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, params repositories.CreateMessageParams) (models.Message, error) {
	args := m.Called(ctx, params)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) History(ctx context.Context, conversationID string, page, pageSize int) ([]models.Message, int64, error) {
	args := m.Called(ctx, conversationID, page, pageSize)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Get(1).(int64), args.Error(2)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, conversationID, readerID string) error {
	args := m.Called(ctx, conversationID, readerID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) ConversationsFor(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	var summaries []models.ConversationSummary
	if val := args.Get(0); val != nil {
		summaries = val.([]models.ConversationSummary)
	}
	return summaries, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int64, requesterID string) error {
	args := m.Called(ctx, messageID, requesterID)
	return args.Error(0)
}

type PostRepositoryMock struct {
	mock.Mock
}

var _ repositories.PostRepository = (*PostRepositoryMock)(nil)

func (m *PostRepositoryMock) CreatePost(ctx context.Context, userID, body, tags, location, visibility string, media []models.PostMedia) (models.Post, error) {
	args := m.Called(ctx, userID, body, tags, location, visibility, media)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) GetPost(ctx context.Context, postID int64, viewerID string) (models.Post, error) {
	args := m.Called(ctx, postID, viewerID)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) Feed(ctx context.Context, viewerID string, page, pageSize int) ([]models.Post, int64, error) {
	args := m.Called(ctx, viewerID, page, pageSize)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Get(1).(int64), args.Error(2)
}

func (m *PostRepositoryMock) PostsByUser(ctx context.Context, userID, viewerID string, page, pageSize int) ([]models.Post, int64, error) {
	args := m.Called(ctx, userID, viewerID, page, pageSize)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Get(1).(int64), args.Error(2)
}

func (m *PostRepositoryMock) SearchPosts(ctx context.Context, query string, limit int) ([]models.Post, error) {
	args := m.Called(ctx, query, limit)
	var posts []models.Post
	if val := args.Get(0); val != nil {
		posts = val.([]models.Post)
	}
	return posts, args.Error(1)
}

func (m *PostRepositoryMock) ToggleLike(ctx context.Context, postID int64, userID string) (bool, string, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *PostRepositoryMock) AddComment(ctx context.Context, postID int64, userID, body string) (models.PostComment, string, error) {
	args := m.Called(ctx, postID, userID, body)
	var comment models.PostComment
	if val := args.Get(0); val != nil {
		comment = val.(models.PostComment)
	}
	return comment, args.String(1), args.Error(2)
}

func (m *PostRepositoryMock) Comments(ctx context.Context, postID int64) ([]models.PostComment, error) {
	args := m.Called(ctx, postID)
	var comments []models.PostComment
	if val := args.Get(0); val != nil {
		comments = val.([]models.PostComment)
	}
	return comments, args.Error(1)
}

func (m *PostRepositoryMock) ToggleCommentLike(ctx context.Context, commentID int64, userID string) (bool, error) {
	args := m.Called(ctx, commentID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepositoryMock) DeletePost(ctx context.Context, postID int64, requesterID string) error {
	args := m.Called(ctx, postID, requesterID)
	return args.Error(0)
}

type StoryRepositoryMock struct {
	mock.Mock
}

var _ repositories.StoryRepository = (*StoryRepositoryMock)(nil)

func (m *StoryRepositoryMock) CreateStory(ctx context.Context, story models.Story) (models.Story, error) {
	args := m.Called(ctx, story)
	var stored models.Story
	if val := args.Get(0); val != nil {
		stored = val.(models.Story)
	}
	return stored, args.Error(1)
}

func (m *StoryRepositoryMock) GetStory(ctx context.Context, storyID int64) (models.Story, error) {
	args := m.Called(ctx, storyID)
	var story models.Story
	if val := args.Get(0); val != nil {
		story = val.(models.Story)
	}
	return story, args.Error(1)
}

func (m *StoryRepositoryMock) FeedFor(ctx context.Context, userID string) ([]models.Story, error) {
	args := m.Called(ctx, userID)
	var stories []models.Story
	if val := args.Get(0); val != nil {
		stories = val.([]models.Story)
	}
	return stories, args.Error(1)
}

func (m *StoryRepositoryMock) MarkViewed(ctx context.Context, storyID int64, viewerID string) error {
	args := m.Called(ctx, storyID, viewerID)
	return args.Error(0)
}

func (m *StoryRepositoryMock) DeleteStory(ctx context.Context, storyID int64, requesterID string) error {
	args := m.Called(ctx, storyID, requesterID)
	return args.Error(0)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)

func (m *NotificationRepositoryMock) Create(ctx context.Context, recipientID, senderID, kind, body string, postID *int64) (models.Notification, error) {
	args := m.Called(ctx, recipientID, senderID, kind, body, postID)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) ListForUser(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (repositories.NotificationPage, error) {
	args := m.Called(ctx, userID, page, pageSize, unreadOnly)
	var result repositories.NotificationPage
	if val := args.Get(0); val != nil {
		result = val.(repositories.NotificationPage)
	}
	return result, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, notificationID int64, recipientID string) (models.Notification, error) {
	args := m.Called(ctx, notificationID, recipientID)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) Delete(ctx context.Context, notificationID int64, recipientID string) error {
	args := m.Called(ctx, notificationID, recipientID)
	return args.Error(0)
}
