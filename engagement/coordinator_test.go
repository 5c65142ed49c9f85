package engagement

import (
	"context"
	"errors"
	"testing"
	"time"

	"chirp/models"
	"chirp/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	coord         *Coordinator
	users         *store.MemoryUserStore
	posts         *store.MemoryPostStore
	notifications *store.MemoryNotificationStore
	notified      *recordingNotifier
}

type recordingNotifier struct {
	events []*models.Notification
}

func (r *recordingNotifier) Notify(n *models.Notification) {
	r.events = append(r.events, n)
}

func newFixture() *fixture {
	users := store.NewMemoryUserStore()
	posts := store.NewMemoryPostStore()
	notifications := store.NewMemoryNotificationStore()
	notified := &recordingNotifier{}
	return &fixture{
		coord:         New(users, posts, notifications, nil, notified),
		users:         users,
		posts:         posts,
		notifications: notifications,
		notified:      notified,
	}
}

func (f *fixture) seedUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:              primitive.NewObjectID(),
		Username:        username,
		FullName:        username,
		Email:           username + "@example.com",
		Followers:       []primitive.ObjectID{},
		Following:       []primitive.ObjectID{},
		LikedPosts:      []primitive.ObjectID{},
		BookmarkedPosts: []primitive.ObjectID{},
		CreatedAt:       time.Now().Unix(),
	}
	require.NoError(t, f.users.Insert(context.Background(), user))
	return user
}

func (f *fixture) seedPost(t *testing.T, authorID primitive.ObjectID, text string) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    authorID,
		Text:      text,
		Likes:     []primitive.ObjectID{},
		Bookmarks: []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: time.Now().Unix(),
	}
	require.NoError(t, f.posts.Insert(context.Background(), post))
	return post
}

func (f *fixture) notificationsFor(t *testing.T, to primitive.ObjectID) []models.Notification {
	t.Helper()
	list, err := f.notifications.ListFor(context.Background(), to, time.Now().Add(-models.NotificationTTL))
	require.NoError(t, err)
	return list
}

func TestToggleFollowRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")

	following, err := f.coord.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	aliceNow, _ := f.users.GetByID(ctx, alice.ID)
	bobNow, _ := f.users.GetByID(ctx, bob.ID)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, aliceNow.Following)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, bobNow.Followers)

	got := f.notificationsFor(t, bob.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationFollow, got[0].Type)
	assert.Equal(t, alice.ID, got[0].From)
	assert.Equal(t, bob.ID, got[0].To)
	assert.Len(t, f.notified.events, 1)

	// Toggling again unfollows and leaves the earlier notification alone.
	following, err = f.coord.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	aliceNow, _ = f.users.GetByID(ctx, alice.ID)
	bobNow, _ = f.users.GetByID(ctx, bob.ID)
	assert.Empty(t, aliceNow.Following)
	assert.Empty(t, bobNow.Followers)
	assert.Len(t, f.notificationsFor(t, bob.ID), 1)
}

func TestToggleFollowSelf(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")

	_, err := f.coord.ToggleFollow(ctx, alice.ID, alice.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidOperation, models.KindOf(err))

	aliceNow, _ := f.users.GetByID(ctx, alice.ID)
	assert.Empty(t, aliceNow.Following)
	assert.Empty(t, aliceNow.Followers)
	assert.Empty(t, f.notificationsFor(t, alice.ID))
}

func TestToggleFollowMissingUser(t *testing.T) {
	f := newFixture()
	alice := f.seedUser(t, "alice")

	_, err := f.coord.ToggleFollow(context.Background(), alice.ID, primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

// failingUserStore fails AddToSet on one field to simulate the second half
// of a two-sided write going down.
type failingUserStore struct {
	store.UserStore
	failField string
}

func (s *failingUserStore) AddToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	if field == s.failField {
		return models.NewDependencyError("store unavailable", errors.New("connection reset"))
	}
	return s.UserStore.AddToSet(ctx, id, field, value)
}

func TestToggleFollowPartialWriteSurfaces(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")

	coord := New(&failingUserStore{UserStore: f.users, failField: store.FieldFollowers}, f.posts, f.notifications, nil)

	_, err := coord.ToggleFollow(ctx, alice.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindDependency, models.KindOf(err))
	assert.Contains(t, err.Error(), "follow partially applied")

	// The actor-owned half was compensated, no dangling edge remains.
	aliceNow, _ := f.users.GetByID(ctx, alice.ID)
	bobNow, _ := f.users.GetByID(ctx, bob.ID)
	assert.Empty(t, aliceNow.Following)
	assert.Empty(t, bobNow.Followers)
	assert.Empty(t, f.notificationsFor(t, bob.ID))
}

func TestToggleLikeRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	post := f.seedPost(t, bob.ID, "hello")

	likes, err := f.coord.ToggleLike(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, likes)

	postNow, _ := f.posts.GetByID(ctx, post.ID)
	aliceNow, _ := f.users.GetByID(ctx, alice.ID)
	assert.True(t, postNow.HasLike(alice.ID))
	assert.Equal(t, []primitive.ObjectID{post.ID}, aliceNow.LikedPosts)

	got := f.notificationsFor(t, bob.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationLike, got[0].Type)
	require.NotNil(t, got[0].PostID)
	assert.Equal(t, post.ID, *got[0].PostID)

	// Unlike restores the original state on both sides.
	likes, err = f.coord.ToggleLike(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	postNow, _ = f.posts.GetByID(ctx, post.ID)
	aliceNow, _ = f.users.GetByID(ctx, alice.ID)
	assert.False(t, postNow.HasLike(alice.ID))
	assert.Empty(t, aliceNow.LikedPosts)
	assert.Len(t, f.notificationsFor(t, bob.ID), 1)
}

func TestToggleLikeBothSidesStayConsistent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	post := f.seedPost(t, bob.ID, "hello")

	for i := 0; i < 5; i++ {
		_, err := f.coord.ToggleLike(ctx, alice.ID, post.ID)
		require.NoError(t, err)

		postNow, _ := f.posts.GetByID(ctx, post.ID)
		aliceNow, _ := f.users.GetByID(ctx, alice.ID)
		inLikes := postNow.HasLike(alice.ID)
		inLiked := false
		for _, id := range aliceNow.LikedPosts {
			if id == post.ID {
				inLiked = true
			}
		}
		assert.Equal(t, inLikes, inLiked, "toggle %d left sides inconsistent", i)
	}
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bob := f.seedUser(t, "bob")
	post := f.seedPost(t, bob.ID, "hello")

	likes, err := f.coord.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, likes)
	assert.Empty(t, f.notificationsFor(t, bob.ID))
	assert.Empty(t, f.notified.events)
}

func TestToggleLikeMissingPost(t *testing.T) {
	f := newFixture()
	alice := f.seedUser(t, "alice")

	_, err := f.coord.ToggleLike(context.Background(), alice.ID, primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestToggleBookmark(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	post := f.seedPost(t, bob.ID, "hello")

	bookmarks, err := f.coord.ToggleBookmark(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, bookmarks)

	postNow, _ := f.posts.GetByID(ctx, post.ID)
	aliceNow, _ := f.users.GetByID(ctx, alice.ID)
	assert.True(t, postNow.HasBookmark(alice.ID))
	assert.Equal(t, []primitive.ObjectID{post.ID}, aliceNow.BookmarkedPosts)

	// Bookmarking never notifies.
	assert.Empty(t, f.notificationsFor(t, bob.ID))

	bookmarks, err = f.coord.ToggleBookmark(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)

	aliceNow, _ = f.users.GetByID(ctx, alice.ID)
	assert.Empty(t, aliceNow.BookmarkedPosts)
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	post := f.seedPost(t, bob.ID, "hello")

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := f.coord.AddComment(ctx, alice.ID, post.ID, text)
		require.Error(t, err)
		assert.Equal(t, models.KindValidation, models.KindOf(err))
	}

	postNow, _ := f.posts.GetByID(ctx, post.ID)
	assert.Empty(t, postNow.Comments)
}

func TestAddComment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	post := f.seedPost(t, bob.ID, "hello")

	comment, err := f.coord.AddComment(ctx, alice.ID, post.ID, "  nice post ")
	require.NoError(t, err)
	assert.Equal(t, "nice post", comment.Text)
	assert.Equal(t, alice.ID, comment.UserID)

	postNow, _ := f.posts.GetByID(ctx, post.ID)
	require.Len(t, postNow.Comments, 1)
	assert.Equal(t, comment.ID, postNow.Comments[0].ID)

	got := f.notificationsFor(t, bob.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationComment, got[0].Type)

	// Comments append in order.
	second, err := f.coord.AddComment(ctx, bob.ID, post.ID, "thanks")
	require.NoError(t, err)
	postNow, _ = f.posts.GetByID(ctx, post.ID)
	require.Len(t, postNow.Comments, 2)
	assert.Equal(t, second.ID, postNow.Comments[1].ID)

	// Self-comment by the author added no notification.
	assert.Len(t, f.notificationsFor(t, bob.ID), 1)
}

func TestDeleteCommentAuthority(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	carol := f.seedUser(t, "carol")
	post := f.seedPost(t, bob.ID, "hello")

	comment, err := f.coord.AddComment(ctx, alice.ID, post.ID, "first")
	require.NoError(t, err)

	// Neither comment author nor post author: forbidden, comment stays.
	err = f.coord.DeleteComment(ctx, carol.ID, post.ID, comment.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindForbidden, models.KindOf(err))
	postNow, _ := f.posts.GetByID(ctx, post.ID)
	assert.Len(t, postNow.Comments, 1)

	// Post author may delete someone else's comment.
	require.NoError(t, f.coord.DeleteComment(ctx, bob.ID, post.ID, comment.ID))
	postNow, _ = f.posts.GetByID(ctx, post.ID)
	assert.Empty(t, postNow.Comments)

	// Comment author may delete their own.
	comment, err = f.coord.AddComment(ctx, alice.ID, post.ID, "again")
	require.NoError(t, err)
	require.NoError(t, f.coord.DeleteComment(ctx, alice.ID, post.ID, comment.ID))

	err = f.coord.DeleteComment(ctx, bob.ID, post.ID, primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestRepost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	post := f.seedPost(t, bob.ID, "hello")

	repost, err := f.coord.Repost(ctx, alice.ID, post.ID, "nice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, repost.UserID)
	assert.True(t, repost.IsRepost)
	require.NotNil(t, repost.RepostOf)
	assert.Equal(t, post.ID, *repost.RepostOf)
	assert.Equal(t, "nice", repost.Text)

	got := f.notificationsFor(t, bob.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationRepost, got[0].Type)

	// Reposting a repost references the immediate parent only.
	chained, err := f.coord.Repost(ctx, bob.ID, repost.ID, "")
	require.NoError(t, err)
	assert.Equal(t, repost.ID, *chained.RepostOf)

	_, err = f.coord.Repost(ctx, alice.ID, primitive.NewObjectID(), "")
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestSelfRepostDoesNotNotify(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bob := f.seedUser(t, "bob")
	post := f.seedPost(t, bob.ID, "hello")

	_, err := f.coord.Repost(ctx, bob.ID, post.ID, "")
	require.NoError(t, err)
	assert.Empty(t, f.notificationsFor(t, bob.ID))
}
