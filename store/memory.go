package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory implementations used by the engagement tests. They mirror the
// Mongo $addToSet/$pull semantics on the same field names.

type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func copyIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Followers = copyIDs(u.Followers)
	c.Following = copyIDs(u.Following)
	c.LikedPosts = copyIDs(u.LikedPosts)
	c.BookmarkedPosts = copyIDs(u.BookmarkedPosts)
	return &c
}

func (s *MemoryUserStore) userSet(u *models.User, field string) *[]primitive.ObjectID {
	switch field {
	case FieldFollowers:
		return &u.Followers
	case FieldFollowing:
		return &u.Following
	case FieldLikedPosts:
		return &u.LikedPosts
	case FieldBookmarkedPosts:
		return &u.BookmarkedPosts
	}
	return nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User")
	}
	return copyUser(u), nil
}

func (s *MemoryUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, models.NewNotFoundError("User")
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryUserStore) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (s *MemoryUserStore) Insert(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return models.NewConflictError("Username or email already taken")
		}
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *MemoryUserStore) UpdateFields(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.NewNotFoundError("User")
	}
	for field, value := range set {
		str, _ := value.(string)
		switch field {
		case "fullName":
			u.FullName = str
		case "email":
			u.Email = str
		case "username":
			u.Username = str
		case "password":
			u.PasswordHash = str
		case "bio":
			u.Bio = str
		case "link":
			u.Link = str
		case "profileImg":
			u.ProfileImg = str
		case "coverImg":
			u.CoverImg = str
		}
	}
	return nil
}

func (s *MemoryUserStore) AddToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.NewNotFoundError("User")
	}
	set := s.userSet(u, field)
	for _, v := range *set {
		if v == value {
			return nil
		}
	}
	*set = append(*set, value)
	return nil
}

func (s *MemoryUserStore) Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.NewNotFoundError("User")
	}
	set := s.userSet(u, field)
	out := (*set)[:0]
	for _, v := range *set {
		if v != value {
			out = append(out, v)
		}
	}
	*set = out
	return nil
}

func (s *MemoryUserStore) Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	excluded := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var out []models.User
	for _, u := range s.users {
		if !excluded[u.ID] {
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type MemoryPostStore struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*models.Post
}

func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{posts: make(map[primitive.ObjectID]*models.Post)}
}

func copyPost(p *models.Post) *models.Post {
	c := *p
	c.Likes = copyIDs(p.Likes)
	c.Bookmarks = copyIDs(p.Bookmarks)
	c.Comments = make([]models.Comment, len(p.Comments))
	copy(c.Comments, p.Comments)
	if p.RepostOf != nil {
		id := *p.RepostOf
		c.RepostOf = &id
	}
	return &c
}

func (s *MemoryPostStore) postSet(p *models.Post, field string) *[]primitive.ObjectID {
	switch field {
	case FieldLikes:
		return &p.Likes
	case FieldBookmarks:
		return &p.Bookmarks
	}
	return nil
}

func (s *MemoryPostStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post")
	}
	return copyPost(p), nil
}

func (s *MemoryPostStore) Insert(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = copyPost(post)
	return nil
}

func (s *MemoryPostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return models.NewNotFoundError("Post")
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryPostStore) AddToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return models.NewNotFoundError("Post")
	}
	set := s.postSet(p, field)
	for _, v := range *set {
		if v == value {
			return nil
		}
	}
	*set = append(*set, value)
	return nil
}

func (s *MemoryPostStore) Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return models.NewNotFoundError("Post")
	}
	set := s.postSet(p, field)
	out := (*set)[:0]
	for _, v := range *set {
		if v != value {
			out = append(out, v)
		}
	}
	*set = out
	return nil
}

func (s *MemoryPostStore) PushComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return models.NewNotFoundError("Post")
	}
	p.Comments = append(p.Comments, comment)
	return nil
}

func (s *MemoryPostStore) PullComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return models.NewNotFoundError("Post")
	}
	out := p.Comments[:0]
	for _, c := range p.Comments {
		if c.ID != commentID {
			out = append(out, c)
		}
	}
	p.Comments = out
	return nil
}

func (s *MemoryPostStore) ListAll(ctx context.Context) ([]models.Post, error) {
	return s.listWhere(func(p *models.Post) bool { return true }), nil
}

func (s *MemoryPostStore) ListByAuthors(ctx context.Context, authorIDs []primitive.ObjectID) ([]models.Post, error) {
	wanted := make(map[primitive.ObjectID]bool, len(authorIDs))
	for _, id := range authorIDs {
		wanted[id] = true
	}
	return s.listWhere(func(p *models.Post) bool { return wanted[p.UserID] }), nil
}

func (s *MemoryPostStore) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return s.listWhere(func(p *models.Post) bool { return wanted[p.ID] }), nil
}

func (s *MemoryPostStore) listWhere(match func(*models.Post) bool) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Post{}
	for _, p := range s.posts {
		if match(p) {
			out = append(out, *copyPost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

type MemoryNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{}
}

func (s *MemoryNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *MemoryNotificationStore) ListFor(ctx context.Context, to primitive.ObjectID, cutoff time.Time) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.To == to && n.CreatedAt.After(cutoff) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryNotificationStore) DeleteAllFor(ctx context.Context, to primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications[:0]
	for _, n := range s.notifications {
		if n.To != to {
			out = append(out, n)
		}
	}
	s.notifications = out
	return nil
}

func (s *MemoryNotificationStore) DeleteOneFor(ctx context.Context, id, to primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id && n.To == to {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type MemorySubscriptionStore struct {
	mu   sync.Mutex
	subs []models.PushSubscription
}

func NewMemorySubscriptionStore() *MemorySubscriptionStore {
	return &MemorySubscriptionStore{}
}

func (s *MemorySubscriptionStore) Insert(ctx context.Context, sub *models.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, *sub)
	return nil
}

func (s *MemorySubscriptionStore) ListFor(ctx context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PushSubscription{}
	for _, sub := range s.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}
