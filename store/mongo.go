package store

import (
	"context"
	"time"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(coll *mongo.Collection) UserStore {
	return &mongoUserStore{coll: coll}
}

func (s *mongoUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("User")
	}
	if err != nil {
		return nil, models.NewDependencyError("failed to load user", err)
	}
	return &user, nil
}

func (s *mongoUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("User")
	}
	if err != nil {
		return nil, models.NewDependencyError("failed to load user", err)
	}
	return &user, nil
}

func (s *mongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewDependencyError("failed to load user", err)
	}
	return &user, nil
}

func (s *mongoUserStore) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, models.NewDependencyError("failed to load users", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, models.NewDependencyError("failed to decode users", err)
	}
	return users, nil
}

func (s *mongoUserStore) Insert(ctx context.Context, user *models.User) error {
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewDependencyError("failed to create user", err)
	}
	return nil
}

func (s *mongoUserStore) UpdateFields(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(set)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewDependencyError("failed to update user", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("User")
	}
	return nil
}

func (s *mongoUserStore) AddToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{field: value}})
	if err != nil {
		return models.NewDependencyError("failed to update user", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("User")
	}
	return nil
}

func (s *mongoUserStore) Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{field: value}})
	if err != nil {
		return models.NewDependencyError("failed to update user", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("User")
	}
	return nil
}

func (s *mongoUserStore) Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	filter := bson.M{"_id": bson.M{"$nin": exclude}}
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewDependencyError("failed to load suggested users", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, models.NewDependencyError("failed to decode users", err)
	}
	return users, nil
}

type mongoPostStore struct {
	coll *mongo.Collection
}

func NewMongoPostStore(coll *mongo.Collection) PostStore {
	return &mongoPostStore{coll: coll}
}

func (s *mongoPostStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("Post")
	}
	if err != nil {
		return nil, models.NewDependencyError("failed to load post", err)
	}
	return &post, nil
}

func (s *mongoPostStore) Insert(ctx context.Context, post *models.Post) error {
	if _, err := s.coll.InsertOne(ctx, post); err != nil {
		return models.NewDependencyError("failed to create post", err)
	}
	return nil
}

func (s *mongoPostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NewDependencyError("failed to delete post", err)
	}
	if result.DeletedCount == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

func (s *mongoPostStore) AddToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{field: value}})
	if err != nil {
		return models.NewDependencyError("failed to update post", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

func (s *mongoPostStore) Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{field: value}})
	if err != nil {
		return models.NewDependencyError("failed to update post", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

func (s *mongoPostStore) PushComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return models.NewDependencyError("failed to add comment", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

func (s *mongoPostStore) PullComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
	if err != nil {
		return models.NewDependencyError("failed to remove comment", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

func (s *mongoPostStore) ListAll(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, bson.M{})
}

func (s *mongoPostStore) ListByAuthors(ctx context.Context, authorIDs []primitive.ObjectID) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	return s.list(ctx, bson.M{"userId": bson.M{"$in": authorIDs}})
}

func (s *mongoPostStore) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	return s.list(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *mongoPostStore) list(ctx context.Context, filter bson.M) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewDependencyError("failed to load posts", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, models.NewDependencyError("failed to decode posts", err)
	}
	return posts, nil
}

type mongoNotificationStore struct {
	coll *mongo.Collection
}

func NewMongoNotificationStore(coll *mongo.Collection) NotificationStore {
	return &mongoNotificationStore{coll: coll}
}

func (s *mongoNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return models.NewDependencyError("failed to create notification", err)
	}
	return nil
}

func (s *mongoNotificationStore) ListFor(ctx context.Context, to primitive.ObjectID, cutoff time.Time) ([]models.Notification, error) {
	// The TTL index purges expired documents eventually; the cutoff filter
	// keeps them out of reads in the meantime.
	filter := bson.M{"to": to, "createdAt": bson.M{"$gt": cutoff}}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewDependencyError("failed to load notifications", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, models.NewDependencyError("failed to decode notifications", err)
	}
	return notifications, nil
}

func (s *mongoNotificationStore) DeleteAllFor(ctx context.Context, to primitive.ObjectID) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"to": to}); err != nil {
		return models.NewDependencyError("failed to delete notifications", err)
	}
	return nil
}

func (s *mongoNotificationStore) DeleteOneFor(ctx context.Context, id, to primitive.ObjectID) (bool, error) {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "to": to})
	if err != nil {
		return false, models.NewDependencyError("failed to delete notification", err)
	}
	return result.DeletedCount > 0, nil
}

type mongoSubscriptionStore struct {
	coll *mongo.Collection
}

func NewMongoSubscriptionStore(coll *mongo.Collection) SubscriptionStore {
	return &mongoSubscriptionStore{coll: coll}
}

func (s *mongoSubscriptionStore) Insert(ctx context.Context, sub *models.PushSubscription) error {
	if _, err := s.coll.InsertOne(ctx, sub); err != nil {
		return models.NewDependencyError("failed to save push subscription", err)
	}
	return nil
}

func (s *mongoSubscriptionStore) ListFor(ctx context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, models.NewDependencyError("failed to load push subscriptions", err)
	}
	defer cursor.Close(ctx)

	var subs []models.PushSubscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, models.NewDependencyError("failed to decode push subscriptions", err)
	}
	return subs, nil
}
