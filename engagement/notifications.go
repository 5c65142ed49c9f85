package engagement

import (
	"context"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListNotifications returns the actor's non-expired notifications, newest
// first, with the triggering user's public profile attached.
func (c *Coordinator) ListNotifications(ctx context.Context, actorID primitive.ObjectID) ([]models.Notification, error) {
	cutoff := c.now().Add(-models.NotificationTTL)
	notifications, err := c.notifications.ListFor(ctx, actorID, cutoff)
	if err != nil {
		return nil, err
	}

	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for i := range notifications {
		if !seen[notifications[i].From] {
			seen[notifications[i].From] = true
			ids = append(ids, notifications[i].From)
		}
	}
	users, err := c.users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.PublicUser, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Public()
	}
	for i := range notifications {
		if pub, ok := byID[notifications[i].From]; ok {
			notifications[i].FromUser = &pub
		}
	}
	return notifications, nil
}

// ClearNotifications deletes every notification addressed to the actor.
func (c *Coordinator) ClearNotifications(ctx context.Context, actorID primitive.ObjectID) error {
	return c.notifications.DeleteAllFor(ctx, actorID)
}

// ClearNotification deletes one notification, only if addressed to the
// actor.
func (c *Coordinator) ClearNotification(ctx context.Context, actorID, notificationID primitive.ObjectID) error {
	deleted, err := c.notifications.DeleteOneFor(ctx, notificationID, actorID)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewNotFoundError("Notification")
	}
	return nil
}
