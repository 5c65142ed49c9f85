// Package push delivers notifications to registered browser push
// endpoints via the Web Push protocol.
package push

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"chirp/models"
	"chirp/store"

	"github.com/SherClockHolmes/webpush-go"
)

type Sender struct {
	subs            store.SubscriptionStore
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
}

// NewSender reads VAPID keys from the environment, generating a throwaway
// pair when unset so development works without configuration.
func NewSender(subs store.SubscriptionStore) *Sender {
	publicKey := os.Getenv("VAPID_PUBLIC_KEY")
	privateKey := os.Getenv("VAPID_PRIVATE_KEY")
	if publicKey == "" || privateKey == "" {
		var err error
		privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Printf("push: failed to generate VAPID keys: %v", err)
			return &Sender{subs: subs}
		}
		log.Println("push: generated ephemeral VAPID keys; set VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY in production")
	}

	subscriber := os.Getenv("VAPID_SUBSCRIBER")
	if subscriber == "" {
		subscriber = "mailto:admin@example.com"
	}

	return &Sender{
		subs:            subs,
		vapidPublicKey:  publicKey,
		vapidPrivateKey: privateKey,
		subscriber:      subscriber,
	}
}

// PublicKey is served to clients so they can subscribe.
func (s *Sender) PublicKey() string {
	return s.vapidPublicKey
}

// Notify implements engagement.Notifier. Pushes run in the background so
// fan-out never waits on a push service.
func (s *Sender) Notify(n *models.Notification) {
	if s.vapidPrivateKey == "" {
		return
	}
	go s.send(n)
}

func (s *Sender) send(n *models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subs, err := s.subs.ListFor(ctx, n.To)
	if err != nil {
		log.Printf("push: failed to load subscriptions for %s: %v", n.To.Hex(), err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":   n.Type,
		"from":   n.From.Hex(),
		"postId": n.PostID,
	})
	if err != nil {
		log.Printf("push: failed to marshal payload: %v", err)
		return
	}

	for i := range subs {
		resp, err := webpush.SendNotification(payload, &subs[i].Sub, &webpush.Options{
			Subscriber:      s.subscriber,
			VAPIDPublicKey:  s.vapidPublicKey,
			VAPIDPrivateKey: s.vapidPrivateKey,
			TTL:             60,
		})
		if err != nil {
			log.Printf("push: delivery to %s failed: %v", n.To.Hex(), err)
			continue
		}
		resp.Body.Close()
	}
}
