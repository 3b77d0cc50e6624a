package notification

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/repository"
	"google.golang.org/api/option"
)

// NotificationService handles FCM notifications
type NotificationService struct {
	client     *messaging.Client
	subRepo    *repository.SubscriptionRepository
	deviceRepo *repository.DeviceRepository
}

// NewNotificationService creates a new FCM notification service
func NewNotificationService(credentialsFile string, subRepo *repository.SubscriptionRepository, deviceRepo *repository.DeviceRepository) (*NotificationService, error) {
	if credentialsFile == "" {
		log.Println("⚠️ Firebase credentials not provided, push notifications disabled")
		return nil, nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		// Log warning instead of error to not block server startup
		log.Printf("⚠️ Failed to initialize Firebase app: %v (push notifications disabled)", err)
		return nil, nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("⚠️ Failed to get messaging client: %v", err)
		return nil, nil
	}

	log.Println("✅ Firebase FCM initialized")
	return &NotificationService{
		client:     client,
		subRepo:    subRepo,
		deviceRepo: deviceRepo,
	}, nil
}

// SendLiveNotification pushes a "player went live" notification to every
// device of every user subscribed to the player
func (s *NotificationService) SendLiveNotification(ctx context.Context, playerID uuid.UUID, playerName, summonerName string) error {
	if s == nil || s.client == nil {
		return nil
	}

	subscriberIDs, err := s.subRepo.SubscriberIDs(playerID)
	if err != nil {
		return err
	}
	if len(subscriberIDs) == 0 {
		return nil
	}

	devices, err := s.deviceRepo.ListByUsers(subscriberIDs)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return nil
	}

	// Prepare token list
	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.FCMToken)
	}

	// Create message
	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("%s is live!", playerName),
			Body:  fmt.Sprintf("%s just started a game", summonerName),
		},
		Data: map[string]string{
			"type":      "player_live",
			"player_id": playerID.String(),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{"Urgency": "high"},
		},
	}

	// Send
	br, err := s.client.SendMulticast(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending multicast message: %w", err)
	}

	if br.FailureCount > 0 {
		// Drop tokens FCM says are gone so we stop targeting them
		for idx, resp := range br.Responses {
			if !resp.Success {
				log.Printf("⚠️ FCM failure for token %s: %v", tokens[idx], resp.Error)
				if messaging.IsUnregistered(resp.Error) {
					_ = s.deviceRepo.Delete(devices[idx].UserID, devices[idx].FCMToken)
				}
			}
		}
	}

	return nil
}
