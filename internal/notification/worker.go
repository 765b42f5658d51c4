package notification

import (
	"context"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"marketplace-booking-backend/internal/i18n"
	"marketplace-booking-backend/internal/model"
)

// Event names the booking moments that trigger a notification.
type Event string

const (
	EventBookingCreated   Event = "booking.created"
	EventBookingConfirmed Event = "booking.confirmed"
)

// Job is one notification request for a booking.
type Job struct {
	BookingID int64
	Event     Event
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans booking events out to web push subscriptions. Delivery is
// fire-and-forget: a failed push is logged and never affects the booking
// transaction that triggered it.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	catalog *i18n.Catalog
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, catalog *i18n.Catalog, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*4),
		db:      db,
		catalog: catalog,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.notifyBookingParties(ctx, job)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a job without blocking the caller; when the queue is full
// the event is dropped and logged, never propagated back to the mutation.
func (wp *WorkerPool) Dispatch(bookingID int64, event Event) {
	select {
	case wp.jobs <- Job{BookingID: bookingID, Event: event}:
	default:
		log.Printf("notification queue full, dropping %s for booking %d", event, bookingID)
	}
}

// notifyBookingParties sends the event message to every push subscription
// of the booking's client and partner, localized per user.
func (wp *WorkerPool) notifyBookingParties(ctx context.Context, job Job) {
	var b model.Booking
	if err := wp.db.WithContext(ctx).First(&b, job.BookingID).Error; err != nil {
		log.Printf("error fetching booking %d for notification: %v", job.BookingID, err)
		return
	}

	var users []model.User
	if err := wp.db.WithContext(ctx).Find(&users, []int64{b.ClientID, b.PartnerID}).Error; err != nil {
		log.Printf("error fetching parties of booking %s: %v", b.BookingNumber, err)
		return
	}

	for _, user := range users {
		var subscriptions []model.PushSubscription
		if err := wp.db.WithContext(ctx).
			Where("user_id = ?", user.ID).
			Find(&subscriptions).Error; err != nil {
			log.Printf("error fetching subscriptions for user %d: %v", user.ID, err)
			continue
		}
		if len(subscriptions) == 0 {
			continue
		}

		message := wp.catalog.Get(user.Language, string(job.Event), b.BookingNumber)
		for _, sub := range subscriptions {
			wp.sendNotification(ctx, sub, []byte(message))
		}
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
