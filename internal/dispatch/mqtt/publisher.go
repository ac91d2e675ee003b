package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

const qosAtLeastOnce byte = 1

// Options configures the broker connection.
type Options struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

var _ model.Dispatcher = (*Publisher)(nil)

// Publisher forwards emergency updates to an MQTT broker.
type Publisher struct {
	client client
	prefix string
}

// Connect dials the broker and returns a ready Publisher.
func Connect(opts Options) (*Publisher, error) {
	co := paho.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		co.SetPassword(opts.Password)
	}
	co.SetAutoReconnect(true)
	co.SetCleanSession(true)
	co.SetConnectTimeout(10 * time.Second)

	c := paho.NewClient(co)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newPublisher(c, opts.TopicPrefix), nil
}

func newPublisher(c client, prefix string) *Publisher {
	return &Publisher{client: c, prefix: prefix}
}

type locationMessage struct {
	EventID uuid.UUID `json:"eventId"`
	model.LocationSample
}

type statusMessage struct {
	EventID   uuid.UUID             `json:"eventId"`
	OwnerID   uuid.UUID             `json:"ownerId"`
	Status    model.EmergencyStatus `json:"status"`
	Timestamp time.Time             `json:"timestamp"`
}

// PublishLocation sends a location sample for the event.
func (p *Publisher) PublishLocation(ctx context.Context, eventID uuid.UUID, sample model.LocationSample) error {
	return p.publish(ctx, p.topic(eventID, "location"), false, locationMessage{EventID: eventID, LocationSample: sample})
}

// PublishStatus sends a lifecycle change for the event. Status messages are
// retained so late subscribers see the current state.
func (p *Publisher) PublishStatus(ctx context.Context, eventID, ownerID uuid.UUID, status model.EmergencyStatus) error {
	return p.publish(ctx, p.topic(eventID, "status"), true, statusMessage{
		EventID:   eventID,
		OwnerID:   ownerID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func (p *Publisher) topic(eventID uuid.UUID, kind string) string {
	return fmt.Sprintf("%s/emergencies/%s/%s", p.prefix, eventID, kind)
}

func (p *Publisher) publish(ctx context.Context, topic string, retained bool, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	token := p.client.Publish(topic, qosAtLeastOnce, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("failed to publish to topic %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}
