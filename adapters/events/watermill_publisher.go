package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/heimdall-auth/heimdall/ports"
)

// Topics for session lifecycle events
const (
	LoginTopic   = "heimdall.session.login"
	LogoutTopic  = "heimdall.session.logout"
	RefreshTopic = "heimdall.session.refresh"
)

// SessionEvent is the payload published for every lifecycle change
type SessionEvent struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, userID, tokenID string) error {
	return p.publish(LoginTopic, userID, tokenID)
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID, tokenID string) error {
	return p.publish(LogoutTopic, userID, tokenID)
}

// PublishRefresh publishes a refresh event
func (p *WatermillPublisher) PublishRefresh(ctx context.Context, userID, tokenID string) error {
	return p.publish(RefreshTopic, userID, tokenID)
}

func (p *WatermillPublisher) publish(topic, userID, tokenID string) error {
	payload, err := json.Marshal(SessionEvent{
		UserID:  userID,
		TokenID: tokenID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(tokenID, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
