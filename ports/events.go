package ports

import "context"

// EventPublisher notifies other instances about session lifecycle changes.
// Publishing is observability, not state: failures are logged, never
// propagated into the user-facing operation.
type EventPublisher interface {
	PublishLogin(ctx context.Context, userID, tokenID string) error
	PublishLogout(ctx context.Context, userID, tokenID string) error
	PublishRefresh(ctx context.Context, userID, tokenID string) error
}
