package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cellarstock/inventory-auth/internal/core/domain"
)

// LogRepository writes auth events to the structured log. It is the audit
// sink used when no document store is configured.
type LogRepository struct {
	log zerolog.Logger
}

// NewLogRepository returns a LogRepository writing through log.
func NewLogRepository(log zerolog.Logger) *LogRepository {
	return &LogRepository{log: log.With().Str("component", "audit").Logger()}
}

func (r *LogRepository) InsertEvent(_ context.Context, event *domain.AuthEvent) error {
	r.log.Info().
		Str("kind", string(event.Kind)).
		Str("account_id", event.AccountID).
		Str("username", event.Username).
		Str("role", string(event.Role)).
		Time("timestamp", event.Timestamp).
		Msg("auth event")
	return nil
}
