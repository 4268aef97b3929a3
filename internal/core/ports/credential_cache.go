package ports

import (
	"context"

	"github.com/cobros/console-gateway/internal/core/domain"
)

// CredentialCache persists the session token and identity between gateway
// restarts so a still-valid session can be restored without contacting the
// login endpoint. Load returns an empty token and nil identity when nothing
// is cached.
type CredentialCache interface {
	Save(ctx context.Context, token string, identity *domain.Identity) error
	Load(ctx context.Context) (string, *domain.Identity, error)
	Clear(ctx context.Context) error
}

// AuditRecorder accepts session lifecycle events. Implementations must never
// block the caller; recording is best-effort.
type AuditRecorder interface {
	Record(event domain.SessionEvent)
}
