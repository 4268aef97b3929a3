package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cobros/console-gateway/internal/core/domain"
)

const sessionEventCollection = "session_events"

// SessionEventRepository persists the session audit trail.
type SessionEventRepository struct {
	coll *mongo.Collection
}

func NewSessionEventRepository(db *mongo.Database) *SessionEventRepository {
	return &SessionEventRepository{coll: db.Collection(sessionEventCollection)}
}

type sessionEventDoc struct {
	Kind       string `bson:"kind"`
	Username   string `bson:"username"`
	Detail     string `bson:"detail,omitempty"`
	OccurredAt int64  `bson:"occurred_at"`
}

// Insert stores one audit event.
func (r *SessionEventRepository) Insert(ctx context.Context, event domain.SessionEvent) error {
	doc := sessionEventDoc{
		Kind:       string(event.Kind),
		Username:   event.Username,
		Detail:     event.Detail,
		OccurredAt: event.OccurredAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}

// Recent returns the latest events, newest first, capped at limit.
func (r *SessionEventRepository) Recent(ctx context.Context, limit int64) ([]domain.SessionEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find session events: %w", err)
	}
	defer cur.Close(ctx)

	var events []domain.SessionEvent
	for cur.Next(ctx) {
		var doc sessionEventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode session event: %w", err)
		}
		events = append(events, domain.SessionEvent{
			Kind:       domain.SessionEventKind(doc.Kind),
			Username:   doc.Username,
			Detail:     doc.Detail,
			OccurredAt: time.Unix(doc.OccurredAt, 0).UTC(),
		})
	}
	return events, cur.Err()
}
