package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MediaRecordStore provides operations on the metadata collection: one
// Firestore document per asset ID, written via field-level merge only.
type MediaRecordStore struct {
	client     *firestore.Client
	collection string
}

// NewMediaRecordStore creates a MediaRecordStore over the given collection.
func NewMediaRecordStore(client *firestore.Client, collection string) *MediaRecordStore {
	return &MediaRecordStore{
		client:     client,
		collection: collection,
	}
}

// Collection returns the configured collection name.
func (s *MediaRecordStore) Collection() string {
	return s.collection
}

// Get loads the record for an asset, normalized to the current schema.
// Returns nil, nil when no document exists yet.
func (s *MediaRecordStore) Get(ctx context.Context, assetID string) (*MediaRecord, error) {
	start := time.Now()
	snap, err := s.client.Collection(s.collection).Doc(assetID).Get(ctx)
	duration := time.Since(start)
	if status.Code(err) == codes.NotFound {
		log.Debug().Str("assetId", assetID).Dur("duration", duration).Msg("Get: no record yet")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media record %s: %w", assetID, err)
	}

	var rec MediaRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("unmarshal media record %s: %w", assetID, err)
	}
	rec.AssetID = assetID
	rec.Normalize()

	log.Debug().Str("assetId", assetID).Dur("duration", duration).Msg("Get: record loaded")
	return &rec, nil
}

// Merge applies a partial update as an upsert: the document is created when
// absent, and only the update's field paths are written when it exists.
// The merge is not transactional against concurrent writers; overlapping
// fields resolve last-writer-wins, which is the documented behavior.
func (s *MediaRecordStore) Merge(ctx context.Context, assetID string, u *Update) error {
	if u == nil || u.Empty() {
		return nil
	}

	data := make(map[string]interface{}, len(u.Data())+1)
	paths := make([]firestore.FieldPath, 0, len(u.Data())+1)
	for field, value := range u.Data() {
		data[field] = value
		paths = append(paths, firestore.FieldPath{field})
	}
	data["updatedAt"] = firestore.ServerTimestamp
	paths = append(paths, firestore.FieldPath{"updatedAt"})

	start := time.Now()
	_, err := s.client.Collection(s.collection).Doc(assetID).Set(ctx, data, firestore.Merge(paths...))
	duration := time.Since(start)
	if err != nil {
		log.Debug().Err(err).Str("assetId", assetID).Int("fields", len(paths)).Dur("duration", duration).Msg("Merge: Firestore Set failed")
		return fmt.Errorf("merge media record %s: %w", assetID, err)
	}

	log.Debug().Str("assetId", assetID).Int("fields", len(paths)).Dur("duration", duration).Msg("Merge: record merged")
	return nil
}
