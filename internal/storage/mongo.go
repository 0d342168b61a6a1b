package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"sketchbook/internal/domain"
)

const (
	mongoCanvasCollection  = "canvases"
	mongoCounterCollection = "counters"
	mongoOpTimeout         = 10 * time.Second
)

// MongoCanvasStore implements domain.CanvasStore on MongoDB. Numeric ids come
// from a counters document so records look the same as the SQL backends.
type MongoCanvasStore struct {
	client   *mongo.Client
	canvases *mongo.Collection
	counters *mongo.Collection
}

type mongoCanvas struct {
	ID          int64     `bson:"_id"`
	NotebookID  string    `bson:"notebook_id"`
	Orientation string    `bson:"orientation"`
	Data        string    `bson:"data"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (m mongoCanvas) record() domain.PageRecord {
	return domain.PageRecord{
		ID:          m.ID,
		NotebookID:  m.NotebookID,
		Orientation: domain.Orientation(m.Orientation),
		Data:        m.Data,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// OpenMongo connects to uri and uses database dbName.
func OpenMongo(uri, dbName, password string) (*MongoCanvasStore, error) {
	log.Printf("[MONGO] Connecting with URI: %s", redact(uri, password))

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if dbName == "" {
		dbName = "sketchbook"
	}
	db := client.Database(dbName)
	return &MongoCanvasStore{
		client:   client,
		canvases: db.Collection(mongoCanvasCollection),
		counters: db.Collection(mongoCounterCollection),
	}, nil
}

// Close disconnects the client.
func (s *MongoCanvasStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoCanvasStore) ListPages(notebookID string) ([]domain.PageRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	cursor, err := s.canvases.Find(ctx, bson.M{"notebook_id": notebookID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	var docs []mongoCanvas
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	pages := make([]domain.PageRecord, len(docs))
	for i, d := range docs {
		pages[i] = d.record()
	}
	return pages, nil
}

func (s *MongoCanvasStore) GetPage(id int64) (*domain.PageRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	var doc mongoCanvas
	err := s.canvases.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get page %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page %d: %w", id, err)
	}
	rec := doc.record()
	return &rec, nil
}

func (s *MongoCanvasStore) CreatePage(p *domain.PageRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	id, err := s.nextID(ctx)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	now := time.Now().UTC()
	doc := mongoCanvas{
		ID:          id,
		NotebookID:  p.NotebookID,
		Orientation: string(p.Orientation),
		Data:        p.Data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.canvases.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (s *MongoCanvasStore) UpdatePage(p *domain.PageRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	p.UpdatedAt = time.Now().UTC()
	res, err := s.canvases.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"orientation": string(p.Orientation),
		"data":        p.Data,
		"updated_at":  p.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update page %d: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update page %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *MongoCanvasStore) DeletePage(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	res, err := s.canvases.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete page %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete page %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoCanvasStore) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": mongoCanvasCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return counter.Seq, nil
}

var _ domain.CanvasStore = (*MongoCanvasStore)(nil)
