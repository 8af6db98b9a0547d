package mongo

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"teamwrite/internal/models"
	"teamwrite/internal/repositories"
)

// DocumentRepo wraps the documents collection.
type DocumentRepo struct{ col *mongo.Collection }

func NewDocumentRepo(c *Client) (*DocumentRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	colName := os.Getenv("DOCUMENTS_COLLECTION")
	if colName == "" {
		colName = "documents"
	}

	return &DocumentRepo{col: db.Collection(colName)}, nil
}

// Create inserts a new document.
func (r *DocumentRepo) Create(ctx context.Context, d *models.Document) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, d)
	return err
}

// ListByCollaborator retrieves documents the user can access, most recently
// updated first.
func (r *DocumentRepo) ListByCollaborator(ctx context.Context, userID string) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}).SetLimit(100)
	cur, err := r.col.Find(ctx, bson.M{"collaborators": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Document{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var d models.Document
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Update applies a partial update and bumps updated_at, returning the new
// document state.
func (r *DocumentRepo) Update(ctx context.Context, id string, patch map[string]interface{}) (*models.Document, error) {
	patch["updated_at"] = time.Now().UTC()
	var updated models.Document
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": patch}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrDocumentNotFound
	}
	return nil
}

// AddCollaborator grants a user access to the document. $addToSet keeps the
// list free of duplicates.
func (r *DocumentRepo) AddCollaborator(ctx context.Context, id, userID string) (*models.Document, error) {
	var updated models.Document
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$addToSet": bson.M{"collaborators": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	err := r.col.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
