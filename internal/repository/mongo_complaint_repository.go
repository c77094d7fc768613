package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Collection names shared with index setup.
const (
	ComplaintsCollection = "complaints"
	UsersCollection      = "users"
)

type complaintDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Category      string             `bson:"category"`
	Priority      string             `bson:"priority"`
	Status        string             `bson:"status"`
	DateSubmitted time.Time          `bson:"dateSubmitted"`
	UserID        primitive.ObjectID `bson:"userId"`
	UserEmail     string             `bson:"userEmail"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d *complaintDocument) toDomain() *domain.Complaint {
	return &domain.Complaint{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Category:      domain.ComplaintCategory(d.Category),
		Priority:      domain.ComplaintPriority(d.Priority),
		Status:        domain.ComplaintStatus(d.Status),
		DateSubmitted: d.DateSubmitted,
		AuthorUserID:  d.UserID.Hex(),
		AuthorEmail:   d.UserEmail,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type mongoComplaintRepository struct {
	col *mongo.Collection
	now func() time.Time
}

// NewMongoComplaintRepository returns a MongoDB-backed implementation.
func NewMongoComplaintRepository(db *mongo.Database) ComplaintRepository {
	return &mongoComplaintRepository{col: db.Collection(ComplaintsCollection), now: time.Now}
}

func (r *mongoComplaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	author, err := primitive.ObjectIDFromHex(complaint.AuthorUserID)
	if err != nil {
		return fmt.Errorf("mongo complaints: author id %q: %w", complaint.AuthorUserID, err)
	}

	now := r.now().UTC()
	doc := complaintDocument{
		Title:         complaint.Title,
		Description:   complaint.Description,
		Category:      string(complaint.Category),
		Priority:      string(complaint.Priority),
		Status:        string(complaint.Status),
		DateSubmitted: complaint.DateSubmitted.UTC(),
		UserID:        author,
		UserEmail:     complaint.AuthorEmail,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("mongo complaints: unexpected inserted id %T", res.InsertedID)
	}
	complaint.ID = id.Hex()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	return nil
}

func (r *mongoComplaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc complaintDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *mongoComplaintRepository) UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus) (*domain.Complaint, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": r.now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc complaintDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, mongoNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *mongoComplaintRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoComplaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.Priority != nil {
		query["priority"] = string(*filter.Priority)
	}
	opts := options.Find().SetSort(bson.D{{Key: "dateSubmitted", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []complaintDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]domain.Complaint, 0, len(docs))
	for i := range docs {
		result = append(result, *docs[i].toDomain())
	}
	return result, nil
}

func mongoNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
