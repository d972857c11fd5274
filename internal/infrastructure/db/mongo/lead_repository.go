package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

type LeadRepository struct {
	coll *mongo.Collection
	ids  *sequence
}

func NewLeadRepository(db *mongo.Database) *LeadRepository {
	return &LeadRepository{coll: db.Collection(collectionLeads), ids: newSequence(db, collectionLeads)}
}

// Create inserts a lead with domain.DefaultLeadStatus.
func (r *LeadRepository) Create(ctx context.Context, f domain.LeadFields) (*domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}

	d := leadDoc{
		ID:      id,
		Name:    f.Name,
		Email:   f.Email,
		Company: f.Company,
		Value:   f.Value,
		Source:  f.Source,
		Status:  domain.DefaultLeadStatus,
	}
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return d.toDomain(), nil
}

func (r *LeadRepository) List(ctx context.Context) ([]*domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find leads: %w", err)
	}
	defer cur.Close(ctx)

	var docs []leadDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode leads: %w", err)
	}

	out := make([]*domain.Lead, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d leadDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return d.toDomain(), nil
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.coll.CountDocuments(ctx, bson.M{})
}

type leadDoc struct {
	ID      int64   `bson:"_id"`
	Name    string  `bson:"name"`
	Email   string  `bson:"email"`
	Company string  `bson:"company"`
	Value   float64 `bson:"value"`
	Source  string  `bson:"source"`
	Status  string  `bson:"status"`
}

func (d leadDoc) toDomain() *domain.Lead {
	return &domain.Lead{ID: d.ID, Name: d.Name, Email: d.Email, Company: d.Company, Value: d.Value, Source: d.Source, Status: d.Status}
}
