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

type CustomerRepository struct {
	coll *mongo.Collection
	ids  *sequence
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(collectionCustomers), ids: newSequence(db, collectionCustomers)}
}

func (r *CustomerRepository) Create(ctx context.Context, f domain.CustomerFields) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}

	c := &domain.Customer{ID: id, Name: f.Name, Email: f.Email, Company: f.Company, Phone: f.Phone, Status: f.Status}
	if _, err := r.coll.InsertOne(ctx, toCustomerDoc(c)); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return c, nil
}

// List returns all customers sorted by id.
func (r *CustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	defer cur.Close(ctx)

	var docs []customerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}

	out := make([]*domain.Customer, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d customerDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return d.toDomain(), nil
}

func (r *CustomerRepository) Update(ctx context.Context, id int64, f domain.CustomerFields) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":    f.Name,
		"email":   f.Email,
		"company": f.Company,
		"phone":   f.Phone,
		"status":  f.Status,
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.coll.CountDocuments(ctx, bson.M{})
}

type customerDoc struct {
	ID      int64  `bson:"_id"`
	Name    string `bson:"name"`
	Email   string `bson:"email"`
	Company string `bson:"company"`
	Phone   string `bson:"phone"`
	Status  string `bson:"status"`
}

func toCustomerDoc(c *domain.Customer) customerDoc {
	return customerDoc{ID: c.ID, Name: c.Name, Email: c.Email, Company: c.Company, Phone: c.Phone, Status: c.Status}
}

func (d customerDoc) toDomain() *domain.Customer {
	return &domain.Customer{ID: d.ID, Name: d.Name, Email: d.Email, Company: d.Company, Phone: d.Phone, Status: d.Status}
}
