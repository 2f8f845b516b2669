package providerRepo

import (
	"context"
	"fmt"

	"fundigo/database"
	"fundigo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CustomerRepository is the minimal read surface dispatch needs for outbound
// customer notifications.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Customer, error)
}

// MongoCustomerRepo implements CustomerRepository.
type MongoCustomerRepo struct {
	coll *mongo.Collection
}

func NewMongoCustomerRepo() *MongoCustomerRepo {
	return &MongoCustomerRepo{coll: database.Collection("customers")}
}

func (r *MongoCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&customer); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch customer %s: %w", id, err)
	}
	return &customer, nil
}
