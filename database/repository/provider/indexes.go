package providerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ensureIndexes creates indexes for frequently used fields in queries.
func (r *MongoProviderRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	idIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}},
	}
	templateIdx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "serviceTemplates", Value: 1},
			{Key: "profile.status", Value: 1},
		},
	}
	geoIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "profile.locationGeo", Value: "2dsphere"}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{idIdx, templateIdx, geoIdx}); err != nil {
		return fmt.Errorf("failed to create provider indexes: %w", err)
	}
	return nil
}
