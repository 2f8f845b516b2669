package providerRepo

import (
	"context"
	"fmt"

	"fundigo/database"
	"fundigo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProviderRepo implements ProviderRepository backed by the providers
// collection.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

func NewMongoProviderRepo() *MongoProviderRepo {
	repo := &MongoProviderRepo{coll: database.Collection("providers")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("provider repo: failed to ensure indexes: %v\n", err)
	}
	return repo
}

// Search returns live providers offering the template, optionally bounded by
// a radius, excluding already-offered ids.
func (r *MongoProviderRepo) Search(ctx context.Context, criteria ProviderSearchCriteria) ([]models.Provider, error) {
	var pipeline mongo.Pipeline

	// 1) $geoNear: must come first to filter+sort by distance.
	if criteria.MaxDistanceKm > 0 && len(criteria.LocationGeo.Coordinates) == 2 {
		pipeline = append(pipeline, bson.D{
			{Key: "$geoNear", Value: bson.D{
				{Key: "near", Value: bson.D{
					{Key: "type", Value: "Point"},
					{Key: "coordinates", Value: criteria.LocationGeo.Coordinates},
				}},
				{Key: "distanceField", Value: "distance"},
				{Key: "spherical", Value: true},
				{Key: "maxDistance", Value: criteria.MaxDistanceKm * 1000},
			}},
		})
	}

	// 2) $match: live providers offering the requested template.
	matchFilter := bson.M{
		"profile.status": bson.M{"$in": []string{models.ProviderStatusActive, models.ProviderStatusOnline}},
	}
	if criteria.TemplateID != "" {
		matchFilter["serviceTemplates"] = criteria.TemplateID
	}
	if len(criteria.ExcludeIDs) > 0 {
		matchFilter["id"] = bson.M{"$nin": criteria.ExcludeIDs}
	}
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: matchFilter}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("provider search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var providers []models.Provider
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&provider); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch provider %s: %w", id, err)
	}
	return &provider, nil
}
