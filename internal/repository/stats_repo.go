package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nottebuia/internal/model"
)

// StatsRepo persists per-account game statistics. Accounts are identified
// by the opaque reference handed over by the auth collaborator; the repo
// never interprets it.
type StatsRepo interface {
	IncrementRound(ctx context.Context, accountRef string, role model.Role, won bool) error
}

type statsRepo struct {
	users *mongo.Collection
}

// NewStatsRepo creates a MongoDB-backed stats repository.
func NewStatsRepo(db *mongo.Database) StatsRepo {
	return &statsRepo{users: db.Collection("users")}
}

func (r *statsRepo) IncrementRound(ctx context.Context, accountRef string, role model.Role, won bool) error {
	wins, losses := 0, 1
	if won {
		wins, losses = 1, 0
	}

	inc := bson.M{
		"stats.games":  1,
		"stats.wins":   wins,
		"stats.losses": losses,
	}
	if role != "" {
		inc[fmt.Sprintf("stats.roles.%s", role)] = 1
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.users.UpdateOne(ctx, bson.M{"accountRef": accountRef}, bson.M{"$inc": inc}, opts)
	return err
}
