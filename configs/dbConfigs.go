package configs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const dbConfigsTitle = "recommendation configs"

type DbConfigData struct {
	Title                  string `bson:"title"`
	DisableCatalogFallback bool   `bson:"disableCatalogFallback"`
	DiscoverMinVoteCount   int    `bson:"discoverMinVoteCount"`
	HighRatingThreshold    int    `bson:"highRatingThreshold"`
	SimilarUsersLimit      int    `bson:"similarUsersLimit"`
}

func DefaultDbConfigs() DbConfigData {
	return DbConfigData{
		Title:                dbConfigsTitle,
		DiscoverMinVoteCount: 100,
		HighRatingThreshold:  7,
		SimilarUsersLimit:    10,
	}
}

// withDefaults fills zero values left by a partial document.
func (d DbConfigData) withDefaults() DbConfigData {
	def := DefaultDbConfigs()
	if d.DiscoverMinVoteCount <= 0 {
		d.DiscoverMinVoteCount = def.DiscoverMinVoteCount
	}
	if d.HighRatingThreshold < 1 || d.HighRatingThreshold > 10 {
		d.HighRatingThreshold = def.HighRatingThreshold
	}
	if d.SimilarUsersLimit <= 0 {
		d.SimilarUsersLimit = def.SimilarUsersLimit
	}
	return d
}

var rwm sync.RWMutex
var dbConfigs = DefaultDbConfigs()

func GetDbConfigs() DbConfigData {
	rwm.RLock()
	defer rwm.RUnlock()
	return dbConfigs
}

// LoadDbConfigs reloads the settings document every 15 minutes until done is closed.
func LoadDbConfigs(mongodb *mongo.Database, done <-chan bool) {
	tick := time.NewTicker(15 * time.Minute)
	defer tick.Stop()
	_ = FetchMongoDbConfigs(mongodb)
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			_ = FetchMongoDbConfigs(mongodb)
		}
	}
}

func FetchMongoDbConfigs(mongodb *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var data DbConfigData
	err := mongodb.
		Collection("configs").
		FindOne(ctx, bson.D{{Key: "title", Value: dbConfigsTitle}}).
		Decode(&data)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		errorMessage := fmt.Sprintf("could not get dbConfig from mongodb: %s", err)
		if configs.PrintErrors {
			log.Println(errorMessage)
		}
		sentry.CaptureException(err)
		return err
	}

	setDbConfigs(data)
	return nil
}

func setDbConfigs(data DbConfigData) {
	rwm.Lock()
	defer rwm.Unlock()
	dbConfigs = data.withDefaults()
}
