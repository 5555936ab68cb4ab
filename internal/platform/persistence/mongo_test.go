package persistence

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMongoDB_DatabaseAndCollection(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	// Connect is lazy, so no server is needed to build handles
	client, err := mongo.Connect(context.TODO(), options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)
	db := client.Database("reconciler_test")

	mdb := &MongoDB{
		logger:   logger,
		client:   client,
		database: db,
	}
	assert.Equal(t, db, mdb.Database())
	assert.Equal(t, "invoice_notifications", mdb.Collection("invoice_notifications").Name())
	assert.NoError(t, mdb.Close(context.Background()))
}
