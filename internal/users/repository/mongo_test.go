package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/teamsteps/teamsteps/internal/database"
	"github.com/teamsteps/teamsteps/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestUsersDocument_BSONLayout(t *testing.T) {
	doc := usersDocument{
		ID: mongoDocumentID,
		Users: []models.UserWithToken{
			{User: models.User{Name: "Al", Team: "Red", Steps: []models.StepSubmission{{Date: "2024-01-01T00:00:00.000Z", Steps: 5}}, TotalSteps: 5}, Token: "t1"},
			{User: models.User{Name: "Bo", Team: "Blue"}, Token: "t2"},
		},
	}
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	r := bson.Raw(raw)
	require.Equal(t, "users", r.Lookup("_id").StringValue())
	// embedded user fields sit beside the token, not under a nested key
	require.Equal(t, "Al", r.Lookup("users", "0", "name").StringValue())
	require.Equal(t, "t1", r.Lookup("users", "0", "token").StringValue())
	_, err = r.LookupErr("users", "0", "user")
	require.Error(t, err)

	var back usersDocument
	require.NoError(t, bson.Unmarshal(raw, &back))
	require.Equal(t, doc.Users[0], back.Users[0])
	require.Equal(t, "Bo", back.Users[1].Name)
	require.Empty(t, back.Users[1].Steps, "nil steps decode without error")
}

// TestMongoRepo runs against a live server when MONGODB_URI is set.
func TestMongoRepo(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()
	client, err := database.ConnectMongoWithRetry(ctx, uri, 5*time.Second, 2)
	require.NoError(t, err)
	db := client.Database("teamsteps_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	r := NewMongoRepo(db.Collection(MongoCollection))
	exerciseRepo(t, r)

	// nil steps survive a save and load
	require.NoError(t, r.Save(ctx, []models.UserWithToken{{User: models.User{Name: "Cy", Team: "Red"}, Token: "t3"}}))
	got, err := r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "t3", got[0].Token)
	require.Empty(t, got[0].Steps)
}
