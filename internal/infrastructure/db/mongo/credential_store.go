package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

const credentialsCollection = "credentials"

// CredentialStore keeps one document per API origin:
// {_id: <scope>, access_token, refresh_token, updated_at}.
type CredentialStore struct {
	coll  *mongo.Collection
	scope string
}

func NewCredentialStore(db *mongo.Database, scope string) *CredentialStore {
	return &CredentialStore{coll: db.Collection(credentialsCollection), scope: scope}
}

type credentialsDoc struct {
	Scope        string    `bson:"_id"`
	AccessToken  string    `bson:"access_token,omitempty"`
	RefreshToken string    `bson:"refresh_token,omitempty"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (s *CredentialStore) Get(ctx context.Context) (domain.Credentials, error) {
	var doc credentialsDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.scope}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Credentials{}, nil
	}
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("find credentials: %w", err)
	}
	return domain.Credentials{AccessToken: doc.AccessToken, RefreshToken: doc.RefreshToken}, nil
}

func (s *CredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	doc := credentialsDoc{
		Scope:        s.scope,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		UpdatedAt:    time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.scope}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) SetAccessToken(ctx context.Context, token string) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if token == "" {
		update["$unset"] = bson.M{ports.AccessTokenKey: ""}
	} else {
		update["$set"].(bson.M)[ports.AccessTokenKey] = token
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": s.scope}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set access token: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.scope}); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
