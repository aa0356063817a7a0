package mongo

import (
	"context"
	"time"

	"refonte-quiz-service/internal/domain"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is used when no collection override is configured.
const DefaultCollection = "submissions"

type submissionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	Email     string             `bson:"email"`
	URL       string             `bson:"url"`
	Scores    bson.M             `bson:"scores"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// SubmissionStore appends submission documents to a collection.
type SubmissionStore struct {
	col   *mongo.Collection
	clock func() time.Time
}

func NewSubmissionStore(db *mongo.Database, collection string) *SubmissionStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &SubmissionStore{col: db.Collection(collection), clock: time.Now}
}

// Connect opens a client and verifies the deployment is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	return client, nil
}

func (s *SubmissionStore) CreateSubmission(ctx context.Context, record *domain.SubmissionRecord) error {
	scores := bson.M{}
	for k, v := range record.Scores {
		scores[k] = v
	}
	doc := submissionDocument{
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Email:     record.Email,
		URL:       record.URL,
		Scores:    scores,
		CreatedAt: s.clock().UTC(),
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return errors.Wrap(err, "insert submission")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	record.CreatedAt = doc.CreatedAt
	return nil
}

// CountSubmissions returns how many documents were written for an email.
func (s *SubmissionStore) CountSubmissions(ctx context.Context, email string) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return 0, errors.Wrap(err, "count submissions")
	}
	return n, nil
}
