package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deskline/helpdesk-service/internal/domain"
)

// AccountsCollection is the Mongo collection holding account documents.
const AccountsCollection = "users"

type accountDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type accountMongoRepository struct {
	coll *mongo.Collection
}

// NewAccountMongoRepository returns a document store implementation.
func NewAccountMongoRepository(db *mongo.Database) AccountRepository {
	return &accountMongoRepository{coll: db.Collection(AccountsCollection)}
}

func (r *accountMongoRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.coll.InsertOne(ctx, toAccountDocument(account))
	return translate(err)
}

func (r *accountMongoRepository) Update(ctx context.Context, account *domain.Account) error {
	update := bson.M{"$set": bson.M{
		"name":      account.Name,
		"email":     account.Email,
		"password":  account.PasswordHash,
		"role":      string(account.Role),
		"updatedAt": account.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": account.ID}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountMongoRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *accountMongoRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *accountMongoRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	accounts, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		result[account.ID] = account
	}
	return result, nil
}

func (r *accountMongoRepository) List(ctx context.Context, role *domain.Role) ([]domain.Account, error) {
	query := bson.M{}
	if role != nil {
		query["role"] = string(*role)
	}
	return r.find(ctx, query)
}

func (r *accountMongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountMongoRepository) findOne(ctx context.Context, query bson.M) (*domain.Account, error) {
	var doc accountDocument
	if err := r.coll.FindOne(ctx, query).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	account := doc.toDomain()
	return &account, nil
}

func (r *accountMongoRepository) find(ctx context.Context, query bson.M) ([]domain.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]domain.Account, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

func toAccountDocument(account *domain.Account) accountDocument {
	return accountDocument{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Password:  account.PasswordHash,
		Role:      string(account.Role),
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

func (d accountDocument) toDomain() domain.Account {
	return domain.Account{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         domain.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
