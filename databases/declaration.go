package databases

// go generate: mockery --name DeclarationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Loicqra12/ovpr-api/models"
)

const declarationName = "declarations"

// DeclarationDatabase contains the methods to use with the declaration database
type DeclarationDatabase interface {
	FindOne(ctx context.Context, filter interface{}) SingleResultHelper
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) CursorHelper
	InsertOne(ctx context.Context, declaration models.Declaration) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) SingleResultHelper
	DeleteOne(ctx context.Context, filter interface{}) error
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type declarationDatabase struct {
	db DatabaseHelper
}

// NewDeclarationDatabase initializes a new instance of declaration database with the provided db connection
func NewDeclarationDatabase(db DatabaseHelper) DeclarationDatabase {
	return &declarationDatabase{
		db: db,
	}
}

func (d *declarationDatabase) FindOne(ctx context.Context, filter interface{}) SingleResultHelper {
	return d.db.Collection(declarationName).FindOne(ctx, filter)
}

func (d *declarationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) CursorHelper {
	return d.db.Collection(declarationName).Find(ctx, filter, opts...)
}

func (d *declarationDatabase) InsertOne(ctx context.Context, declaration models.Declaration) (InsertOneResultHelper, error) {
	res, err := d.db.Collection(declarationName).InsertOne(ctx, declaration)
	return res, err
}

func (d *declarationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	res, err := d.db.Collection(declarationName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *declarationDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) SingleResultHelper {
	return d.db.Collection(declarationName).FindOneAndUpdate(ctx, filter, update, opts...)
}

func (d *declarationDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	return d.db.Collection(declarationName).DeleteOne(ctx, filter)
}

func (d *declarationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	count, err := d.db.Collection(declarationName).CountDocuments(ctx, filter, opts...)
	if err != nil {
		return 0, err
	}
	return count, nil
}
