package databases

// go generate: mockery --name WizardSessionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Loicqra12/ovpr-api/models"
)

const wizardSessionName = "wizard_sessions"

// WizardSessionDatabase contains the methods to use with the wizard session database
type WizardSessionDatabase interface {
	FindOne(ctx context.Context, filter interface{}) SingleResultHelper
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) CursorHelper
	InsertOne(ctx context.Context, session models.WizardSession) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) error
}

type wizardSessionDatabase struct {
	db DatabaseHelper
}

// NewWizardSessionDatabase initializes a new instance of wizard session database with the provided db connection
func NewWizardSessionDatabase(db DatabaseHelper) WizardSessionDatabase {
	return &wizardSessionDatabase{
		db: db,
	}
}

func (w *wizardSessionDatabase) FindOne(ctx context.Context, filter interface{}) SingleResultHelper {
	return w.db.Collection(wizardSessionName).FindOne(ctx, filter)
}

func (w *wizardSessionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) CursorHelper {
	return w.db.Collection(wizardSessionName).Find(ctx, filter, opts...)
}

func (w *wizardSessionDatabase) InsertOne(ctx context.Context, session models.WizardSession) (InsertOneResultHelper, error) {
	res, err := w.db.Collection(wizardSessionName).InsertOne(ctx, session)
	return res, err
}

func (w *wizardSessionDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	res, err := w.db.Collection(wizardSessionName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (w *wizardSessionDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	return w.db.Collection(wizardSessionName).DeleteOne(ctx, filter)
}
