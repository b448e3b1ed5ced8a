package databases

// go generate: mockery --name AnnouncementDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Loicqra12/ovpr-api/models"
)

const announcementName = "announcements"

// AnnouncementDatabase contains the methods to use with the announcement database
type AnnouncementDatabase interface {
	FindOne(ctx context.Context, filter interface{}) SingleResultHelper
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) CursorHelper
	InsertOne(ctx context.Context, announcement models.Announcement) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) error
}

type announcementDatabase struct {
	db DatabaseHelper
}

// NewAnnouncementDatabase initializes a new instance of announcement database with the provided db connection
func NewAnnouncementDatabase(db DatabaseHelper) AnnouncementDatabase {
	return &announcementDatabase{
		db: db,
	}
}

func (a *announcementDatabase) FindOne(ctx context.Context, filter interface{}) SingleResultHelper {
	return a.db.Collection(announcementName).FindOne(ctx, filter)
}

func (a *announcementDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) CursorHelper {
	return a.db.Collection(announcementName).Find(ctx, filter, opts...)
}

func (a *announcementDatabase) InsertOne(ctx context.Context, announcement models.Announcement) (InsertOneResultHelper, error) {
	res, err := a.db.Collection(announcementName).InsertOne(ctx, announcement)
	return res, err
}

func (a *announcementDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	res, err := a.db.Collection(announcementName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (a *announcementDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	return a.db.Collection(announcementName).DeleteOne(ctx, filter)
}
