package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Loicqra12/ovpr-api/config"
	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/databases/mocks"
	"github.com/Loicqra12/ovpr-api/models"
)

func TestNewDeclarationDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	declarationDB := databases.NewDeclarationDatabase(db)

	assert.NotEmpty(t, declarationDB)
}

func TestDeclarationDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.Declaration)
		arg.TrackingNumber = "OVPR-LOST-20240315-00427"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "declarations").Return(collectionHelper)

	// Create new database with mocked Database interface
	declarationDba := databases.NewDeclarationDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	var declaration models.Declaration
	err := declarationDba.FindOne(context.Background(), bson.M{"error": true}).Decode(&declaration)

	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with different filter for correct result
	err = declarationDba.FindOne(context.Background(), bson.M{"error": false}).Decode(&declaration)

	assert.NoError(t, err)
	assert.Equal(t, "OVPR-LOST-20240315-00427", declaration.TrackingNumber)
}

func TestDeclarationDatabase_Find(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var crHelperErr databases.CursorHelper
	var crHelperCorrect databases.CursorHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	crHelperErr = &mocks.CursorHelper{}
	crHelperCorrect = &mocks.CursorHelper{}

	crHelperErr.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	crHelperCorrect.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Declaration)
		(*arg) = []models.Declaration{{TrackingNumber: "OVPR-FOUND-20240315-00001"}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(crHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(crHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "declarations").Return(collectionHelper)

	// Create new database with mocked Database interface
	declarationDba := databases.NewDeclarationDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	var declarations []models.Declaration
	err := declarationDba.Find(context.Background(), bson.M{"error": true}).Decode(&declarations)

	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with different filter for correct result
	err = declarationDba.Find(context.Background(), bson.M{"error": false}).Decode(&declarations)

	assert.NoError(t, err)
	assert.Equal(t, []models.Declaration{{TrackingNumber: "OVPR-FOUND-20240315-00001"}}, declarations)
}

func TestDeclarationDatabase_CountDocuments(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("CountDocuments", context.Background(), bson.M{"trackingNumber": "OVPR-LOST-20240315-00427"}).
		Return(int64(1), nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "declarations").Return(collectionHelper)

	declarationDba := databases.NewDeclarationDatabase(dbHelper)

	count, err := declarationDba.CountDocuments(context.Background(), bson.M{"trackingNumber": "OVPR-LOST-20240315-00427"})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
