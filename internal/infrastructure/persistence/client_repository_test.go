package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockClientRepository creates a GormClientRepository with a mocked SQL connection
func newMockClientRepository(t *testing.T) (*GormClientRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormClientRepository(gormDB), mock, mockDB
}

func TestGormClientRepository_FindByIDForOrg(t *testing.T) {
	t.Run("finds client within organization", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		clientID := uuid.New()
		orgID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "organization_id", "name", "email", "currency", "is_active"}).
			AddRow(clientID, orgID, "Globex", "billing@globex.test", "USD", true)

		mock.ExpectQuery(`SELECT \* FROM "clients" WHERE organization_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(orgID, clientID, 1).
			WillReturnRows(rows)

		client, err := repo.FindByIDForOrg(context.Background(), orgID, clientID)

		assert.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, clientID, client.ID)
		assert.Equal(t, "Globex", client.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("client of another organization behaves like missing", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "clients" WHERE organization_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		client, err := repo.FindByIDForOrg(context.Background(), uuid.New(), uuid.New())

		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormClientRepository_FindNamesByIDs(t *testing.T) {
	t.Run("prefers company name over contact name", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		orgID := uuid.New()
		withCompany := uuid.New()
		withoutCompany := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "name", "company_name"}).
			AddRow(withCompany, "Jane Doe", "Globex Inc").
			AddRow(withoutCompany, "John Roe", "")

		mock.ExpectQuery(`SELECT "id","name","company_name" FROM "clients" WHERE organization_id = \$1 AND id IN \(\$2,\$3\)`).
			WithArgs(orgID, withCompany, withoutCompany).
			WillReturnRows(rows)

		names, err := repo.FindNamesByIDs(context.Background(), orgID, []uuid.UUID{withCompany, withoutCompany})

		assert.NoError(t, err)
		assert.Equal(t, "Globex Inc", names[withCompany])
		assert.Equal(t, "John Roe", names[withoutCompany])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input skips the query", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		names, err := repo.FindNamesByIDs(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		assert.Empty(t, names)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormClientRepository_DeleteForOrg(t *testing.T) {
	t.Run("refuses to delete a client with invoices", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		orgID := uuid.New()
		clientID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE organization_id = \$1 AND client_id = \$2`).
			WithArgs(orgID, clientID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
		mock.ExpectRollback()

		err := repo.DeleteForOrg(context.Background(), orgID, clientID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeConflict, domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes an unreferenced client", func(t *testing.T) {
		repo, mock, mockDB := newMockClientRepository(t)
		defer mockDB.Close()

		orgID := uuid.New()
		clientID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE organization_id = \$1 AND client_id = \$2`).
			WithArgs(orgID, clientID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectExec(`DELETE FROM "clients" WHERE organization_id = \$1 AND id = \$2`).
			WithArgs(orgID, clientID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteForOrg(context.Background(), orgID, clientID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
