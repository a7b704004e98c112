package notifications

import (
	"io"
	"log"
	"os"
	"testing"

	"github.com/mazza92/creator-dashboard-backend-sub000/db"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func TestNotify_InsertsRow(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "notifications" WHERE user_id = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "notifications" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("n-1"))
	mock.ExpectCommit()

	id, err := Notify(db.DB, "user-1", models.BrandRole, models.EventNewBooking, map[string]string{
		"booking_id":   "b-1",
		"creator_name": "Ava",
	})
	assert.NoError(t, err)
	assert.Equal(t, "n-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotify_DedupWithinWindow(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "notifications" WHERE user_id = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow("existing", "user-1"))

	id, err := Notify(db.DB, "user-1", models.BrandRole, models.EventNewBooking, map[string]string{
		"booking_id": "b-1",
	})
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotify_MissingTemplateIsNoOp(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	// SUBSCRIPTION_RENEWED has no creator-side template; nothing may touch
	// the database.
	id, err := Notify(db.DB, "user-1", models.CreatorRole, models.EventSubscriptionRenewed, nil)
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateTemplates(t *testing.T) {
	assert.NoError(t, ValidateTemplates())
}

func TestLookupTemplate_RendersMessage(t *testing.T) {
	tpl, ok := lookupTemplate(models.EventPaymentCompleted, models.CreatorRole)
	assert.True(t, ok)
	message := tpl.RenderMessage(map[string]string{
		"brand_name": "Acme",
		"amount":     "250.00",
	})
	assert.NotEmpty(t, message)
	assert.Contains(t, message, "250.00")
}
