// internal/workers/outreach/select-template/handler_test.go
package selecttemplate

import (
	"context"
	"database/sql"
	"testing"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateRow(id, name, subject string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "subject", "body", "is_html"}).
		AddRow(id, name, subject, "Hola {{.ContactName}}", false)
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHandler(DefaultConfig(), db, logger.NewNoOpLogger()), mock
}

func TestExecute_AngleSpecificTemplate(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("angle_factor = \\$3").
		WithArgs("independent", "hot", "noWebsite").
		WillReturnRows(templateRow("no-website-hot", "No Website Hot", "Tu negocio sin web"))

	output, err := h.Execute(context.Background(), &Input{
		ICPType:     models.ICPTypeIndependent,
		Band:        models.BandHot,
		AngleFactor: models.FactorNoWebsite,
	})

	require.NoError(t, err)
	assert.Equal(t, "no-website-hot", output.Template.ID)
	assert.False(t, output.UsedDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_AngleFromReportFindings(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("angle_factor = \\$3").
		WithArgs("independent", "warm", "hasDirectOrdering").
		WillReturnRows(templateRow("ordering-warm", "Direct Ordering", "Comisiones"))

	output, err := h.Execute(context.Background(), &Input{
		ICPType: models.ICPTypeIndependent,
		Band:    models.BandWarm,
		Report: &models.AuditReport{
			Findings: []models.AuditFinding{
				{Factor: models.FactorHasReservation, Severity: "low", Summary: "no bookings"},
				{Factor: models.FactorHasDirectOrdering, Severity: "high", Summary: "third-party only"},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "ordering-warm", output.Template.ID)
}

func TestExecute_FallsBackToBandTemplate(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("angle_factor = \\$3").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("angle_factor IS NULL").
		WithArgs("midmarket", "warm").
		WillReturnRows(templateRow("midmarket-warm", "Mid Market Warm", "Hola"))

	output, err := h.Execute(context.Background(), &Input{
		ICPType:     models.ICPTypeMidMarket,
		Band:        models.BandWarm,
		AngleFactor: models.FactorPoorSEO,
	})

	require.NoError(t, err)
	assert.Equal(t, "midmarket-warm", output.Template.ID)
	assert.False(t, output.UsedDefault)
}

func TestExecute_FallsBackToDefaultTemplate(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("angle_factor IS NULL").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("WHERE id = \\$1").
		WithArgs("generic-intro").
		WillReturnRows(templateRow("generic-intro", "Generic", "Hola"))

	output, err := h.Execute(context.Background(), &Input{
		ICPType: models.ICPTypeIndependent,
		Band:    models.BandCold,
	})

	require.NoError(t, err)
	assert.Equal(t, "generic-intro", output.Template.ID)
	assert.True(t, output.UsedDefault)
}

func TestExecute_NoTemplateAnywhere(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("angle_factor IS NULL").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("WHERE id = \\$1").
		WillReturnError(sql.ErrNoRows)

	_, err := h.Execute(context.Background(), &Input{
		ICPType: models.ICPTypeIndependent,
		Band:    models.BandCold,
	})

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeTemplateNotFound, stdErr.Code)
}
