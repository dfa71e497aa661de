// internal/workers/reporting/generate-audit-report/handler_test.go
package generateauditreport

import (
	"context"
	"testing"

	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
func fPtr(v float64) *float64 { return &v }

func newTestHandler(t *testing.T, expectInsert bool) *Handler {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	if expectInsert {
		mock.ExpectExec("INSERT INTO audit_reports").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	return NewHandler(DefaultConfig(), db, logger.NewNoOpLogger())
}

func TestExecute_BuildsReportForWeakWebPresence(t *testing.T) {
	h := newTestHandler(t, true)

	output, err := h.Execute(context.Background(), &Input{
		Business: &models.Business{
			ID:         "biz-1",
			Name:       "La Parrilla de Juan",
			CampaignID: "camp-1",
			Website:    strPtr("https://parrilla.example"),
			WebsiteAnalysis: &models.WebsiteAnalysis{
				HasSEO:                boolPtr(false),
				HasWhatsApp:           false,
				HasReservation:        false,
				HasDirectOrdering:     false,
				HasThirdPartyDelivery: true,
			},
		},
		Score: fPtr(8.5),
		Band:  models.BandHot,
	})

	require.NoError(t, err)
	report := output.Report

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "biz-1", report.BusinessID)
	assert.Equal(t, models.BandHot, report.Band)
	assert.False(t, report.GeneratedAt.IsZero())

	factors := map[models.FactorName]string{}
	for _, f := range report.Findings {
		factors[f.Factor] = f.Severity
	}
	assert.Equal(t, "high", factors[models.FactorPoorSEO])
	assert.Equal(t, "high", factors[models.FactorHasDirectOrdering])
	assert.Equal(t, "medium", factors[models.FactorHasWhatsApp])
	assert.Equal(t, "low", factors[models.FactorHasReservation])
	assert.NotContains(t, factors, models.FactorNoWebsite)

	// SEO and commission findings tie on severity; the first built wins.
	assert.Equal(t, "show up in local search results", report.Angle)
}

func TestExecute_NoWebsiteAngle(t *testing.T) {
	h := newTestHandler(t, true)

	output, err := h.Execute(context.Background(), &Input{
		Business: &models.Business{ID: "biz-2", Name: "Cafe Sin Web"},
		Score:    fPtr(6.0),
		Band:     models.BandWarm,
	})

	require.NoError(t, err)
	assert.Equal(t, "get found online with a simple website", output.Report.Angle)

	require.Len(t, output.Report.Findings, 1)
	assert.Equal(t, models.FactorNoWebsite, output.Report.Findings[0].Factor)
}

func TestExecute_UnreachableSiteIsInfoOnly(t *testing.T) {
	h := newTestHandler(t, true)

	output, err := h.Execute(context.Background(), &Input{
		Business: &models.Business{
			ID:      "biz-3",
			Name:    "Restaurante Fantasma",
			Website: strPtr("https://fantasma.example"),
			WebsiteAnalysis: &models.WebsiteAnalysis{
				HasSEO: nil,
			},
		},
	})

	require.NoError(t, err)
	var seoSeverity string
	for _, f := range output.Report.Findings {
		if f.Factor == models.FactorPoorSEO {
			seoSeverity = f.Severity
		}
	}
	assert.Equal(t, "info", seoSeverity)
	assert.Nil(t, output.Report.Score)
}

func TestExecute_GeographyFindingFromBreakdown(t *testing.T) {
	h := newTestHandler(t, true)

	output, err := h.Execute(context.Background(), &Input{
		Business: &models.Business{ID: "biz-4", Name: "Taqueria Norte", Website: strPtr("https://norte.example")},
		Breakdown: map[models.FactorName]models.FactorBreakdown{
			models.FactorGeography: {ScorePercent: 0, Weight: 2},
		},
	})

	require.NoError(t, err)
	found := false
	for _, f := range output.Report.Findings {
		if f.Factor == models.FactorGeography {
			found = true
			assert.Equal(t, "info", f.Severity)
		}
	}
	assert.True(t, found)
}

func TestExecute_MissingBusiness(t *testing.T) {
	h := newTestHandler(t, false)

	_, err := h.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}

func TestValidateReport(t *testing.T) {
	valid := models.AuditReport{
		ID:           "rep-1",
		BusinessID:   "biz-1",
		BusinessName: "La Parrilla",
		Findings:     []models.AuditFinding{{Factor: models.FactorNoWebsite, Severity: "high", Summary: "no site"}},
	}
	assert.NoError(t, validateReport(valid))

	invalid := valid
	invalid.Findings = []models.AuditFinding{{Factor: models.FactorNoWebsite, Severity: "catastrophic", Summary: "no site"}}
	assert.Error(t, validateReport(invalid))

	invalid = valid
	invalid.BusinessName = ""
	assert.Error(t, validateReport(invalid))
}
