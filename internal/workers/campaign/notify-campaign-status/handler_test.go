// internal/workers/campaign/notify-campaign-status/handler_test.go
package notifycampaignstatus

import (
	"context"
	"testing"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	sent    []string
	subject string
	body    string
	fail    bool
}

func (f *fakeEmail) Send(ctx context.Context, from, to, subject, body string) (string, error) {
	if f.fail {
		return "", assert.AnError
	}
	f.sent = append(f.sent, to)
	f.subject = subject
	f.body = body
	return "email-1", nil
}

type fakeSMS struct {
	published []string
	fail      bool
}

func (f *fakeSMS) Publish(ctx context.Context, phone, message string) (string, error) {
	if f.fail {
		return "", assert.AnError
	}
	f.published = append(f.published, phone)
	return "sms-1", nil
}

func testCampaign() *models.Campaign {
	return &models.Campaign{
		ID:         "camp-1",
		Name:       "Palermo Restaurants",
		OwnerEmail: "owner@agency.example",
		OwnerPhone: "+5491122334455",
		Priority:   "high",
	}
}

func testStats() *models.CampaignStats {
	return &models.CampaignStats{
		CampaignID:  "camp-1",
		ScoredCount: 40,
		MeanScore:   6.2,
		Bands:       map[models.ScoreBand]int{models.BandHot: 5, models.BandWarm: 20, models.BandCold: 15},
	}
}

func newHandler(smsEnabled bool, email *fakeEmail, sms *fakeSMS) *Handler {
	cfg := DefaultConfig()
	cfg.FromAddress = "noreply@leadgen.example"
	cfg.SMSEnabled = smsEnabled
	return NewHandler(cfg, email, sms, logger.NewNoOpLogger())
}

func TestExecute_EmailWithStats(t *testing.T) {
	email := &fakeEmail{}
	h := newHandler(false, email, nil)

	output, err := h.Execute(context.Background(), &Input{
		Campaign: testCampaign(),
		Status:   models.CampaignStatusCompleted,
		Stats:    testStats(),
	})

	require.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.Equal(t, []string{"owner@agency.example"}, email.sent)
	assert.Contains(t, email.subject, "Palermo Restaurants")
	assert.Contains(t, email.body, "Leads scored: 40")
	assert.Contains(t, email.body, "hot: 5")
}

func TestExecute_HighPrioritySendsSMS(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	h := newHandler(true, email, sms)

	output, err := h.Execute(context.Background(), &Input{
		Campaign: testCampaign(),
		Status:   models.CampaignStatusCompleted,
		Stats:    testStats(),
	})

	require.NoError(t, err)
	assert.True(t, output.SMSSent)
	assert.Equal(t, "sms-1", output.SMSMessageID)
	assert.Equal(t, []string{"+5491122334455"}, sms.published)
}

func TestExecute_NormalPrioritySkipsSMS(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	h := newHandler(true, email, sms)

	campaign := testCampaign()
	campaign.Priority = "normal"

	output, err := h.Execute(context.Background(), &Input{
		Campaign: campaign,
		Status:   models.CampaignStatusCompleted,
	})

	require.NoError(t, err)
	assert.False(t, output.SMSSent)
	assert.Empty(t, sms.published)
}

func TestExecute_SMSFailureDoesNotFailJob(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{fail: true}
	h := newHandler(true, email, sms)

	output, err := h.Execute(context.Background(), &Input{
		Campaign: testCampaign(),
		Status:   models.CampaignStatusFailed,
		Detail:   "places provider quota exceeded",
	})

	require.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.Contains(t, email.body, "places provider quota exceeded")
}

func TestExecute_EmailFailureFailsJob(t *testing.T) {
	email := &fakeEmail{fail: true}
	h := newHandler(false, email, nil)

	_, err := h.Execute(context.Background(), &Input{
		Campaign: testCampaign(),
		Status:   models.CampaignStatusCompleted,
	})

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.False(t, stdErr.Timestamp.IsZero())
}

func TestExecute_MissingOwnerEmail(t *testing.T) {
	h := newHandler(false, &fakeEmail{}, nil)

	_, err := h.Execute(context.Background(), &Input{
		Campaign: &models.Campaign{ID: "camp-2"},
		Status:   models.CampaignStatusCompleted,
	})

	assert.Error(t, err)
}
