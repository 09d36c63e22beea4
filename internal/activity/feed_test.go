package activity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/models"
)

type fakeSource struct {
	regs      []models.RecentRegistration
	donations []models.RecentDonation
	orders    []models.RecentOrder
	msgs      []models.RecentMessage
	err       error
}

func head[T any](rows []T, limit int) []T {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func (f *fakeSource) RecentRegistrations(_ context.Context, limit int) ([]models.RecentRegistration, error) {
	return head(f.regs, limit), f.err
}

func (f *fakeSource) RecentDonations(_ context.Context, limit int) ([]models.RecentDonation, error) {
	return head(f.donations, limit), nil
}

func (f *fakeSource) RecentOrders(_ context.Context, limit int) ([]models.RecentOrder, error) {
	return head(f.orders, limit), nil
}

func (f *fakeSource) RecentMessages(_ context.Context, limit int) ([]models.RecentMessage, error) {
	return head(f.msgs, limit), nil
}

var base = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

func TestRecentMergesNewestFirst(t *testing.T) {
	gala := "Gala"
	amount := 20.0
	src := &fakeSource{
		regs:      []models.RecentRegistration{{ID: 1, Name: "Sami", EventName: &gala, Timestamp: at(4)}},
		donations: []models.RecentDonation{{ID: 7, Name: "Nora", Type: models.DonationMoney, Amount: &amount, Timestamp: at(3)}},
		orders:    []models.RecentOrder{{ID: 2, CustomerName: "Ana", Total: 15, Timestamp: at(2)}},
		msgs:      []models.RecentMessage{{ID: 9, Name: "Yas", Subject: "", Timestamp: at(1)}},
	}

	items, err := NewFeed(src).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, []string{"reg_1", "don_7", "ord_2", "msg_9"}, []string{items[0].ID, items[1].ID, items[2].ID, items[3].ID})
	assert.Equal(t, `Sami s'est inscrit(e) à "Gala"`, items[0].Message)
	assert.True(t, strings.HasPrefix(items[1].Message, "Nora a fait un don de 20"), items[1].Message)
	assert.True(t, strings.HasSuffix(items[1].Message, "€"))
	assert.True(t, strings.HasPrefix(items[2].Message, "Ana a passé une commande de 15"), items[2].Message)
	assert.Equal(t, `Nouveau message de Yas: "Sans objet"`, items[3].Message)
	assert.Equal(t, models.ActivityMessage, items[3].Type)
	assert.Equal(t, int64(9), items[3].RelatedID)
}

func TestRecentFallbacks(t *testing.T) {
	src := &fakeSource{
		regs:      []models.RecentRegistration{{ID: 1, Name: "Sami", Timestamp: at(2)}},
		donations: []models.RecentDonation{{ID: 2, Name: "Nora", Type: "clothes", Timestamp: at(1)}},
	}
	items, err := NewFeed(src).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, `Sami s'est inscrit(e) à "un événement"`, items[0].Message)
	assert.Equal(t, "Nora a fait un don de type clothes", items[1].Message)
}

func TestRecentPreLimitsEachSource(t *testing.T) {
	src := &fakeSource{donations: []models.RecentDonation{{ID: 1, Name: "old", Type: "food", Timestamp: at(0)}}}
	for i := 5; i >= 1; i-- {
		src.regs = append(src.regs, models.RecentRegistration{ID: int64(i), Name: "r", Timestamp: at(10 + i)})
	}

	items, err := NewFeed(src).Recent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, it := range items {
		assert.Equal(t, models.ActivityRegistration, it.Type)
	}
	assert.Equal(t, "reg_5", items[0].ID)
}

func TestRecentPropagatesErrors(t *testing.T) {
	_, err := NewFeed(&fakeSource{err: errors.New("boom")}).Recent(context.Background(), 5)
	assert.Error(t, err)
}

func TestParseLimit(t *testing.T) {
	n, err := ParseLimit("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, n)

	n, err = ParseLimit("25")
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	for _, raw := range []string{"0", "101", "abc", "-3"} {
		_, err := ParseLimit(raw)
		assert.ErrorIs(t, err, apperr.ErrValidation, raw)
	}
}

func TestHandlerRejectsBadLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(NewFeed(&fakeSource{}))(rec, httptest.NewRequest(http.MethodGet, "/api/activities?limit=500", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
