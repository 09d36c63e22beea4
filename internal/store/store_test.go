package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.db"), WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func ptr[T any](v T) *T { return &v }

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.sqlite")
	s, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	assert.Error(t, err)
}

func TestRebindPostgres(t *testing.T) {
	s := &Store{driver: DriverPostgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", s.q("SELECT 1 WHERE a = ? AND b = ?"))

	s.driver = DriverSQLite
	assert.Equal(t, "a = ?", s.q("a = ?"))
}

func TestAddProductKeepsSizeOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, models.ProductInput{Name: "T-shirt", Price: 15, Stock: 3, Sizes: []string{"M", "S", "XL"}})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	products, err := s.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, []string{"M", "S", "XL"}, products[0].Sizes)
	assert.Equal(t, "T-shirt", products[0].Name)
}

func TestGetProductsByCategory(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddProduct(ctx, models.ProductInput{Name: "Mug", Price: 8, Category: "home"})
	require.NoError(t, err)
	_, err = s.AddProduct(ctx, models.ProductInput{Name: "Cap", Price: 12, Category: "clothing", Sizes: []string{"L"}})
	require.NoError(t, err)

	products, err := s.GetProductsByCategory(ctx, "clothing")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cap", products[0].Name)
	assert.Equal(t, []string{"L"}, products[0].Sizes)

	products, err = s.GetProductsByCategory(ctx, "none")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestUpdateProduct(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, models.ProductInput{Name: "Hoodie", Price: 30, Description: "warm", Sizes: []string{"S", "M"}})
	require.NoError(t, err)

	t.Run("partial fields", func(t *testing.T) {
		ok, err := s.UpdateProduct(ctx, p.ID, models.ProductPatch{Price: ptr(25.5)})
		require.NoError(t, err)
		assert.True(t, ok)

		products, err := s.GetAllProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 25.5, products[0].Price)
		assert.Equal(t, "Hoodie", products[0].Name)
		assert.Equal(t, "warm", products[0].Description)
		assert.Equal(t, []string{"S", "M"}, products[0].Sizes)
	})

	t.Run("empty sizes clear the set", func(t *testing.T) {
		ok, err := s.UpdateProduct(ctx, p.ID, models.ProductPatch{Sizes: &[]string{}})
		require.NoError(t, err)
		assert.True(t, ok)

		products, err := s.GetAllProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products[0].Sizes)
	})

	t.Run("unknown id", func(t *testing.T) {
		ok, err := s.UpdateProduct(ctx, 9999, models.ProductPatch{Name: ptr("x"), Sizes: &[]string{"L"}})
		require.NoError(t, err)
		assert.False(t, ok)

		var n int
		require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM product_sizes WHERE product_id = 9999`).Scan(&n))
		assert.Zero(t, n)
	})
}

func TestDeleteProductCascadesToOrderItems(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, models.ProductInput{Name: "Badge", Price: 2, Sizes: []string{"one"}})
	require.NoError(t, err)
	o, err := s.SaveOrder(ctx, models.OrderInput{
		CustomerName: "Ana", CustomerEmail: "ana@example.org", Total: 4,
		Items: []models.OrderItemInput{{ID: &p.ID, Quantity: 2, Price: 2}},
	})
	require.NoError(t, err)

	ok, err := s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	ok, err = s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.AddProduct(ctx, models.ProductInput{Name: "A", Price: 10})
	require.NoError(t, err)
	b, err := s.AddProduct(ctx, models.ProductInput{Name: "B", Price: 5})
	require.NoError(t, err)

	o, err := s.SaveOrder(ctx, models.OrderInput{
		CustomerName:  "Lina",
		CustomerEmail: "lina@example.org",
		Total:         25,
		Items: []models.OrderItemInput{
			{ID: &a.ID, Size: ptr("M"), Quantity: 2, Price: 10},
			{ProductID: &b.ID, Quantity: 1, Price: 5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", o.Status)
	require.Len(t, o.Items, 2)

	got, err := s.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.Total)
	require.Len(t, got.Items, 2)
	assert.Equal(t, a.ID, got.Items[0].ProductID)
	require.NotNil(t, got.Items[0].Size)
	assert.Equal(t, "M", *got.Items[0].Size)
	assert.Equal(t, b.ID, got.Items[1].ProductID)
	assert.Nil(t, got.Items[1].Size)
}

func TestSaveOrderRollsBackOnBadProduct(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.AddProduct(ctx, models.ProductInput{Name: "A", Price: 10})
	require.NoError(t, err)

	_, err = s.SaveOrder(ctx, models.OrderInput{
		CustomerName: "Lina", CustomerEmail: "lina@example.org", Total: 10,
		Items: []models.OrderItemInput{
			{ID: &a.ID, Quantity: 1, Price: 10},
			{ID: ptr(int64(4242)), Quantity: 1, Price: 10},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConstraint)

	orders, err := s.GetAllOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM order_items`).Scan(&n))
	assert.Zero(t, n)
}

func TestSaveOrderRequiresProductRef(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.SaveOrder(context.Background(), models.OrderInput{
		CustomerName: "Lina", CustomerEmail: "lina@example.org",
		Items: []models.OrderItemInput{{Quantity: 1, Price: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	orders, err := s.GetAllOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrdersLifecycle(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, models.ProductInput{Name: "A", Price: 1})
	require.NoError(t, err)
	first, err := s.SaveOrder(ctx, models.OrderInput{CustomerName: "one", CustomerEmail: "1@example.org", Total: 1,
		Items: []models.OrderItemInput{{ID: &p.ID, Quantity: 1, Price: 1}}})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := s.SaveOrder(ctx, models.OrderInput{CustomerName: "two", CustomerEmail: "2@example.org", Total: 2,
		Items: []models.OrderItemInput{{ID: &p.ID, Quantity: 2, Price: 1}}})
	require.NoError(t, err)

	orders, err := s.GetAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Len(t, orders[0].Items, 1)

	ok, err := s.UpdateOrderStatus(ctx, first.ID, "shipped")
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := s.GetOrderByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "shipped", got.Status)

	ok, err = s.DeleteOrder(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.GetOrderByID(ctx, first.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	ok, err = s.UpdateOrderStatus(ctx, first.ID, "shipped")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventsAndRegistrations(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	e, err := s.AddEvent(ctx, models.EventInput{Name: "Gala", Date: "2024-05-01", Type: models.EventUpcoming})
	require.NoError(t, err)
	_, err = s.AddEvent(ctx, models.EventInput{Name: "Collecte", Date: "2023-12-01", Type: models.EventSolidarity})
	require.NoError(t, err)

	upcoming, err := s.GetEventsByType(ctx, models.EventUpcoming)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Gala", upcoming[0].Name)

	ok, err := s.UpdateEvent(ctx, e.ID, models.EventPatch{Description: ptr("soirée")})
	require.NoError(t, err)
	assert.True(t, ok)
	all, err := s.GetAllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "soirée", all[0].Description)
	assert.Equal(t, "2024-05-01", all[0].Date)

	r1, err := s.SaveRegistration(ctx, models.RegistrationInput{EventID: e.ID, Name: "Sami", Email: "sami@example.org"})
	require.NoError(t, err)
	assert.Nil(t, r1.Phone)
	clock.Advance(time.Second)
	r2, err := s.SaveRegistration(ctx, models.RegistrationInput{EventID: e.ID, Name: "Nora", Email: "nora@example.org", Phone: ptr("0600000000")})
	require.NoError(t, err)

	regs, err := s.GetRegistrationsByEvent(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, r2.ID, regs[0].ID)
	require.NotNil(t, regs[0].Phone)
	assert.Equal(t, "0600000000", *regs[0].Phone)

	_, err = s.SaveRegistration(ctx, models.RegistrationInput{EventID: 777, Name: "x", Email: "x@example.org"})
	assert.ErrorIs(t, err, apperr.ErrConstraint)

	ok, err = s.DeleteEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	regs, err = s.GetAllRegistrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, regs)

	ok, err = s.DeleteRegistration(ctx, r1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDonations(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveDonation(ctx, models.DonationInput{Type: models.DonationMoney, Amount: ptr(50.0), Name: "A", Email: "a@example.org"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	clothes, err := s.SaveDonation(ctx, models.DonationInput{Type: "clothes", Name: "B", Email: "b@example.org", Description: ptr("manteaux")})
	require.NoError(t, err)

	all, err := s.GetAllDonations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, clothes.ID, all[0].ID)
	assert.Nil(t, all[0].Amount)
	require.NotNil(t, all[1].Amount)
	assert.Equal(t, 50.0, *all[1].Amount)

	money, err := s.GetDonationsByType(ctx, models.DonationMoney)
	require.NoError(t, err)
	assert.Len(t, money, 1)
}

func TestMessages(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	m, err := s.SaveMessage(ctx, models.MessageInput{Name: "Yas", Email: "yas@example.org", Subject: "Bénévolat", Message: "Bonjour"})
	require.NoError(t, err)
	assert.False(t, m.Read)

	unread, err := s.GetUnreadMessages(ctx)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	ok, err := s.MarkMessageAsRead(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetMessageByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
	unread, err = s.GetUnreadMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, unread)

	ok, err = s.DeleteMessage(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.GetMessageByID(ctx, m.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdminsAndTokens(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	created, err := s.EnsureAdmin(ctx, "admin", "hash", "admin")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = s.EnsureAdmin(ctx, "admin", "other", "admin")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = s.CreateAdmin(ctx, "admin", "hash", "admin")
	assert.ErrorIs(t, err, apperr.ErrConstraint)

	a, err := s.GetAdminByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash", a.PasswordHash)
	_, err = s.GetAdminByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	live := &models.AuthToken{UserID: a.ID, Token: "live", ExpiresAt: clock.Now().Add(time.Hour)}
	require.NoError(t, s.InsertToken(ctx, live))
	assert.NotZero(t, live.ID)
	old := &models.AuthToken{UserID: a.ID, Token: "old", ExpiresAt: clock.Now()}
	require.NoError(t, s.InsertToken(ctx, old))

	found, err := s.FindToken(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.UserID)
	assert.True(t, found.ExpiresAt.Equal(live.ExpiresAt))

	n, err := s.DeleteExpiredTokens(ctx, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = s.FindToken(ctx, "old")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	n, err = s.DeleteTokensForUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	ok, err := s.DeleteToken(ctx, "live")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecentQueriesLimitAndOrder(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	e, err := s.AddEvent(ctx, models.EventInput{Name: "Gala", Date: "2024-05-01"})
	require.NoError(t, err)
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.SaveRegistration(ctx, models.RegistrationInput{EventID: e.ID, Name: name, Email: name + "@example.org"})
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	regs, err := s.RecentRegistrations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "c", regs[0].Name)
	require.NotNil(t, regs[0].EventName)
	assert.Equal(t, "Gala", *regs[0].EventName)
	assert.Equal(t, "b", regs[1].Name)
}
