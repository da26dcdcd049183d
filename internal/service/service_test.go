package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/auth"
	"orchid-shop/internal/client"
	"orchid-shop/internal/config"
	"orchid-shop/internal/dto"
	"orchid-shop/internal/lock"
	"orchid-shop/internal/metrics"
	"orchid-shop/internal/model"
	"orchid-shop/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeMomo struct {
	mu       sync.Mutex
	payments []client.MomoPayment
}

func (f *fakeMomo) CreatePayment(_ context.Context, p client.MomoPayment) (*client.MomoCreateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, p)
	return &client.MomoCreateResult{OrderID: p.OrderID, PayURL: "https://pay.example/" + p.OrderID}, nil
}

type shop struct {
	db       *gorm.DB
	auth     AuthService
	accounts AccountService
	roles    RoleService
	orchids  OrchidService
	category CategoryService
	orders   OrderService
	details  OrderDetailService
	payments PaymentService
	momo     *fakeMomo
	locker   lock.Locker

	categoryID uint
}

func newShop(t *testing.T) *shop {
	t.Helper()
	return newShopWithMomo(t, nil)
}

func newShopWithMomo(t *testing.T, momo client.MomoClient) *shop {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(config.Database{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "shop.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, client.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	roleRepo := repository.NewRoleRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orchidRepo := repository.NewOrchidRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	detailRepo := repository.NewOrderDetailRepository(db)
	eventRepo := repository.NewPaymentEventRepository(db)

	fake := &fakeMomo{}
	if momo == nil {
		momo = fake
	}
	m := metrics.New()
	log := zap.NewNop()
	locker := lock.NewMemoryLocker()

	s := &shop{
		db:       db,
		auth:     NewAuthService(accountRepo, roleRepo, auth.NewTokenIssuer("test-secret", time.Hour), log),
		accounts: NewAccountService(accountRepo, roleRepo, log),
		roles:    NewRoleService(roleRepo, accountRepo),
		orchids:  NewOrchidService(orchidRepo, categoryRepo, detailRepo),
		category: NewCategoryService(categoryRepo, orchidRepo),
		orders:   NewOrderService(db, locker, orderRepo, detailRepo, accountRepo, orchidRepo, m, log),
		details:  NewOrderDetailService(detailRepo, orderRepo, orchidRepo),
		payments: NewPaymentService(db, locker, momo, orderRepo, accountRepo, eventRepo, m, log),
		momo:     fake,
		locker:   locker,
	}
	require.NoError(t, s.roles.Seed(ctx))

	cat, err := s.category.Create(ctx, "Test Orchids")
	require.NoError(t, err)
	s.categoryID = cat.ID
	return s
}

func (s *shop) orchid(t *testing.T, name, price string) *model.Orchid {
	t.Helper()
	o, err := s.orchids.Create(context.Background(), dto.OrchidRequest{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		IsNatural:  true,
		CategoryID: s.categoryID,
	})
	require.NoError(t, err)
	return o
}

func (s *shop) register(t *testing.T, name string) *model.Account {
	t.Helper()
	a, err := s.auth.Register(context.Background(), dto.RegisterRequest{
		AccountName: name,
		Email:       name + "@example.com",
		Password:    "secret-" + name,
	})
	require.NoError(t, err)
	return a
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func TestCheckoutFlow(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")
	cattleya := s.orchid(t, "Cattleya", "5.00")

	alice := s.register(t, "alice")
	_, err := s.auth.Register(ctx, dto.RegisterRequest{AccountName: "alice", Email: "other@example.com", Password: "x"})
	requireKind(t, err, apperr.KindConflict)

	login, err := s.auth.Login(ctx, dto.LoginRequest{AccountName: "alice", Password: "secret-alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, int64(3600), login.ExpiresIn)

	claims, err := auth.NewTokenIssuer("test-secret", time.Hour).Verify(login.Token, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.Equal(t, alice.ID, claims.AccountID)

	order, msg, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, MsgOrderCreated, msg)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(20)), order.TotalAmount.String())

	again, msg, err := s.orders.AddLineItem(ctx, alice.ID, cattleya.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, MsgDetailAppended, msg)
	assert.Equal(t, order.ID, again.ID)
	assert.True(t, again.TotalAmount.Equal(decimal.NewFromInt(25)), again.TotalAmount.String())

	caller := Caller{AccountID: alice.ID, AccountName: "alice", Role: model.RoleUser}
	lines, err := s.details.ListByOrder(ctx, caller, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Vanda", lines[0].OrchidName)

	sum, err := s.details.TotalAmountByOrder(ctx, caller, order.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(again.TotalAmount))

	url, err := s.payments.CreatePaymentURL(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, s.momo.payments, 1)
	sent := s.momo.payments[0]
	assert.Equal(t, "https://pay.example/"+sent.OrderID, url)
	assert.Equal(t, int64(25), sent.Amount)
	assert.Equal(t, strconv.FormatUint(uint64(order.ID), 10), sent.OrderInfo)
	assert.Equal(t, "alice", sent.ExtraData)

	cb := dto.PaymentCallback{
		OrderID:   sent.OrderID,
		OrderInfo: sent.OrderInfo,
		Message:   "Thành công.",
	}
	result, err := s.payments.HandlePayment(ctx, cb)
	require.NoError(t, err)
	assert.Equal(t, "Payment status for order "+sent.OrderID+" is successful.", result)

	confirmed, err := s.orders.Get(ctx, caller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, confirmed.Status)

	// a replayed callback must not touch the order again
	_, err = s.orders.UpdateStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	_, err = s.payments.HandlePayment(ctx, cb)
	require.NoError(t, err)
	shipped, err := s.orders.Get(ctx, caller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, shipped.Status)

	// the next add opens a fresh order
	next, msg, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, MsgOrderCreated, msg)
	assert.NotEqual(t, order.ID, next.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	s.register(t, "bob")

	_, err := s.auth.Login(ctx, dto.LoginRequest{AccountName: "bob", Password: "wrong"})
	requireKind(t, err, apperr.KindUnauthorized)
	_, err = s.auth.Login(ctx, dto.LoginRequest{AccountName: "nobody", Password: "wrong"})
	requireKind(t, err, apperr.KindUnauthorized)
	assert.Equal(t, "Invalid credentials", apperr.MessageOf(err))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := newShop(t)
	s.register(t, "carol")

	_, err := s.auth.Register(context.Background(), dto.RegisterRequest{
		AccountName: "carol2",
		Email:       "carol@example.com",
		Password:    "pw",
	})
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, "Email already exists", apperr.MessageOf(err))
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	s := newShop(t)

	_, err := s.auth.Register(context.Background(), dto.RegisterRequest{
		AccountName: "dave",
		Email:       "dave@example.com",
		Password:    strings.Repeat("p", 80),
	})
	requireKind(t, err, apperr.KindInvalidArgument)

	var n int64
	require.NoError(t, s.db.Model(&model.Account{}).Where("account_name = ?", "dave").Count(&n).Error)
	assert.Zero(t, n)
}

func TestAddLineItemValidation(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")
	alice := s.register(t, "alice")

	_, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 0)
	requireKind(t, err, apperr.KindInvalidArgument)
	_, _, err = s.orders.AddLineItem(ctx, alice.ID, 999, 1)
	requireKind(t, err, apperr.KindNotFound)
	_, _, err = s.orders.AddLineItem(ctx, 999, vanda.ID, 1)
	requireKind(t, err, apperr.KindNotFound)

	n, err := s.orders.CountByAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateAndDeleteRequirePendingOwner(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")
	cattleya := s.orchid(t, "Cattleya", "5.00")
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	order, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 2)
	require.NoError(t, err)
	_, _, err = s.orders.AddLineItem(ctx, alice.ID, cattleya.ID, 3)
	require.NoError(t, err)

	_, err = s.orders.UpdateOrder(ctx, bob.ID, order.ID, cattleya.ID, 1)
	requireKind(t, err, apperr.KindPermissionDenied)
	err = s.orders.DeleteOrder(ctx, bob.ID, order.ID)
	requireKind(t, err, apperr.KindPermissionDenied)

	updated, err := s.orders.UpdateOrder(ctx, alice.ID, order.ID, cattleya.ID, 4)
	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(20)), updated.TotalAmount.String())

	lines, err := s.details.ListByOrder(ctx, Caller{AccountID: alice.ID, Role: model.RoleUser}, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, cattleya.ID, lines[0].OrchidID)
	assert.Equal(t, 4, lines[0].Quantity)

	_, err = s.orders.UpdateStatus(ctx, order.ID, "CONFIRMED")
	require.NoError(t, err)

	_, err = s.orders.UpdateOrder(ctx, alice.ID, order.ID, vanda.ID, 1)
	requireKind(t, err, apperr.KindInvalidState)
	err = s.orders.DeleteOrder(ctx, alice.ID, order.ID)
	requireKind(t, err, apperr.KindInvalidState)

	_, err = s.orders.UpdateOrder(ctx, alice.ID, 999, vanda.ID, 1)
	requireKind(t, err, apperr.KindNotFound)
}

func TestStatusChangesWaitForOwnerLock(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")
	alice := s.register(t, "alice")

	order, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 1)
	require.NoError(t, err)

	// hold the lock the way an in-flight update would
	unlock, err := s.locker.Lock(ctx, lock.PendingOrderKey(alice.ID))
	require.NoError(t, err)

	done := make(chan error, 2)
	go func() {
		_, err := s.orders.UpdateStatus(ctx, order.ID, "DELIVERED")
		done <- err
	}()
	go func() {
		_, err := s.payments.HandlePayment(ctx, dto.PaymentCallback{
			OrderID:   "gw-1",
			OrderInfo: strconv.FormatUint(uint64(order.ID), 10),
			Message:   "Thành công.",
		})
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("status changed while the owner lock was held: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	stored, err := s.orders.Get(ctx, Caller{AccountID: alice.ID, Role: model.RoleUser}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, stored.Status)

	unlock()
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("status change did not resume after unlock")
		}
	}
	stored, err = s.orders.Get(ctx, Caller{AccountID: alice.ID, Role: model.RoleUser}, order.ID)
	require.NoError(t, err)
	assert.NotEqual(t, model.OrderStatusPending, stored.Status)
}

func TestDeleteOrderRemovesDetails(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")
	alice := s.register(t, "alice")

	first, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 1)
	require.NoError(t, err)
	require.NoError(t, s.orders.DeleteOrder(ctx, alice.ID, first.ID))

	second, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 2)
	require.NoError(t, err)
	_, err = s.orders.UpdateStatus(ctx, second.ID, "DELIVERED")
	require.NoError(t, err)
	require.NoError(t, s.orders.DeleteOrderAdmin(ctx, second.ID))

	details, err := s.details.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, details)
	orders, err := s.orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	requireKind(t, s.orders.DeleteOrderAdmin(ctx, second.ID), apperr.KindNotFound)
}

func TestConcurrentAddsShareOnePendingOrder(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")
	alice := s.register(t, "alice")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	pending, err := s.orders.ListMineByStatus(ctx, alice.ID, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].TotalAmount.Equal(decimal.NewFromInt(10*workers)), pending[0].TotalAmount.String())

	qty, err := s.details.TotalQuantityByOrchid(ctx, vanda.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), qty)
}

func TestOrderQueries(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	a, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 3)
	require.NoError(t, err)
	b, _, err := s.orders.AddLineItem(ctx, bob.ID, vanda.ID, 1)
	require.NoError(t, err)

	_, err = s.orders.Get(ctx, Caller{AccountID: bob.ID, Role: model.RoleUser}, a.ID)
	requireKind(t, err, apperr.KindPermissionDenied)
	got, err := s.orders.Get(ctx, Caller{AccountID: bob.ID, Role: model.RoleAdmin}, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.orders.ListByStatus(ctx, "LOST")
	requireKind(t, err, apperr.KindInvalidArgument)
	_, err = s.orders.UpdateStatus(ctx, a.ID, "LOST")
	requireKind(t, err, apperr.KindInvalidArgument)
	_, err = s.orders.UpdateStatus(ctx, 999, "SHIPPED")
	requireKind(t, err, apperr.KindNotFound)

	total, err := s.orders.TotalAmountByStatus(ctx, "PENDING")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(40)), total.String())

	inRange, err := s.orders.ListByAmountRange(ctx, decimal.NewFromInt(20), decimal.NewFromInt(50))
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.Equal(t, a.ID, inRange[0].ID)
	_, err = s.orders.ListByAmountRange(ctx, decimal.NewFromInt(50), decimal.NewFromInt(20))
	requireKind(t, err, apperr.KindInvalidArgument)

	now := time.Now()
	dated, err := s.orders.ListByDateRange(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, dated, 2)
	_, err = s.orders.ListByDateRange(ctx, now, now.Add(-time.Hour))
	requireKind(t, err, apperr.KindInvalidArgument)

	_, err = s.details.ListByOrder(ctx, Caller{AccountID: alice.ID, Role: model.RoleUser}, b.ID)
	requireKind(t, err, apperr.KindPermissionDenied)

	line, err := s.details.GetByOrderAndOrchid(ctx, a.ID, vanda.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	_, err = s.details.GetByOrderAndOrchid(ctx, b.ID, 999)
	requireKind(t, err, apperr.KindNotFound)
}

func TestHandlePaymentRejectsBadCallbacks(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")
	alice := s.register(t, "alice")
	order, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 1)
	require.NoError(t, err)
	orderInfo := strconv.FormatUint(uint64(order.ID), 10)

	tests := []struct {
		name string
		cb   dto.PaymentCallback
		kind apperr.Kind
	}{
		{"missing order id", dto.PaymentCallback{OrderInfo: orderInfo, Message: "Thành công."}, apperr.KindInvalidArgument},
		{"missing message", dto.PaymentCallback{OrderID: "g-1", OrderInfo: orderInfo}, apperr.KindInvalidArgument},
		{"failed payment", dto.PaymentCallback{OrderID: "g-1", OrderInfo: orderInfo, Message: "Giao dịch bị từ chối."}, apperr.KindInvalidState},
		{"non numeric order", dto.PaymentCallback{OrderID: "g-1", OrderInfo: "abc", Message: "Thành công."}, apperr.KindInvalidArgument},
		{"unknown order", dto.PaymentCallback{OrderID: "g-1", OrderInfo: "999", Message: "Thành công."}, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.payments.HandlePayment(ctx, tt.cb)
			requireKind(t, err, tt.kind)
		})
	}

	still, err := s.orders.Get(ctx, Caller{AccountID: alice.ID}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, still.Status)
}

func TestCreatePaymentURLThroughGateway(t *testing.T) {
	var got client.MomoCreateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orderId":    got.OrderID,
			"resultCode": 0,
			"message":    "Thành công.",
			"payUrl":     "https://gateway.example/pay?o=" + got.OrderID,
		})
	}))
	defer srv.Close()

	momo := client.NewMomoClient(config.Momo{
		PartnerCode: "MOMO",
		AccessKey:   "access",
		SecretKey:   "secret",
		Endpoint:    srv.URL,
		Lang:        "vi",
		Timeout:     5 * time.Second,
	})
	s := newShopWithMomo(t, momo)
	ctx := context.Background()
	orchid := s.orchid(t, "Dendrobium", "28.75")
	alice := s.register(t, "alice")
	order, _, err := s.orders.AddLineItem(ctx, alice.ID, orchid.ID, 2)
	require.NoError(t, err)

	url, err := s.payments.CreatePaymentURL(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/pay?o="+got.OrderID, url)
	assert.Equal(t, int64(57), got.Amount)
	assert.Equal(t, client.SignHMACSHA256("secret", client.MomoRawSignature(&got)), got.Signature)

	_, err = s.payments.CreatePaymentURL(ctx, 999)
	requireKind(t, err, apperr.KindNotFound)
}

func TestCreatePaymentURLGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newShopWithMomo(t, client.NewMomoClient(config.Momo{Endpoint: srv.URL, Timeout: time.Second}))
	ctx := context.Background()
	vanda := s.orchid(t, "Vanda", "10.00")
	alice := s.register(t, "alice")
	order, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 1)
	require.NoError(t, err)

	_, err = s.payments.CreatePaymentURL(ctx, order.ID)
	requireKind(t, err, apperr.KindUpstreamFailure)
}

func TestCatalogRules(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")

	_, err := s.orchids.Create(ctx, dto.OrchidRequest{Name: "Vanda", Price: decimal.NewFromInt(1), CategoryID: s.categoryID})
	requireKind(t, err, apperr.KindConflict)
	_, err = s.orchids.Create(ctx, dto.OrchidRequest{Name: "Free", Price: decimal.Zero, CategoryID: s.categoryID})
	requireKind(t, err, apperr.KindInvalidArgument)
	_, err = s.orchids.Create(ctx, dto.OrchidRequest{Name: "Lost", Price: decimal.NewFromInt(1), CategoryID: 999})
	requireKind(t, err, apperr.KindNotFound)

	requireKind(t, s.category.Delete(ctx, s.categoryID), apperr.KindConflict)
	require.NoError(t, s.orchids.Delete(ctx, vanda.ID))
	require.NoError(t, s.category.Delete(ctx, s.categoryID))

	user, err := s.roles.GetByName(ctx, model.RoleUser)
	require.NoError(t, err)
	s.register(t, "alice")
	requireKind(t, s.roles.Delete(ctx, user.ID), apperr.KindConflict)

	_, err = s.roles.Create(ctx, model.RoleAdmin)
	requireKind(t, err, apperr.KindConflict)
}

func TestDeleteOrchidReferencedByOrderLines(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	vanda := s.orchid(t, "Vanda", "10.00")
	alice := s.register(t, "alice")

	order, _, err := s.orders.AddLineItem(ctx, alice.ID, vanda.ID, 2)
	require.NoError(t, err)

	requireKind(t, s.orchids.Delete(ctx, vanda.ID), apperr.KindConflict)

	lines, err := s.details.ListByOrder(ctx, Caller{AccountID: alice.ID, Role: model.RoleUser}, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Vanda", lines[0].OrchidName)

	require.NoError(t, s.orders.DeleteOrder(ctx, alice.ID, order.ID))
	require.NoError(t, s.orchids.Delete(ctx, vanda.ID))
	requireKind(t, s.orchids.Delete(ctx, vanda.ID), apperr.KindNotFound)
}

func TestEnsureAdminAndChangeRole(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)

	admin := config.Admin{AccountName: "root", Password: "toor"}
	require.NoError(t, s.accounts.EnsureAdmin(ctx, admin))
	require.NoError(t, s.accounts.EnsureAdmin(ctx, admin))

	login, err := s.auth.Login(ctx, dto.LoginRequest{AccountName: "root", Password: "toor"})
	require.NoError(t, err)
	claims, err := auth.NewTokenIssuer("test-secret", time.Hour).Verify(login.Token, "root")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	alice := s.register(t, "alice")
	adminRole, err := s.roles.GetByName(ctx, model.RoleAdmin)
	require.NoError(t, err)
	promoted, err := s.accounts.ChangeRole(ctx, alice.ID, adminRole.ID)
	require.NoError(t, err)
	assert.Equal(t, adminRole.ID, promoted.RoleID)

	_, err = s.accounts.ChangeRole(ctx, alice.ID, 999)
	requireKind(t, err, apperr.KindNotFound)
	_, err = s.accounts.ChangeRole(ctx, 999, adminRole.ID)
	requireKind(t, err, apperr.KindNotFound)
}
