package server

import (
	"orchid-shop/internal/auth"
	"orchid-shop/internal/client"
	"orchid-shop/internal/lock"
	"orchid-shop/internal/metrics"
	"orchid-shop/internal/repository"
	"orchid-shop/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewServices builds the repositories and services on top of db.
func NewServices(
	db *gorm.DB,
	locker lock.Locker,
	momoClient client.MomoClient,
	tokens *auth.TokenIssuer,
	m *metrics.Metrics,
	log *zap.Logger,
) Services {
	roleRepo := repository.NewRoleRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orchidRepo := repository.NewOrchidRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	detailRepo := repository.NewOrderDetailRepository(db)
	paymentEventRepo := repository.NewPaymentEventRepository(db)

	return Services{
		Auth:        service.NewAuthService(accountRepo, roleRepo, tokens, log.Named("auth")),
		Account:     service.NewAccountService(accountRepo, roleRepo, log.Named("account")),
		Role:        service.NewRoleService(roleRepo, accountRepo),
		Category:    service.NewCategoryService(categoryRepo, orchidRepo),
		Orchid:      service.NewOrchidService(orchidRepo, categoryRepo, detailRepo),
		Order:       service.NewOrderService(db, locker, orderRepo, detailRepo, accountRepo, orchidRepo, m, log.Named("order")),
		OrderDetail: service.NewOrderDetailService(detailRepo, orderRepo, orchidRepo),
		Payment:     service.NewPaymentService(db, locker, momoClient, orderRepo, accountRepo, paymentEventRepo, m, log.Named("payment")),
	}
}
