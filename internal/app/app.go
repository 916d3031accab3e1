package app

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/iosramgio/appkonveksimax-sub003/internal/adapters/cache"
	"github.com/iosramgio/appkonveksimax-sub003/internal/adapters/geo"
	"github.com/iosramgio/appkonveksimax-sub003/internal/adapters/httpserver"
	"github.com/iosramgio/appkonveksimax-sub003/internal/adapters/mailer"
	"github.com/iosramgio/appkonveksimax-sub003/internal/adapters/payments/midtrans"
	"github.com/iosramgio/appkonveksimax-sub003/internal/adapters/repo/postgres"
	"github.com/iosramgio/appkonveksimax-sub003/internal/config"
	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
	"github.com/iosramgio/appkonveksimax-sub003/internal/usecase"
)

type App struct {
	DB  *gorm.DB
	Cfg *config.Config

	AuthUC     *usecase.AuthUC
	ProductUC  *usecase.ProductUC
	CheckoutUC *usecase.CheckoutUC
	OrderUC    *usecase.OrderUC
	PaymentUC  *usecase.PaymentUC
	ReportUC   *usecase.ReportUC

	Gateway *midtrans.Gateway
	Regions *geo.Client
}

func NewApp(db *gorm.DB, cfg *config.Config) (*App, error) {
	productRepo := postgres.NewProductRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)
	activityRepo := postgres.NewActivityRepo(db)
	userRepo := postgres.NewUserRepo(db)

	gateway := midtrans.NewGateway(cfg.Midtrans.ServerKey, cfg.Midtrans.ClientKey, cfg.Midtrans.Production)

	var regionCache cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		regionCache = cache.NewRedis(cfg.Redis.Addr, "konveksimax")
	}
	regions := geo.NewClient(regionCache, cfg.Redis.RegionTTL)

	var mail usecase.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	}

	pickup := domain.Address{
		Street:     cfg.Store.Street,
		Province:   cfg.Store.Province,
		City:       cfg.Store.City,
		District:   cfg.Store.District,
		PostalCode: cfg.Store.PostalCode,
	}

	a := &App{DB: db, Cfg: cfg, Gateway: gateway, Regions: regions}
	a.AuthUC = &usecase.AuthUC{Users: userRepo, Secret: []byte(cfg.JWT.Secret)}
	a.ProductUC = &usecase.ProductUC{Products: productRepo}
	a.CheckoutUC = &usecase.CheckoutUC{
		Orders:        orderRepo,
		Products:      productRepo,
		PickupAddress: pickup,
	}
	a.OrderUC = &usecase.OrderUC{
		Orders:   orderRepo,
		Activity: activityRepo,
		Mailer:   mail,
	}
	a.PaymentUC = &usecase.PaymentUC{
		Orders:   orderRepo,
		Payments: paymentRepo,
		Gateway:  gateway,
		Activity: activityRepo,
		Mailer:   mail,
	}
	a.ReportUC = &usecase.ReportUC{Orders: orderRepo, Payments: paymentRepo}
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(
		a.AuthUC,
		a.ProductUC,
		a.CheckoutUC,
		a.OrderUC,
		a.PaymentUC,
		a.ReportUC,
		a.Gateway,
		a.Regions,
		[]byte(a.Cfg.JWT.Secret),
	)
}

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.Material{}, &domain.Color{}, &domain.SizeOption{},
		&domain.Order{}, &domain.OrderItem{},
		&domain.Payment{}, &domain.ActivityEntry{}, &domain.User{},
	); err != nil {
		return err
	}

	// Gateway transaction ids must be unique, but manual payments have none.
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_transaction_id ON payments (transaction_id) WHERE transaction_id <> ''").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments (order_id)").Error

	return nil
}
