package main

import (
	"log"
	"time"

	"lendledger/internal/adapter/events"
	httpadp "lendledger/internal/adapter/http"
	"lendledger/internal/adapter/middleware"
	"lendledger/internal/adapter/repository/mysql"
	"lendledger/internal/confidential"
	"lendledger/internal/config"
	borrowerDomain "lendledger/internal/domain/borrower"
	grantDomain "lendledger/internal/domain/grant"
	loanDomain "lendledger/internal/domain/loan"
	"lendledger/internal/infrastructure/cache"
	"lendledger/internal/infrastructure/db"
	"lendledger/internal/settlement"
	borrowerUC "lendledger/internal/usecase/borrower"
	loanUC "lendledger/internal/usecase/loan"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(&loanDomain.Loan{}, &borrowerDomain.Profile{}, &grantDomain.AccessGrant{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	// The grant engine backs every decrypt decision the keeper makes.
	grants := mysql.NewGrantRepository(gdb)
	keeper, err := confidential.NewKeeperFromFile(cfg.KeeperKeyPath, grantDomain.NewEngine(grants))
	if err != nil {
		log.Fatalf("keeper: %v", err)
	}

	vault := settlement.NewRedisVault(rdb)
	sink := events.NewRedisPublisher(rdb, cfg.EventChannel)
	uow := mysql.NewGormUoW(gdb)

	borrowers := borrowerUC.NewUsecase(mysql.NewBorrowerRepository(gdb), uow, keeper, cfg.AdminIdentity, sink)
	loans := loanUC.NewUsecase(mysql.NewLoanRepository(gdb), uow, keeper, vault, cfg.AdminIdentity, sink)

	bh := httpadp.NewBorrowerHandler(borrowers)
	lh := httpadp.NewLoanHandler(loans)

	e := httpadp.NewRouter(bh, lh,
		middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
