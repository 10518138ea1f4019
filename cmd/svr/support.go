package main

import (
	"context"
	"crypto/rand"
	"flag"
	"log"
	"math"
	"math/big"
	"time"

	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/adapter/chainsim"
	"github.com/zintix-labs/chainspin/demo/demo_configs"
	"github.com/zintix-labs/chainspin/recorder"
	"github.com/zintix-labs/chainspin/server"
	"github.com/zintix-labs/chainspin/server/logger"
	"github.com/zintix-labs/chainspin/server/netsvr"
	"github.com/zintix-labs/chainspin/server/svrcfg"
)

var cfg *config = new(config)

type config struct {
	addr     string
	appID    uint64
	wallet   string
	balance  int64
	seed     int64
	blockMs  int
	journal  string
	prodLog  bool
	waitSecs int
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.addr, "addr", ":5810", "listen address")
	flag.Uint64Var(&cfg.appID, "app", 2001, "machine app id (from demo configs)")
	flag.StringVar(&cfg.wallet, "wallet", "demo-wallet", "wallet address")
	flag.Int64Var(&cfg.balance, "balance", 100_000_000, "initial sandbox balance (micro)")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for the sandbox chain")
	flag.IntVar(&cfg.blockMs, "block", 500, "sandbox block interval (ms)")
	flag.StringVar(&cfg.journal, "journal", "", "settled spin journal path ('' = off; .zst = compressed)")
	flag.BoolVar(&cfg.prodLog, "prod", false, "JSON logs to stdout instead of dev text logs")
	flag.IntVar(&cfg.waitSecs, "waittimeout", 0, "claim wait watchdog in seconds (0 = off)")

	flag.Parse()

	// given seed illegal -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
	if cfg.blockMs < 1 {
		cfg.blockMs = 500
	}
}

func executeServer() {
	mode := logger.ModeDev
	if cfg.prodLog {
		mode = logger.ModeProd
	}
	slogger, ah := logger.NewAsync(8192, mode)
	defer ah.Close()

	// 1. 機台設定（demo configs 內嵌於 binary）
	reg, err := chainsim.LoadRegistry(demo_configs.FS)
	if err != nil {
		log.Fatal(err)
	}
	mc, ok := reg.Get(cfg.appID)
	if !ok {
		log.Fatalf("app id %d not found; available: %v", cfg.appID, reg.AppIDs())
	}

	// 2. 沙盒鏈
	sim, err := chainsim.New(mc, cfg.seed,
		chainsim.WithBalance(cfg.wallet, cfg.balance),
		chainsim.WithBlockInterval(time.Duration(cfg.blockMs)*time.Millisecond),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer sim.Close()

	// 3. 引擎
	opts := []chainspin.Option{
		chainspin.WithLogger(slogger),
		chainspin.WithWallet(cfg.wallet),
		chainspin.WithBlockPollInterval(time.Duration(cfg.blockMs) * time.Millisecond / 2),
	}
	if cfg.waitSecs > 0 {
		opts = append(opts, chainspin.WithWaitTimeout(time.Duration(cfg.waitSecs)*time.Second))
	}
	if cfg.journal != "" {
		j, err := recorder.OpenSpinJournal(cfg.journal)
		if err != nil {
			log.Fatal(err)
		}
		defer j.Close()
		opts = append(opts, chainspin.WithJournal(j))
	}
	eng, err := chainspin.New(sim, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := eng.Initialize(ctx); err != nil {
		log.Fatal(err)
	}

	// 4. HTTP server
	server.RunWithSvr(
		&svrcfg.SvrCfg{Log: slogger, Engine: eng},
		netsvr.NewChiServer(cfg.addr),
	)
}
