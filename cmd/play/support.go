package main

import (
	"context"
	"crypto/rand"
	"flag"
	"log"
	"math"
	"math/big"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/chainspin"
	"github.com/zintix-labs/chainspin/adapter/chainsim"
	"github.com/zintix-labs/chainspin/demo/demo_configs"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/recorder"
	"github.com/zintix-labs/chainspin/server/logger"
	"github.com/zintix-labs/chainspin/stats"
	"github.com/zintix-labs/chainspin/store"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	appID   uint64
	spins   int
	bet     int64
	lines   int
	seed    int64
	balance int64
	journal string
	json    bool
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.Uint64Var(&cfg.appID, "app", 2001, "machine app id (from demo configs)")
	flag.IntVar(&cfg.spins, "spins", 1000, "number of spins to play")
	flag.Int64Var(&cfg.bet, "bet", 10000, "bet per line (micro)")
	flag.IntVar(&cfg.lines, "lines", 20, "paylines")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for the sandbox chain")
	flag.Int64Var(&cfg.balance, "balance", 0, "initial balance (micro, 0 = auto-size to bets)")
	flag.StringVar(&cfg.journal, "journal", "", "settled spin journal path ('' = off; .zst = compressed)")
	flag.BoolVar(&cfg.json, "json", false, "JSON summary instead of table")

	flag.Parse()

	// given seed illegal -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
	if cfg.spins < 1 {
		log.Fatal("value err : spins must > 0")
	}
	if cfg.balance <= 0 {
		// 本金自動抓總注額的 5 倍，避免試玩中途破產停跑
		cfg.balance = cfg.bet * int64(cfg.lines) * int64(cfg.spins) * 5
	}
}

const wallet = "play-wallet"

func executePlay() {
	p := message.NewPrinter(language.English)

	// 1. 機台設定
	reg, err := chainsim.LoadRegistry(demo_configs.FS)
	if err != nil {
		log.Fatal(err)
	}
	mc, ok := reg.Get(cfg.appID)
	if !ok {
		log.Fatalf("app id %d not found; available: %v", cfg.appID, reg.AppIDs())
	}

	// 2. 沙盒鏈：快速出塊，讓 claim 不成為瓶頸
	sim, err := chainsim.New(mc, cfg.seed,
		chainsim.WithBalance(wallet, cfg.balance),
		chainsim.WithBlockInterval(time.Millisecond),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer sim.Close()

	// 3. 引擎（靜默 log，統計從 report 拿）
	opts := []chainspin.Option{
		chainspin.WithLogger(logger.NewDefaultLogger(logger.ModeSilence)),
		chainspin.WithWallet(wallet),
		chainspin.WithBlockPollInterval(time.Millisecond),
		chainspin.WithBalancePollInterval(0),
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

	ctx := context.Background()
	if err := eng.Initialize(ctx); err != nil {
		log.Fatal(err)
	}

	// 每筆 spin 跑完（成功或失敗）就往 doneCh 發一下
	doneCh := make(chan struct{}, 1)
	stopOutcome := eng.OnOutcome(func(_ store.QueuedSpin, _ stats.Settle) {
		doneCh <- struct{}{}
	})
	defer stopOutcome()
	stopFailed := eng.OnSpinFailed(func(_ store.QueuedSpin, e *errs.E) {
		log.Printf("spin failed: %v", e)
		doneCh <- struct{}{}
	})
	defer stopFailed()

	green := "\033[1;32m"
	reset := "\033[0m"
	p.Printf("%s[APP:%d] [BET:%d x %d lines] [SPINS:%d]%s\n", green, cfg.appID, cfg.bet, cfg.lines, cfg.spins, reset)

	start := time.Now()
	bar := pb.StartNew(cfg.spins)
	for i := 0; i < cfg.spins; i++ {
		if _, err := eng.Spin(ctx, cfg.bet, cfg.lines); err != nil {
			bar.Finish()
			log.Fatal(err)
		}
		<-doneCh
		bar.Increment()
	}
	bar.Finish()
	used := time.Since(start)

	summary := eng.Report().Summary()
	var render stats.SummaryRender
	if cfg.json {
		render = &stats.JsonSummaryRender{}
	} else {
		render = &stats.TableSummaryRender{}
	}
	if err := render.Write(os.Stdout, summary); err != nil {
		log.Fatal(err)
	}
	p.Printf("played %d spins in %v\n", cfg.spins, used.Round(time.Millisecond))
}
