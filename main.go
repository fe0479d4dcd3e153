package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/repo"
	"github.com/dokyun-lab/stock-tracker/internal/schedule"
	"github.com/dokyun-lab/stock-tracker/internal/service/collector"
	"github.com/dokyun-lab/stock-tracker/internal/service/llm/gemini"
	"github.com/dokyun-lab/stock-tracker/internal/service/monitor"
	"github.com/dokyun-lab/stock-tracker/internal/service/recommend"
	"github.com/dokyun-lab/stock-tracker/internal/service/report"
	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
	"github.com/dokyun-lab/stock-tracker/ioc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// 평일 장중 4회 + 일일 요약 1회
var defaultSchedule = []string{
	"15 9 * * MON-FRI",
	"30 11 * * MON-FRI",
	"0 14 * * MON-FRI",
	"40 15 * * MON-FRI",
	"0 17 * * MON-FRI",
}

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}
}

func main() {
	mode := pflag.String("mode", "once", "once | scheduler | report")
	dryRun := pflag.Bool("dry-run", false, "print alerts to stdout instead of slack")
	initViper()

	db := ioc.InitDB()
	if err := repo.InitTables(db); err != nil {
		panic(err)
	}

	trackerSvc, err := tracker.NewService(db, ioc.InitTrackerConfig())
	if err != nil {
		panic(err)
	}

	flows := []collector.TradeFlowCollector{ioc.InitKrxCollector()}
	var filings []collector.FilingCollector
	if dartSvc := ioc.InitDartCollector(); dartSvc != nil {
		filings = append(filings, dartSvc)
	} else {
		slog.Warn("dart api key not set, filing collection disabled")
	}

	notifier := monitor.NewConsoleNotifier()
	if !*dryRun {
		if slackNotifier := ioc.InitSlackNotifier(); slackNotifier != nil {
			notifier = slackNotifier
		} else {
			slog.Warn("slack webhook not set, printing alerts to console")
		}
	}

	opts := []monitor.Option{monitor.WithNotifier(notifier)}
	if viper.GetBool("notify.market_overview") {
		opts = append(opts, monitor.WithMarketOverview())
	}
	if cli := ioc.InitGeminiCli(); cli != nil {
		opts = append(opts, monitor.WithRecommender(recommend.NewService(gemini.NewService(cli))))
	}

	task := monitor.NewTrackerTask(trackerSvc, flows, filings, opts...)

	switch *mode {
	case "once":
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute*10)
		defer cancel()
		if err := task.Run(ctx); err != nil {
			panic(err)
		}
	case "report":
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		text, err := report.NewService(repo.NewLedgerRepo(db)).Activity(ctx, 7)
		if err != nil {
			panic(err)
		}
		if err := notifier.NotifyText(ctx, text); err != nil {
			panic(err)
		}
	case "scheduler":
		loc, err := time.LoadLocation("Asia/Seoul")
		if err != nil {
			panic(err)
		}
		specs := viper.GetStringSlice("schedule.specs")
		if len(specs) == 0 {
			specs = defaultSchedule
		}

		runner := schedule.NewRunner(loc, time.Minute*10)
		for _, spec := range specs {
			if err := runner.Add(spec, task); err != nil {
				panic(err)
			}
		}
		runner.Start()
		defer runner.Stop()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
	default:
		panic("unknown mode: " + *mode)
	}
}
