// Command cabosim plays rounds of Cabo between decision providers and
// reports the results. It can also host providers for remote seats.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/cabo/engine"
	"github.com/jason-s-yu/cabo/service/internal/cache"
	"github.com/jason-s-yu/cabo/service/internal/config"
	"github.com/jason-s-yu/cabo/service/internal/database"
	"github.com/jason-s-yu/cabo/service/internal/game"
	"github.com/jason-s-yu/cabo/service/internal/models"
	"github.com/sirupsen/logrus"
)

var cmdArgs arg

type arg struct {
	rounds     int
	seed       uint64
	seats      [engine.NumPlayers]string
	envFile    string
	rulesFile  string
	listen     string
	policyFile string
}

func init() {
	flag.IntVar(&cmdArgs.rounds, "rounds", 100, "Rounds to play. 0 only serves -listen until interrupted.")
	flag.Uint64Var(&cmdArgs.seed, "seed", uint64(time.Now().UnixNano()), "Seed of the first round; round i uses seed+i.")
	flag.StringVar(&cmdArgs.seats[0], "p0", "heuristic", "Seat 0 provider: random, heuristic, policy:<file> or remote:<ws-url>")
	flag.StringVar(&cmdArgs.seats[1], "p1", "random", "Seat 1 provider, same forms as -p0")
	flag.StringVar(&cmdArgs.envFile, "env", ".env", "Optional env file")
	flag.StringVar(&cmdArgs.rulesFile, "rules", "", "House rules YAML file, overrides "+config.EnvRulesFile)
	flag.StringVar(&cmdArgs.listen, "listen", "", "Address for /healthz, /metrics and /provider/{name}, overrides "+config.EnvMetricsAddr)
	flag.StringVar(&cmdArgs.policyFile, "policy", "", "Policy weights served as /provider/policy")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(cmdArgs.envFile)
	if err != nil {
		logrus.WithError(err).Error("Error loading configuration")
		return 1
	}
	if cmdArgs.rulesFile != "" {
		if cfg.Rules, err = config.LoadRules(cmdArgs.rulesFile); err != nil {
			logrus.WithError(err).Error("Error loading house rules")
			return 1
		}
	}
	log := cfg.NewLogger().WithField("logger_name", "cabosim")
	log.WithField("rules", cfg.Rules).Info("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			log.WithError(err).Error("Error connecting to database")
			return 1
		}
		defer database.Close()
		database.Log = log.WithField("component", "database")
		if err := database.Migrate(ctx); err != nil {
			log.WithError(err).Error("Error migrating database")
			return 1
		}
	}
	if cfg.RedisAddr != "" {
		if err := cache.Connect(ctx, cfg.RedisAddr); err != nil {
			log.WithError(err).Error("Error connecting to redis")
			return 1
		}
		defer cache.Close()
	}

	addr := cmdArgs.listen
	if addr == "" {
		addr = cfg.MetricsAddr
	}
	if addr != "" {
		hosted, err := hostedProviders(cmdArgs.policyFile, cmdArgs.seed)
		if err != nil {
			log.WithError(err).Error("Error loading hosted providers")
			return 1
		}
		srv := &http.Server{Addr: addr, Handler: newRouter(log, hosted), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			log.WithField("addr", addr).Info("http server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("http server stopped")
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if cmdArgs.rounds <= 0 {
		if addr == "" {
			log.Error("nothing to do: -rounds is 0 and no -listen address")
			return 1
		}
		<-ctx.Done()
		return 0
	}

	var providers [engine.NumPlayers]engine.DecisionProvider
	for seat, choice := range cmdArgs.seats {
		p, closeFn, err := newProvider(choice, cmdArgs.seed+uint64(seat), log.WithField("seat", seat))
		if err != nil {
			log.WithError(err).WithField("seat", seat).Error("Error creating provider")
			return 1
		}
		defer closeFn()
		providers[seat] = p
	}

	sum := newSummary()
	for i := 0; i < cmdArgs.rounds; i++ {
		g := game.NewCaboGame(cfg.Rules, log)
		g.Seed = cmdArgs.seed + uint64(i)
		g.DecisionTimeout = cfg.DecisionTimeout
		for seat, choice := range cmdArgs.seats {
			player := &models.Player{
				ID:        uuid.New(),
				User:      &models.User{ID: uuid.New(), Username: "seat" + string(rune('0'+seat))},
				Connected: true,
				Provider:  choice,
			}
			if err := g.AddPlayer(player, providers[seat]); err != nil {
				log.WithError(err).Error("Error seating player")
				return 1
			}
		}

		res, err := g.Play(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Warn("interrupted")
				break
			}
			sum.aborted++
			continue
		}
		sum.add(res)
	}
	sum.report(log)
	return 0
}
