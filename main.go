package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ASHU16DEV/StaffManager/bot"
	"github.com/ASHU16DEV/StaffManager/config"
	"github.com/ASHU16DEV/StaffManager/dal"
	"github.com/ASHU16DEV/StaffManager/discordutils"
	"github.com/ASHU16DEV/StaffManager/inactive"
	"github.com/ASHU16DEV/StaffManager/rolesync"
	"github.com/ASHU16DEV/StaffManager/staff"
	"github.com/ASHU16DEV/StaffManager/strikes"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("Bot exited with an error.", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := dal.InitDB(cfg.DBPath, log)
	if err != nil {
		return err
	}
	store := dal.New(db)
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("Failed to close database.", zap.Error(err))
		}
	}()

	if cfg.ImportPath != "" {
		if err := store.ImportLegacy(cfg.ImportPath); err != nil {
			return fmt.Errorf("import %v: %w", cfg.ImportPath, err)
		}
		log.Info("Imported legacy data.", zap.String("path", cfg.ImportPath))
	}

	session, err := bot.NewSession(cfg.Token)
	if err != nil {
		return err
	}
	dir := discordutils.NewDirectory(session, log)
	notify := discordutils.NewNotifier(session, log)

	table := rolesync.NewTable(store)
	staffBot := bot.New(session, cfg.GuildID, bot.Services{
		Store:    store,
		Table:    table,
		Sync:     rolesync.NewEngine(store, dir, notify, log),
		Inactive: inactive.New(store, dir, notify, log),
		Strikes:  strikes.New(store, dir, notify, log),
		Staff:    staff.New(store, dir, notify, log),
		Notify:   notify,
	}, log)

	if err := staffBot.Start(); err != nil {
		return err
	}
	defer staffBot.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, sweeper := range []*bot.Sweeper{
		staffBot.InactiveSweeper(cfg.InactiveSweep),
		staffBot.StrikeSweeper(cfg.StrikeSweep),
	} {
		sweeper := sweeper
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweeper.Run(ctx)
		}()
	}

	log.Info("Bot is up. Press Ctrl+C to exit.")
	<-ctx.Done()
	wg.Wait()
	return nil
}
