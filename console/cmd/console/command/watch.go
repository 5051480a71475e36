package command

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Krimson/vitals-console/console/internal/broadcast"
	"github.com/Krimson/vitals-console/console/internal/render"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow board snapshots published by other consoles over Redis",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !cfg.RedisEnabled() {
		return fmt.Errorf("redis address is required (CONSOLE_REDIS_ADDR or --redis-addr)")
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return broadcast.Listen(ctx, client, cfg.RedisChannel, log, func(s render.Snapshot) {
		line := fmt.Sprintf("[%s] %s", s.State, s.PatientID)
		if s.Status != "" {
			line += " " + s.Status
		}
		if badge, ok := s.Badges[render.SlotRiskBadge]; ok {
			line += " " + badge.Text
		}
		fmt.Println(line)
	})
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
