package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"minigame-service/internal/app"
	"minigame-service/internal/config"
	"minigame-service/internal/domain"
	"minigame-service/internal/infra/content"
	"minigame-service/internal/infra/memory"
	pgstore "minigame-service/internal/infra/postgres"
	rediscache "minigame-service/internal/infra/redis"
	"minigame-service/internal/tui"
	"minigame-service/internal/validate"
)

// NewValidateCmd checks content files and optionally writes an xlsx review report.
func NewValidateCmd(configPath *string) *cobra.Command {
	var dir, report string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate screen and catalog content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Content.Dir
			}
			return runValidate(dir, report)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "content directory (defaults to content.dir, then the embedded content)")
	cmd.Flags().StringVar(&report, "report", "", "write an xlsx review report to this path")
	return cmd
}

func runValidate(dir, reportPath string) error {
	lib, err := content.LoadDir(dir)
	if err != nil {
		return err
	}
	report := validate.New().Run(lib.Screens(), lib.CatalogEntries())
	for _, skipped := range lib.Skipped() {
		report.Issues = append(report.Issues, validate.Issue{
			ScreenID: skipped.Path,
			Scenario: -1,
			Severity: validate.SeverityError,
			Message:  skipped.Err.Error(),
		})
	}

	for _, issue := range report.Issues {
		fmt.Println(issue.String())
	}
	log.Info("validation finished", "screens", len(report.Screens), "errors", report.Errors(), "warnings", report.Warnings())

	if reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := validate.WriteXLSX(f, report); err != nil {
			return err
		}
		log.Info("report written", "path", reportPath)
	}

	if report.HasErrors() {
		return fmt.Errorf("content has %d errors", report.Errors())
	}
	return nil
}

// NewSeedCmd loads content files into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate content and upsert it into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Content.Dir
			}
			return runSeed(cmd.Context(), cfg, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "content directory (defaults to content.dir, then the embedded content)")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, dir string) error {
	lib, err := content.LoadDir(dir)
	if err != nil {
		return err
	}
	report := validate.New().Run(lib.Screens(), lib.CatalogEntries())
	if report.HasErrors() {
		for _, issue := range report.Issues {
			fmt.Println(issue.String())
		}
		return fmt.Errorf("refusing to seed: content has %d errors", report.Errors())
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	db := pgstore.OpenDB(cfg.Postgres.URL)
	defer db.Close()

	seeder := pgstore.NewSeeder(db)
	screens, err := seeder.SeedScreens(ctx, lib.Screens())
	if err != nil {
		return err
	}
	entries, err := seeder.SeedCatalog(ctx, lib.CatalogEntries())
	if err != nil {
		return err
	}
	log.Info("content seeded", "screens", screens, "catalog", entries)

	if cfg.Redis.Addr == "" {
		return nil
	}
	client := newRedisClient(cfg)
	defer client.Close()
	if err := dropCachedScreens(ctx, client, lib.Screens()); err != nil {
		return fmt.Errorf("content seeded but screen cache not cleared: %w", err)
	}
	return nil
}

// dropCachedScreens evicts reseeded screens so running servers reload them.
func dropCachedScreens(ctx context.Context, client *redis.Client, screens []domain.Screen) error {
	ids := make([]string, 0, len(screens))
	for _, s := range screens {
		ids = append(ids, s.ID)
	}
	if err := rediscache.InvalidateScreens(ctx, client, ids...); err != nil {
		return err
	}
	log.Info("screen cache cleared", "screens", len(ids))
	return nil
}

// NewPlayCmd plays a screen in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var autoAdvance string
	cmd := &cobra.Command{
		Use:   "play <screen-id>",
		Short: "Play a screen in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if autoAdvance == "" {
				autoAdvance = cfg.Play.AutoAdvance
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			service := app.NewPlayService(memory.NewSessionStore(), b.screens, b.catalog)
			return tui.Run(cmd.Context(), service, args[0], config.TTLDuration(autoAdvance, 0))
		},
	}
	cmd.Flags().StringVar(&autoAdvance, "auto-advance", "", "continue after feedback on its own after this delay (e.g. 2s)")
	return cmd
}

// NewScreensCmd lists the available screens.
func NewScreensCmd(configPath *string) *cobra.Command {
	var pillar string
	cmd := &cobra.Command{
		Use:   "screens",
		Short: "List available screens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			screens, err := b.lister.ListScreens(cmd.Context())
			if err != nil {
				return err
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "TITLE", "PILLAR", "QUESTIONS", "NEXT")
			shown := 0
			for _, s := range screens {
				if pillar != "" && s.Pillar != pillar {
					continue
				}
				t.Row(s.ID, s.Title, s.Pillar, fmt.Sprint(s.Questions), s.Next)
				shown++
			}
			fmt.Println(t.Render())
			log.Debug("listed screens", "shown", shown, "total", len(screens))
			return nil
		},
	}
	cmd.Flags().StringVar(&pillar, "pillar", "", "only list screens of this pillar")
	return cmd
}
