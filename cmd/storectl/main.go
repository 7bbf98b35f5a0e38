package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"syscall"

	"github.com/safar/printshop/internal/config"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/logging"
	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/seed"
	"github.com/safar/printshop/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("").Fatalf("Load config: %v", err)
	}
	log := logging.New(cfg.Env)

	rootCmd := &cobra.Command{
		Use:           "storectl",
		Short:         "print shop maintenance tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		migrateCommand(cfg, log),
		seedCommand(cfg, log),
		usersCommand(cfg, log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func migrateCommand(cfg *config.Config, log logrus.FieldLogger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "manage the database schema",
	}

	var upSteps int
	up := &cobra.Command{
		Use:   "up",
		Short: "apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(cfg.Database.MigrationsDir, cfg.Database.URL, upSteps); err != nil {
				return err
			}
			return reportVersion(cfg, log)
		},
	}
	up.Flags().IntVar(&upSteps, "steps", 0, "number of migrations to apply (0 applies all)")

	var downSteps int
	var all bool
	down := &cobra.Command{
		Use:   "down",
		Short: "roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			switch {
			case all:
				err = database.MigrateDown(cfg.Database.MigrationsDir, cfg.Database.URL)
			case downSteps > 0:
				err = database.Migrate(cfg.Database.MigrationsDir, cfg.Database.URL, -downSteps)
			default:
				return fmt.Errorf("pass --steps N or --all")
			}
			if err != nil {
				return err
			}
			return reportVersion(cfg, log)
		},
	}
	down.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")
	down.Flags().BoolVar(&all, "all", false, "roll back every migration")

	version := &cobra.Command{
		Use:   "version",
		Short: "print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportVersion(cfg, log)
		},
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "create an empty up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, down, err := createMigration(cfg.Database.MigrationsDir, args[0])
			if err != nil {
				return err
			}
			log.Infof("Created SQL up script: %s", up)
			log.Infof("Created SQL down script: %s", down)
			return nil
		},
	}

	cmd.AddCommand(up, down, version, create)
	return cmd
}

func reportVersion(cfg *config.Config, log logrus.FieldLogger) error {
	version, dirty, err := database.MigrationVersion(cfg.Database.MigrationsDir, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Schema version")
	return nil
}

var migrationName = regexp.MustCompile(`^[a-z0-9_]+$`)
var migrationFile = regexp.MustCompile(`^(\d+)_.*\.(up|down)\.sql$`)

// createMigration numbers the new pair one past the highest existing
// sequence number in dir.
func createMigration(dir, name string) (string, string, error) {
	if !migrationName.MatchString(name) {
		return "", "", fmt.Errorf("migration name %q must be lower_snake_case", name)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("read migrations dir: %w", err)
	}

	var seqs []int
	for _, e := range entries {
		if m := migrationFile.FindStringSubmatch(e.Name()); m != nil {
			n, _ := strconv.Atoi(m[1])
			seqs = append(seqs, n)
		}
	}
	sort.Ints(seqs)
	next := 1
	if len(seqs) > 0 {
		next = seqs[len(seqs)-1] + 1
	}

	base := filepath.Join(dir, fmt.Sprintf("%06d_%s", next, name))
	up, down := base+".up.sql", base+".down.sql"
	for _, path := range []string{up, down} {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return "", "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	return up, down, nil
}

func seedCommand(cfg *config.Config, log logrus.FieldLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "load categories and products from a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			catalog, err := seed.Parse(f)
			if err != nil {
				return err
			}

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := seed.Apply(cmd.Context(), db, catalog, log)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"categories": result.CategoriesCreated,
				"products":   result.ProductsCreated,
				"skipped":    result.Skipped,
			}).Info("Catalog seeded")
			return nil
		},
	}
}

func usersCommand(cfg *config.Config, log logrus.FieldLogger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "manage user accounts",
	}

	promote := &cobra.Command{
		Use:   "promote EMAIL",
		Short: "grant the admin role to a registered user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			user, err := store.GetUserByEmail(ctx, db, args[0])
			if err != nil {
				return fmt.Errorf("find %s: %w", args[0], err)
			}
			if _, err := store.UpdateUserRole(ctx, db, user.ID, models.RoleAdmin); err != nil {
				return err
			}
			log.WithField("email", user.Email).Info("User promoted to admin")
			return nil
		},
	}

	cmd.AddCommand(promote)
	return cmd
}
