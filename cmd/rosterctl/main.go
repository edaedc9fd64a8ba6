// rosterctl はサーバを起動せずにスキーマ適用とトレーナー登録を行う運用コマンド
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"roster-backend/internal/platform/auth"
	"roster-backend/internal/platform/config"
	"roster-backend/internal/platform/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "rosterctl",
		Short:        "roster-backend の運用コマンド",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "設定ファイルのパス")

	root.AddCommand(newMigrateCmd(&cfgPath), newAddTrainerCmd(&cfgPath))
	return root
}

// open は設定を読んでDBに接続する
func open(cfgPath string) (*config.Config, *sql.DB, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}

func newMigrateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "テーブルとインデックスを作成する（既存なら何もしない）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, conn, err := open(*cfgPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := db.Migrate(ctx, conn, cfg.DB.Driver); err != nil {
				return err
			}
			log.Printf("[INFO] migrated (%s)", cfg.DB.Driver)
			return nil
		},
	}
}

func newAddTrainerCmd(cfgPath *string) *cobra.Command {
	var id, name, role, password string

	cmd := &cobra.Command{
		Use:   "add-trainer",
		Short: "トレーナー（または管理者）を登録する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := auth.Role(role)
			if !r.Valid() {
				return fmt.Errorf("role must be %q or %q", auth.RoleTrainer, auth.RoleAdmin)
			}
			if password == "" {
				password = os.Getenv("ROSTER_TRAINER_PASSWORD")
			}

			cfg, conn, err := open(*cfgPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := auth.NewService(conn, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
			if err := svc.CreateTrainer(cmd.Context(), id, name, r, password); err != nil {
				return err
			}
			log.Printf("[INFO] trainer %s (%s) created", id, r)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "トレーナーID")
	cmd.Flags().StringVar(&name, "name", "", "表示名")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleTrainer), "trainer | admin")
	cmd.Flags().StringVar(&password, "password", "", "パスワード（省略時は ROSTER_TRAINER_PASSWORD）")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
