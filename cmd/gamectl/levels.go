package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/logger"
	pgRepo "github.com/ConnorBoetig-dev/morepractice-sub001/internal/repository/postgres"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service"
	"github.com/ConnorBoetig-dev/morepractice-sub001/pkg/database"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Check cached profile levels against accumulated XP",
}

var levelsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report profiles whose cached level does not match their XP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLevelAudit(cmd, false)
	},
}

var levelsRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Recompute and store levels for mismatched profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLevelAudit(cmd, true)
	},
}

func init() {
	levelsCmd.PersistentFlags().Int("batch", 500, "Profiles per batch")
	levelsCmd.AddCommand(levelsVerifyCmd)
	levelsCmd.AddCommand(levelsRepairCmd)
}

func runLevelAudit(cmd *cobra.Command, repair bool) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgresDB(cfg.Database, logger.GormLevel(cfg.Log.SQLLevel))
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	batch, _ := cmd.Flags().GetInt("batch")
	audit := service.NewLevelAuditService(pgRepo.NewTransactor(db, cfg.Gamification.TxMaxRetries, log), pgRepo.NewStore(db), log)
	report, err := audit.Audit(cmd.Context(), repair, batch)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(report.Mismatches) > 0 {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USER\tXP\tSTORED\tCOMPUTED")
		for _, m := range report.Mismatches {
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", m.UserID, m.XP, m.Stored, m.Computed)
		}
		_ = w.Flush()
	}
	fmt.Fprintf(out, "checked %d profiles, %d mismatched, %d repaired\n",
		report.Checked, len(report.Mismatches), report.Repaired)
	return nil
}
