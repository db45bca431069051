package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/lib/pq"

	"github.com/rifapix/settlement/config"
	"github.com/rifapix/settlement/pkg/otellib"
	"github.com/rifapix/settlement/repository"
	"github.com/rifapix/settlement/service/backfill"
	"github.com/rifapix/settlement/service/cleanup"
)

func main() {
	rootCmd := cobra.Command{
		Use: "admin",
	}
	rootCmd.AddCommand(
		backfillCommand(),
		cleanupCommand(),
	)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
	}
}

type deps struct {
	conf     config.Config
	provider repository.Provider

	campaignRepo repository.Campaign
	ticketRepo   repository.Ticket
	logRepo      repository.CleanupLog

	ctx context.Context
}

func newDeps() *deps {
	conf := config.Load()
	logger := config.NewLogger(conf.Log)

	db := conf.Postgres.MustConnect()

	return &deps{
		conf:     conf,
		provider: repository.NewProvider(db),

		campaignRepo: repository.NewCampaign(),
		ticketRepo:   repository.NewTicket(),
		logRepo:      repository.NewCleanupLog(),

		ctx: otellib.ToContext(context.Background(), logger),
	}
}

func (d *deps) backfillEngine() *backfill.Engine {
	return backfill.NewEngine(d.provider, d.campaignRepo, d.ticketRepo, d.logRepo)
}

func backfillCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "ticket inventory statistics and repair",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "show backfill statistics",
		Run: func(cmd *cobra.Command, args []string) {
			d := newDeps()
			stats, err := d.backfillEngine().Statistics(d.ctx)
			if err != nil {
				panic(err)
			}
			fmt.Println("Total campaigns:          ", stats.TotalCampaigns)
			fmt.Println("Campaigns needing backfill:", stats.CampaignsNeedingBackfill)
			fmt.Println("Total missing tickets:    ", stats.TotalMissingTickets)
			fmt.Println("Largest missing count:    ", stats.LargestMissingCount)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "list campaigns needing repair",
		Run: func(cmd *cobra.Command, args []string) {
			d := newDeps()
			campaigns, err := d.backfillEngine().CampaignsNeedingRepair(d.ctx)
			if err != nil {
				panic(err)
			}
			for _, c := range campaigns {
				fmt.Printf("%s  %-40q missing %d of %d (%s)\n",
					c.CampaignID, c.Title, c.MissingCount, c.TotalTickets, c.Status)
			}
			fmt.Println(len(campaigns), "campaigns need repair")
		},
	})

	var campaignID string
	var batchSize int

	repairCmd := &cobra.Command{
		Use:   "repair",
		Short: "create missing ticket rows, one campaign or all",
		Run: func(cmd *cobra.Command, args []string) {
			d := newDeps()
			engine := d.backfillEngine()

			if batchSize <= 0 {
				batchSize = d.conf.Backfill.BatchSize
			}

			if campaignID != "" {
				result, err := engine.RepairCampaign(d.ctx, campaignID, batchSize)
				if err != nil {
					panic(err)
				}
				printRepair(result)
				return
			}

			result, err := engine.RepairAll(d.ctx, batchSize)
			if err != nil {
				panic(err)
			}
			for _, r := range result.Campaigns {
				printRepair(r)
			}
			fmt.Println("Total created:", result.TotalCreated, "errors:", result.Errors)
		},
	}
	repairCmd.Flags().StringVar(&campaignID, "campaign", "", "repair a single campaign")
	repairCmd.Flags().IntVar(&batchSize, "batch", 0, "insert batch size, config value when 0")
	cmd.AddCommand(repairCmd)

	return cmd
}

func printRepair(result backfill.RepairResult) {
	fmt.Printf("%s %q: needed %d, existing %d, created %d, failed batches %d\n",
		result.CampaignID, result.CampaignTitle,
		result.TotalNeeded, result.Existing, result.Created, result.FailedBatches)
}

func cleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "expire stale drafts and prune old logs",
	}

	var retentionDays int

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one cleanup pass",
		Run: func(cmd *cobra.Command, args []string) {
			d := newDeps()
			engine := cleanup.NewEngine(d.provider, d.campaignRepo, d.logRepo)

			result, err := engine.ExpireDraftCampaigns(d.ctx, time.Now())
			if err != nil {
				panic(err)
			}
			for _, c := range result.Deleted {
				fmt.Printf("deleted draft %s %q\n", c.ID, c.Title)
			}
			fmt.Println("Expired drafts:", len(result.Deleted), "errors:", result.Errors)

			removed, err := engine.PruneOldLogs(d.ctx, time.Duration(retentionDays)*24*time.Hour)
			if err != nil {
				fmt.Println("[WARN] pruning old logs failed:", err)
				return
			}
			fmt.Println("Pruned log entries:", removed)
		},
	}
	runCmd.Flags().IntVar(&retentionDays, "retention-days", 90, "audit log retention in days")
	cmd.AddCommand(runCmd)

	return cmd
}
