package model

// BackfillStatistics is the read-only aggregate over all campaigns
type BackfillStatistics struct {
	TotalCampaigns           int64 `db:"total_campaigns"`
	CampaignsNeedingBackfill int64 `db:"campaigns_needing_backfill"`
	TotalMissingTickets      int64 `db:"total_missing_tickets"`
	LargestMissingCount      int64 `db:"largest_missing_count"`
}

// CampaignBackfill is one campaign whose ticket rows fall short of its
// configured total
type CampaignBackfill struct {
	CampaignID   string         `db:"id"`
	Title        string         `db:"title"`
	Status       CampaignStatus `db:"status"`
	TotalTickets int64          `db:"total_tickets"`
	MissingCount int64          `db:"missing_count"`
}
