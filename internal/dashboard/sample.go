package dashboard

import "github.com/joshnel2/dnzdashboard/internal/core"

// SampleData returns the fixed demo dashboard used when no live data is
// available. It is deterministic so screenshots and tests stay stable.
func SampleData() core.DashboardData {
	return core.DashboardData{
		MonthlyDeposits: 425000,
		AttorneyBillableHours: []core.AttorneyHours{
			{Name: "Sarah Johnson", Hours: 168},
			{Name: "Michael Chen", Hours: 152},
			{Name: "Emily Rodriguez", Hours: 145},
			{Name: "David Kim", Hours: 138},
			{Name: "Jennifer Taylor", Hours: 125},
			{Name: "Robert Martinez", Hours: 118},
			{Name: "Lisa Anderson", Hours: 105},
		},
		WeeklyRevenue: []core.WeekPoint{
			{Week: "8/19", Amount: 85000},
			{Week: "8/26", Amount: 92000},
			{Week: "9/2", Amount: 78000},
			{Week: "9/9", Amount: 95000},
			{Week: "9/16", Amount: 88000},
			{Week: "9/23", Amount: 91000},
			{Week: "9/30", Amount: 105000},
			{Week: "10/7", Amount: 98000},
			{Week: "10/14", Amount: 102000},
			{Week: "10/21", Amount: 96000},
			{Week: "10/28", Amount: 89000},
			{Week: "11/4", Amount: 94000},
		},
		YTDTime: []core.MonthHours{
			{Date: "2025-01", Hours: 1250},
			{Date: "2025-02", Hours: 1180},
			{Date: "2025-03", Hours: 1320},
			{Date: "2025-04", Hours: 1290},
			{Date: "2025-05", Hours: 1405},
			{Date: "2025-06", Hours: 1380},
			{Date: "2025-07", Hours: 1295},
			{Date: "2025-08", Hours: 1350},
			{Date: "2025-09", Hours: 1420},
			{Date: "2025-10", Hours: 1155},
		},
		YTDRevenue: []core.MonthAmount{
			{Date: "2025-01", Amount: 385000},
			{Date: "2025-02", Amount: 360000},
			{Date: "2025-03", Amount: 425000},
			{Date: "2025-04", Amount: 410000},
			{Date: "2025-05", Amount: 455000},
			{Date: "2025-06", Amount: 440000},
			{Date: "2025-07", Amount: 395000},
			{Date: "2025-08", Amount: 420000},
			{Date: "2025-09", Amount: 465000},
			{Date: "2025-10", Amount: 425000},
		},
	}
}
