package models

import "time"

// FarmStats is an aggregate snapshot of the whole herd.
type FarmStats struct {
	TotalAnimals        int     `json:"totalAnimals"`
	HealthyAnimals      int     `json:"healthyAnimals"`
	SickAnimals         int     `json:"sickAnimals"`
	TotalMilkProduction float64 `json:"totalMilkProduction"`
	AverageWeight       float64 `json:"averageWeight"`
	FeedEfficiency      float64 `json:"feedEfficiency"`
}

// ReportPeriod tags the granularity of a report.
type ReportPeriod string

const (
	PeriodDaily     ReportPeriod = "daily"
	PeriodWeekly    ReportPeriod = "weekly"
	PeriodMonthly   ReportPeriod = "monthly"
	PeriodQuarterly ReportPeriod = "quarterly"
	PeriodYearly    ReportPeriod = "yearly"
	PeriodCustom    ReportPeriod = "custom"
)

// ReportData is a date-bounded view of the herd.
//
// Stats covers every animal in the herd while Animals only holds the records
// whose last checkup falls in the period; PeriodStats is computed over Animals.
type ReportData struct {
	Period      ReportPeriod `json:"period"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	Animals     []Animal     `json:"animals"`
	Stats       FarmStats    `json:"stats"`
	PeriodStats FarmStats    `json:"periodStats"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// AlertSeverity ranks health alerts.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// HealthAlert flags an animal that is not healthy.
type HealthAlert struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Status   HealthStatus  `json:"status"`
	Alert    string        `json:"alert"`
	Severity AlertSeverity `json:"severity"`
}

// MilkProductionData feeds the milk production chart.
type MilkProductionData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Total  float64   `json:"total"`
}
