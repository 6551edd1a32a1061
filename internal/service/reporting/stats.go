// Package reporting holds the pure derivations behind the dashboard: herd
// statistics, date filtering, period boundaries and health alerts.
package reporting

import (
	"fmt"

	"github.com/mamadbah2/herdboard/internal/domain/models"
)

// ComputeStats aggregates the herd in a single pass.
func ComputeStats(animals []models.Animal) models.FarmStats {
	var (
		healthy     int
		totalMilk   float64
		totalWeight float64
		totalFeed   float64
	)

	for _, a := range animals {
		if a.HealthStatus == models.HealthHealthy {
			healthy++
		}
		totalMilk += a.Milk()
		totalWeight += a.Weight
		totalFeed += a.Feed()
	}

	stats := models.FarmStats{
		TotalAnimals:        len(animals),
		HealthyAnimals:      healthy,
		SickAnimals:         len(animals) - healthy,
		TotalMilkProduction: totalMilk,
	}
	if len(animals) > 0 {
		stats.AverageWeight = totalWeight / float64(len(animals))
	}
	if totalFeed > 0 {
		stats.FeedEfficiency = totalMilk / totalFeed
	}
	return stats
}

// HealthAlerts lists every animal that is not healthy.
func HealthAlerts(animals []models.Animal) []models.HealthAlert {
	alerts := make([]models.HealthAlert, 0)
	for _, a := range animals {
		if a.HealthStatus == models.HealthHealthy {
			continue
		}
		alerts = append(alerts, models.HealthAlert{
			ID:       a.ID,
			Name:     a.Name,
			Status:   a.HealthStatus,
			Alert:    AlertMessage(a),
			Severity: AlertSeverity(a.HealthStatus),
		})
	}
	return alerts
}

// AlertMessage is the human readable line shown for an alert.
func AlertMessage(a models.Animal) string {
	switch a.HealthStatus {
	case models.HealthSick:
		return fmt.Sprintf("%s requires immediate attention", a.Name)
	case models.HealthUnderObservation:
		return fmt.Sprintf("%s is being monitored", a.Name)
	default:
		return fmt.Sprintf("%s status: %s", a.Name, a.HealthStatus)
	}
}

// AlertSeverity ranks a health status.
func AlertSeverity(status models.HealthStatus) models.AlertSeverity {
	switch status {
	case models.HealthSick:
		return models.SeverityHigh
	case models.HealthUnderObservation:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// MilkProduction builds the chart series for dairy cows.
func MilkProduction(animals []models.Animal) models.MilkProductionData {
	data := models.MilkProductionData{Labels: []string{}, Values: []float64{}}
	for _, a := range animals {
		if a.Type != models.DairyCowType {
			continue
		}
		data.Labels = append(data.Labels, a.Name)
		data.Values = append(data.Values, a.Milk())
		data.Total += a.Milk()
	}
	return data
}
