package dashboard

import (
	"time"

	"github.com/mamadbah2/herdboard/internal/domain/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DemoHerd is the ten-head herd served by the simulated herd API.
func DemoHerd() []models.Animal {
	cow := func(id int64, name, kind string, born time.Time, weight float64, status models.HealthStatus, checkup time.Time, milk, feed float64, notes string) models.Animal {
		return models.Animal{
			ID:              id,
			Name:            name,
			Type:            kind,
			BirthDate:       born,
			Weight:          weight,
			HealthStatus:    status,
			LastCheckup:     checkup,
			MilkProduction:  models.Float(milk),
			FeedConsumption: models.Float(feed),
			Notes:           models.String(notes),
		}
	}

	return []models.Animal{
		cow(1, "Bessie", models.DairyCowType, date(2020, 3, 15), 650, models.HealthHealthy, date(2024, 1, 15), 28.5, 22, "Top producer in the herd"),
		cow(2, "Daisy", models.DairyCowType, date(2019, 6, 20), 680, models.HealthHealthy, date(2024, 1, 14), 26.0, 21, ""),
		cow(3, "Rosie", models.DairyCowType, date(2021, 1, 10), 590, models.HealthUnderObservation, date(2024, 1, 16), 18.5, 19, "Slight decrease in milk production"),
		cow(4, "Buttercup", models.DairyCowType, date(2020, 8, 25), 620, models.HealthHealthy, date(2024, 1, 12), 24.0, 20, ""),
		cow(5, "Stella", models.DairyCowType, date(2018, 11, 30), 710, models.HealthHealthy, date(2024, 1, 13), 22.5, 23, "Senior cow, consistent producer"),
		cow(6, "Clover", "Heifer", date(2022, 5, 18), 420, models.HealthHealthy, date(2024, 1, 15), 0, 15, "Expected to start milking in 6 months"),
		cow(7, "Blue", "Bull", date(2019, 2, 14), 950, models.HealthHealthy, date(2024, 1, 10), 0, 30, "Breeding bull"),
		cow(8, "Penny", models.DairyCowType, date(2021, 7, 22), 580, models.HealthSick, date(2024, 1, 16), 12.0, 16, "Recovering from mastitis, on treatment"),
		cow(9, "Marigold", models.DairyCowType, date(2020, 4, 5), 640, models.HealthHealthy, date(2024, 1, 14), 25.5, 21, ""),
		cow(10, "Luna", models.DairyCowType, date(2021, 9, 12), 550, models.HealthHealthy, date(2024, 1, 15), 20.0, 18, "First lactation"),
	}
}
