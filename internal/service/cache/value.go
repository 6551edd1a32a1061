package cache

import "github.com/mamadbah2/herdboard/internal/domain/models"

// Kind tags the payload carried by a Value.
type Kind string

const (
	KindAnimals Kind = "animals"
	KindStats   Kind = "stats"
	KindReport  Kind = "report"
	KindWidgets Kind = "widgets"
)

// Value is a tagged union over the payloads the dashboard memoizes. Exactly
// the field matching Kind is populated.
type Value struct {
	Kind    Kind                     `json:"kind"`
	Animals []models.Animal          `json:"animals,omitempty"`
	Stats   *models.FarmStats        `json:"stats,omitempty"`
	Report  *models.ReportData       `json:"report,omitempty"`
	Widgets []models.DashboardWidget `json:"widgets,omitempty"`
}

// AnimalsValue wraps a herd listing.
func AnimalsValue(animals []models.Animal) Value {
	return Value{Kind: KindAnimals, Animals: animals}
}

// StatsValue wraps a stats snapshot.
func StatsValue(stats models.FarmStats) Value {
	return Value{Kind: KindStats, Stats: &stats}
}

// ReportValue wraps a report.
func ReportValue(report models.ReportData) Value {
	return Value{Kind: KindReport, Report: &report}
}

// WidgetsValue wraps a dashboard layout.
func WidgetsValue(widgets []models.DashboardWidget) Value {
	return Value{Kind: KindWidgets, Widgets: widgets}
}

// AsAnimals unwraps a herd listing.
func (v Value) AsAnimals() ([]models.Animal, bool) {
	if v.Kind != KindAnimals {
		return nil, false
	}
	if v.Animals == nil {
		return []models.Animal{}, true
	}
	return v.Animals, true
}

// AsStats unwraps a stats snapshot.
func (v Value) AsStats() (models.FarmStats, bool) {
	if v.Kind != KindStats || v.Stats == nil {
		return models.FarmStats{}, false
	}
	return *v.Stats, true
}

// AsReport unwraps a report.
func (v Value) AsReport() (models.ReportData, bool) {
	if v.Kind != KindReport || v.Report == nil {
		return models.ReportData{}, false
	}
	return *v.Report, true
}

// AsWidgets unwraps a dashboard layout.
func (v Value) AsWidgets() ([]models.DashboardWidget, bool) {
	if v.Kind != KindWidgets {
		return nil, false
	}
	if v.Widgets == nil {
		return []models.DashboardWidget{}, true
	}
	return v.Widgets, true
}
