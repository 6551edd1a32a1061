package models

// WidgetType enumerates dashboard widget kinds.
type WidgetType string

const (
	WidgetStats WidgetType = "stats"
	WidgetChart WidgetType = "chart"
	WidgetList  WidgetType = "list"
)

// Position places a widget on the dashboard grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is the widget footprint in grid cells.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WidgetData is the payload a presentation layer attaches to a widget. At most
// one field is set, matching the widget type.
type WidgetData struct {
	Stats  *FarmStats          `json:"stats,omitempty"`
	Alerts []HealthAlert       `json:"alerts,omitempty"`
	Milk   *MilkProductionData `json:"milk,omitempty"`
}

// DashboardWidget describes one tile of the dashboard layout.
type DashboardWidget struct {
	ID       string      `json:"id"`
	Type     WidgetType  `json:"type"`
	Title    string      `json:"title"`
	Data     *WidgetData `json:"data"`
	Position Position    `json:"position"`
	Size     Size        `json:"size"`
}

// Clone returns a deep copy of the payload.
func (d *WidgetData) Clone() *WidgetData {
	if d == nil {
		return nil
	}
	out := &WidgetData{}
	if d.Stats != nil {
		stats := *d.Stats
		out.Stats = &stats
	}
	if d.Alerts != nil {
		out.Alerts = append([]HealthAlert(nil), d.Alerts...)
	}
	if d.Milk != nil {
		out.Milk = &MilkProductionData{
			Labels: append([]string(nil), d.Milk.Labels...),
			Values: append([]float64(nil), d.Milk.Values...),
			Total:  d.Milk.Total,
		}
	}
	return out
}

// Clone returns a copy of w that shares no payload with it.
func (w DashboardWidget) Clone() DashboardWidget {
	w.Data = w.Data.Clone()
	return w
}

// DefaultWidgets returns the stock dashboard layout.
func DefaultWidgets() []DashboardWidget {
	return []DashboardWidget{
		{ID: "widget-1", Type: WidgetStats, Title: "Farm Overview", Position: Position{X: 0, Y: 0}, Size: Size{Width: 4, Height: 2}},
		{ID: "widget-2", Type: WidgetChart, Title: "Milk Production Trend", Position: Position{X: 4, Y: 0}, Size: Size{Width: 4, Height: 2}},
		{ID: "widget-3", Type: WidgetList, Title: "Recent Health Alerts", Position: Position{X: 8, Y: 0}, Size: Size{Width: 4, Height: 2}},
	}
}
