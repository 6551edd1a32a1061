// Package export renders the dashboard view as a four-section CSV document.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/config"
	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/service/reporting"
)

// ContentType is the MIME type of an export.
const ContentType = "text/csv"

const (
	title        = "Farm Dashboard Export"
	statsTitle   = "Current Farm Statistics"
	alertsTitle  = "Health Alerts"
	recordsTitle = "Animal Records"
	footer       = "End of Report"

	noStats   = "No statistics available"
	noAlerts  = "No health alerts"
	noRecords = "No animal records"
)

var (
	statsHeader   = []string{"Metric", "Value"}
	alertsHeader  = []string{"ID", "Name", "Status", "Alert", "Severity"}
	recordsHeader = []string{
		"ID", "Name", "Type", "Birth Date", "Weight (kg)", "Health Status",
		"Last Checkup", "Milk Production (L/day)", "Feed Consumption (kg/day)", "Notes",
	}
)

// Mode selects how field values are encoded.
type Mode int

const (
	// QuoteRFC4180 quotes fields that need it and doubles embedded quotes.
	QuoteRFC4180 Mode = iota
	// SanitizeLegacy rewrites values instead of quoting them: commas become
	// semicolons, double quotes are dropped and line breaks become spaces.
	SanitizeLegacy
)

// ModeFromConfig maps EXPORT_CSV_MODE onto a Mode.
func ModeFromConfig(value string) Mode {
	if value == config.CSVModeSanitize {
		return SanitizeLegacy
	}
	return QuoteRFC4180
}

func (m Mode) String() string {
	if m == SanitizeLegacy {
		return config.CSVModeSanitize
	}
	return config.CSVModeQuoted
}

// Exporter formats data it is handed; it never fetches anything itself.
type Exporter struct {
	mode   Mode
	now    func() time.Time
	logger *zap.Logger
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithClock overrides the clock used for the Generated row.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New builds an Exporter.
func New(mode Mode, logger *zap.Logger, opts ...Option) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Exporter{mode: mode, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the configured encoding.
func (e *Exporter) Mode() Mode { return e.mode }

// Filename names an export produced at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("farm-dashboard-export-%s.csv", reporting.FormatISO(now))
}

// Rows lays the export out as a table. Empty rows separate the sections.
func (e *Exporter) Rows(animals []models.Animal, stats *models.FarmStats) [][]string {
	rows := [][]string{
		{title},
		{"Generated", e.now().UTC().Format(time.RFC3339)},
		{},
		{statsTitle},
	}

	if stats == nil {
		rows = append(rows, []string{noStats})
	} else {
		rows = append(rows,
			statsHeader,
			[]string{"Total Animals", strconv.Itoa(stats.TotalAnimals)},
			[]string{"Healthy Animals", strconv.Itoa(stats.HealthyAnimals)},
			[]string{"Sick Animals", strconv.Itoa(stats.SickAnimals)},
			[]string{"Total Milk Production (L)", decimal(stats.TotalMilkProduction)},
			[]string{"Average Weight (kg)", decimal(stats.AverageWeight)},
			[]string{"Feed Efficiency", decimal(stats.FeedEfficiency)},
		)
	}

	rows = append(rows, []string{}, []string{alertsTitle})
	alerts := reporting.HealthAlerts(animals)
	if len(alerts) == 0 {
		rows = append(rows, []string{noAlerts})
	} else {
		rows = append(rows, alertsHeader)
		for _, a := range alerts {
			rows = append(rows, []string{
				strconv.FormatInt(a.ID, 10), a.Name, string(a.Status), a.Alert, string(a.Severity),
			})
		}
	}

	rows = append(rows, []string{}, []string{recordsTitle})
	if len(animals) == 0 {
		rows = append(rows, []string{noRecords})
	} else {
		rows = append(rows, recordsHeader)
		for _, a := range animals {
			rows = append(rows, recordRow(a))
		}
	}

	return append(rows, []string{}, []string{footer})
}

// Build renders the export document. Lines end with CRLF and no byte-order
// mark is written.
func (e *Exporter) Build(animals []models.Animal, stats *models.FarmStats) ([]byte, error) {
	rows := e.Rows(animals, stats)

	var (
		out []byte
		err error
	)
	switch e.mode {
	case SanitizeLegacy:
		out = encodeSanitized(rows)
	default:
		out, err = encodeQuoted(rows)
	}
	if err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}

	e.logger.Debug("csv export built",
		zap.Stringer("mode", e.mode),
		zap.Int("animals", len(animals)),
		zap.Int("bytes", len(out)),
	)
	return out, nil
}

func encodeQuoted(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var sanitizer = strings.NewReplacer(
	",", ";",
	`"`, "",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

func encodeSanitized(rows [][]string) []byte {
	var buf bytes.Buffer
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(sanitizer.Replace(field))
		}
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

func recordRow(a models.Animal) []string {
	return []string{
		strconv.FormatInt(a.ID, 10),
		a.Name,
		a.Type,
		reporting.FormatISO(a.BirthDate),
		number(a.Weight),
		string(a.HealthStatus),
		reporting.FormatISO(a.LastCheckup),
		optionalNumber(a.MilkProduction),
		optionalNumber(a.FeedConsumption),
		optionalString(a.Notes),
	}
}

func number(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func decimal(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func optionalNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return number(*v)
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
