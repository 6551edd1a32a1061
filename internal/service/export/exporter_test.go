package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdboard/internal/domain/models"
)

var generatedAt = time.Date(2024, 1, 20, 9, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleHerd() []models.Animal {
	return []models.Animal{
		{
			ID: 1, Name: "Bessie", Type: models.DairyCowType,
			BirthDate: day(2020, 3, 15), Weight: 650, HealthStatus: models.HealthHealthy,
			LastCheckup: day(2024, 1, 15), MilkProduction: models.Float(28.5),
			FeedConsumption: models.Float(22), Notes: models.String("Top, producer"),
		},
		{
			ID: 2, Name: "Penny", Type: models.DairyCowType,
			BirthDate: day(2021, 7, 22), Weight: 580, HealthStatus: models.HealthSick,
			LastCheckup: day(2024, 1, 16),
		},
	}
}

func sampleStats() *models.FarmStats {
	return &models.FarmStats{
		TotalAnimals: 10, HealthyAnimals: 8, SickAnimals: 2,
		TotalMilkProduction: 203, AverageWeight: 639, FeedEfficiency: 0.98,
	}
}

func newExporter(mode Mode) *Exporter {
	return New(mode, nil, WithClock(func() time.Time { return generatedAt }))
}

func TestBuildQuoted(t *testing.T) {
	out, err := newExporter(QuoteRFC4180).Build(sampleHerd(), sampleStats())
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, "Farm Dashboard Export\r\nGenerated,2024-01-20T09:30:00Z\r\n\r\n"))
	assert.Contains(t, doc, "Current Farm Statistics\r\nMetric,Value\r\nTotal Animals,10\r\n")
	assert.Contains(t, doc, "Feed Efficiency,0.98\r\n")
	assert.Contains(t, doc, "Health Alerts\r\nID,Name,Status,Alert,Severity\r\n2,Penny,Sick,Penny requires immediate attention,high\r\n")
	assert.Contains(t, doc, "1,Bessie,Dairy Cow,2020-03-15,650,Healthy,2024-01-15,28.5,22,\"Top, producer\"\r\n")
	assert.Contains(t, doc, "2,Penny,Dairy Cow,2021-07-22,580,Sick,2024-01-16,,,\r\n")
	assert.True(t, strings.HasSuffix(doc, "\r\n\r\nEnd of Report\r\n"))
	assert.False(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))
}

func TestQuotedRoundTripsThroughCSVReader(t *testing.T) {
	herd := sampleHerd()
	herd[1].Notes = models.String("said \"moo\"\non arrival")

	out, err := newExporter(QuoteRFC4180).Build(herd, sampleStats())
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	var notes []string
	for _, rec := range records {
		if len(rec) == len(recordsHeader) && rec[0] != "ID" {
			notes = append(notes, rec[9])
		}
	}
	assert.Equal(t, []string{"Top, producer", "said \"moo\"\non arrival"}, notes)
}

func TestBuildSanitized(t *testing.T) {
	herd := sampleHerd()
	herd[1].Notes = models.String("said \"moo\"\r\non arrival")

	out, err := newExporter(SanitizeLegacy).Build(herd, sampleStats())
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "Total Animals,10\r\n")
	assert.Contains(t, doc, "2,Penny,Sick,Penny requires immediate attention,high\r\n")
	assert.Contains(t, doc, ",Top; producer\r\n")
	assert.Contains(t, doc, ",said moo on arrival\r\n")
	assert.NotContains(t, doc, `"`)
	assert.True(t, strings.HasSuffix(doc, "End of Report\r\n"))
}

func TestBuildEmpty(t *testing.T) {
	for _, mode := range []Mode{QuoteRFC4180, SanitizeLegacy} {
		t.Run(mode.String(), func(t *testing.T) {
			out, err := newExporter(mode).Build(nil, nil)
			require.NoError(t, err)

			want := strings.Join([]string{
				"Farm Dashboard Export",
				"Generated,2024-01-20T09:30:00Z",
				"",
				"Current Farm Statistics",
				"No statistics available",
				"",
				"Health Alerts",
				"No health alerts",
				"",
				"Animal Records",
				"No animal records",
				"",
				"End of Report",
				"",
			}, "\r\n")
			assert.Equal(t, want, string(out))
		})
	}
}

func TestRowsSectionsOrder(t *testing.T) {
	rows := newExporter(QuoteRFC4180).Rows(sampleHerd(), sampleStats())

	var titles []string
	for i, row := range rows {
		if len(row) == 1 && i > 0 && len(rows[i-1]) == 0 {
			titles = append(titles, row[0])
		}
	}
	assert.Equal(t, []string{"Current Farm Statistics", "Health Alerts", "Animal Records", "End of Report"}, titles)
}

func TestFilenameAndMode(t *testing.T) {
	assert.Equal(t, "farm-dashboard-export-2024-01-20.csv", Filename(generatedAt))
	assert.Equal(t, SanitizeLegacy, ModeFromConfig("sanitize"))
	assert.Equal(t, QuoteRFC4180, ModeFromConfig("quoted"))
	assert.Equal(t, QuoteRFC4180, ModeFromConfig(""))
}
