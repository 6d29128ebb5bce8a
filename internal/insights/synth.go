package insights

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// The dashboard's analysis widgets are demo surfaces: the numbers are
// synthesized, not computed from real datasets. Seeding the generator with
// the dataset id keeps responses stable across requests for the same
// dataset, which the UI relies on when re-rendering charts.

// Summary is the synthesized dataset overview.
type Summary struct {
	DatasetID      string  `json:"datasetId"`
	Rows           int     `json:"rows"`
	Columns        int     `json:"columns"`
	MissingPercent float64 `json:"missingPercent"`
	QualityScore   float64 `json:"qualityScore"`
	GeneratedAt    string  `json:"generatedAt"`
}

// SeriesPoint is one point in a synthesized chart series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is a synthesized chart payload.
type Chart struct {
	DatasetID string        `json:"datasetId"`
	Type      string        `json:"type"`
	Series    []SeriesPoint `json:"series"`
}

// Insight is one synthesized narrative finding.
type Insight struct {
	Title      string  `json:"title"`
	Detail     string  `json:"detail"`
	Confidence float64 `json:"confidence"`
}

func seeded(datasetID string, salt string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(datasetID))
	h.Write([]byte(salt))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// Summarize synthesizes a dataset overview.
func Summarize(datasetID string) Summary {
	rng := seeded(datasetID, "summary")
	return Summary{
		DatasetID:      datasetID,
		Rows:           1000 + rng.Intn(99000),
		Columns:        4 + rng.Intn(28),
		MissingPercent: round2(rng.Float64() * 12),
		QualityScore:   round2(70 + rng.Float64()*30),
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

var chartLabels = map[string][]string{
	"bar":  {"Q1", "Q2", "Q3", "Q4"},
	"line": {"Jan", "Feb", "Mar", "Apr", "May", "Jun"},
	"pie":  {"Category A", "Category B", "Category C", "Other"},
}

// BuildChart synthesizes a chart for the dataset. Unknown chart types fall
// back to a bar chart.
func BuildChart(datasetID, chartType string) Chart {
	labels, ok := chartLabels[chartType]
	if !ok {
		chartType = "bar"
		labels = chartLabels["bar"]
	}

	rng := seeded(datasetID, "chart:"+chartType)
	series := make([]SeriesPoint, 0, len(labels))
	for _, label := range labels {
		series = append(series, SeriesPoint{
			Label: label,
			Value: round2(10 + rng.Float64()*90),
		})
	}
	return Chart{DatasetID: datasetID, Type: chartType, Series: series}
}

var insightBuilders = []func(rng *rand.Rand) Insight{
	func(rng *rand.Rand) Insight {
		return Insight{
			Title:  "Strong correlation detected",
			Detail: fmt.Sprintf("Columns %d and %d show a correlation of %.2f.", 1+rng.Intn(9), 1+rng.Intn(9), rng.Float64()),
		}
	},
	func(rng *rand.Rand) Insight {
		return Insight{
			Title:  "Outliers present",
			Detail: fmt.Sprintf("Approximately %.1f%% of rows in column %d fall outside 3 standard deviations.", rng.Float64()*5, 1+rng.Intn(9)),
		}
	},
	func(rng *rand.Rand) Insight {
		return Insight{
			Title:  "Seasonal trend",
			Detail: fmt.Sprintf("Values in column %d vary by %.0f%% between peak and trough periods.", 1+rng.Intn(9), 10+rng.Float64()*60),
		}
	},
	func(rng *rand.Rand) Insight {
		return Insight{
			Title:  "Missing data cluster",
			Detail: fmt.Sprintf("Column %d is missing %.1f%% of values, concentrated in recent rows.", 1+rng.Intn(9), rng.Float64()*15),
		}
	},
}

// Generate synthesizes narrative insights for the dataset.
func Generate(datasetID string, count int) []Insight {
	if count <= 0 || count > 10 {
		count = 4
	}
	rng := seeded(datasetID, "insights")
	out := make([]Insight, 0, count)
	for i := 0; i < count; i++ {
		insight := insightBuilders[rng.Intn(len(insightBuilders))](rng)
		insight.Confidence = round2(0.5 + rng.Float64()*0.5)
		out = append(out, insight)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
