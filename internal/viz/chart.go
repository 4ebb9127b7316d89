package viz

import (
	"os"

	"github.com/wcharczuk/go-chart/v2"
)

// Overlay is one named curve or point set for a PNG figure.
type Overlay struct {
	Label  string
	Times  []float64
	Values []float64
	// Scatter renders dots without a connecting line, for observed
	// data over a model curve.
	Scatter bool
}

// WritePNG renders the overlays into a PNG chart at path.
func WritePNG(path, title string, overlays []Overlay) error {
	series := make([]chart.Series, 0, len(overlays))
	for _, o := range overlays {
		s := chart.ContinuousSeries{
			Name:    o.Label,
			XValues: o.Times,
			YValues: o.Values,
		}
		if o.Scatter {
			s.Style = chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
			}
		}
		series = append(series, s)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 450,
		XAxis: chart.XAxis{
			Name: "time (d)",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return graph.Render(chart.PNG, file)
}
