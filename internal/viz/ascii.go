package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/aquatox/debsim/internal/simulate"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// Series plots one series against its caption.
func Series(values []float64, caption string) string {
	return asciigraph.Plot(values,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// Trajectory plots every state column of a result, one graph per
// column.
func Trajectory(res *simulate.Result) string {
	var b strings.Builder
	for col, label := range res.Labels {
		caption := fmt.Sprintf("%s vs time", label)
		b.WriteString(Series(res.Column(col), caption))
		b.WriteString("\n\n")
	}
	return b.String()
}
