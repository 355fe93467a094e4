package pipeline

import (
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/ygidtu/NetProphet-2.0/internal/errors"
)

// Fill colors of the stage vertices.
var (
	completeRGB = [3]uint8{16, 185, 129}  // green
	nextRGB     = [3]uint8{245, 158, 11}  // amber
	pendingRGB  = [3]uint8{156, 163, 175} // gray
)

// WriteGraph writes the stage chain to w as a Graphviz DOT digraph. Every
// stage is a vertex filled by its recorded state, and every edge points
// from a stage to the stage that requires it.
func (c *Controller) WriteGraph(w io.Writer) error {
	summary, err := c.summarize()
	if err != nil {
		return err
	}

	g := graph.New(graph.IntHash, graph.Directed(), graph.Acyclic())
	for _, s := range summary.Stages {
		fill, err := fillColor(s, summary.Next)
		if err != nil {
			return err
		}
		err = g.AddVertex(s.ID,
			graph.VertexAttribute("label", fmt.Sprintf("%d %s", s.ID, s.Name)),
			graph.VertexAttribute("shape", "box"),
			graph.VertexAttribute("style", "filled"),
			graph.VertexAttribute("fillcolor", fill),
		)
		if err != nil {
			return errors.Wrapf(err, "unable to add vertex for stage %d", s.ID)
		}
	}
	for i := 1; i < len(summary.Stages); i++ {
		if err := g.AddEdge(summary.Stages[i-1].ID, summary.Stages[i].ID); err != nil {
			return errors.Wrapf(err, "unable to add edge from %d to %d", i, i+1)
		}
	}

	if err := draw.DOT(g, w, draw.GraphAttribute("rankdir", "LR")); err != nil {
		return errors.Wrap(err, "unable to render dot graph")
	}
	return nil
}

func fillColor(s StageStatus, next int) (string, error) {
	rgb := pendingRGB
	switch {
	case s.Complete:
		rgb = completeRGB
	case s.ID == next:
		rgb = nextRGB
	}

	color, err := colors.RGB(rgb[0], rgb[1], rgb[2])
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}
	return color.ToHEX().String(), nil
}
