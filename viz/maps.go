// ABOUTME: Graphviz rendering for the stakeholder/territory maps and the opportunity pipeline
// ABOUTME: Produces DOT source for export and previews
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/keyaccounts/graph"
	"github.com/harperreed/keyaccounts/models"
)

// render runs build against a fresh graph and returns the DOT output.
func render(ctx context.Context, build func(g *cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			log.Warn("closing graphviz", "err", err)
		}
	}()

	g, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := g.Close(); err != nil {
			log.Warn("closing graph", "err", err)
		}
	}()

	if err := build(g); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

// RenderMap renders an editor snapshot. Node placement is left to neato.
func RenderMap(ctx context.Context, snap graph.Snapshot) (string, error) {
	return render(ctx, func(g *cgraph.Graph) error {
		g.SetLayout("neato")
		g.SetLabel(mapTitle(snap.Variant))

		nodes := make(map[string]*cgraph.Node, len(snap.Nodes))
		for _, n := range snap.Nodes {
			node, err := g.CreateNodeByName(n.ID)
			if err != nil {
				return fmt.Errorf("failed to create node %s: %w", n.ID, err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%s", n.Label(), n.Subtitle()))
			node.SetStyle("filled")
			switch n.Kind {
			case graph.KindAccount:
				node.SetShape("box")
				styleAccount(node, n.Account)
			default:
				node.SetShape("ellipse")
				node.SetFillColor("lightgreen")
			}
			nodes[n.ID] = node
		}

		for _, e := range snap.Edges {
			src, ok1 := nodes[e.Source]
			dst, ok2 := nodes[e.Target]
			if !ok1 || !ok2 {
				continue
			}
			edge, err := g.CreateEdgeByName(e.ID, src, dst)
			if err != nil {
				return fmt.Errorf("failed to create edge %s: %w", e.ID, err)
			}
			edge.SetLabel(string(e.Relationship))
			switch e.Relationship {
			case graph.Blocks:
				edge.SetStyle("dashed")
			case graph.Supports:
				edge.SetStyle("bold")
			case graph.WorksWith:
				edge.SetDir("none")
			}
		}
		return nil
	})
}

func styleAccount(node *cgraph.Node, a *models.Account) {
	if a == nil {
		node.SetFillColor("lightblue")
		return
	}
	switch a.Status {
	case models.AccountAtRisk:
		node.SetFillColor("lightpink")
	case models.AccountProspect:
		node.SetFillColor("lightyellow")
	default:
		node.SetFillColor("lightblue")
	}
}

func mapTitle(variant string) string {
	switch variant {
	case "territory":
		return "Territory Map"
	case "stakeholder":
		return "Stakeholder Map"
	}
	return variant
}

// RenderPipeline draws one node per stage, chained in board order, with each
// opportunity hanging off its stage.
func RenderPipeline(ctx context.Context, opps []models.Opportunity) (string, error) {
	summary := models.SummarizePipeline(opps)
	columns := models.ByStage(opps)

	return render(ctx, func(g *cgraph.Graph) error {
		g.SetRankDir(cgraph.LRRank)
		g.SetLabel(fmt.Sprintf("Pipeline %s (weighted %s)", FormatMoney(summary.TotalValue), FormatMoney(summary.WeightedValue)))

		var prev *cgraph.Node
		for _, st := range summary.ByStage {
			stageNode, err := g.CreateNodeByName("stage:" + string(st.Stage))
			if err != nil {
				return fmt.Errorf("failed to create stage node: %w", err)
			}
			stageNode.SetLabel(fmt.Sprintf("%s\n%d · %s", st.Stage, st.Count, FormatMoney(st.Value)))
			stageNode.SetShape("box")
			stageNode.SetStyle("filled")
			stageNode.SetFillColor("lightblue")

			if prev != nil {
				chain, err := g.CreateEdgeByName("", prev, stageNode)
				if err != nil {
					return fmt.Errorf("failed to chain stages: %w", err)
				}
				chain.SetStyle("bold")
			}
			prev = stageNode

			for _, o := range columns[st.Stage] {
				oppNode, err := g.CreateNodeByName("opportunity:" + o.ID)
				if err != nil {
					return fmt.Errorf("failed to create opportunity node: %w", err)
				}
				oppNode.SetLabel(fmt.Sprintf("%s\n%s @ %.0f%%", o.Name, FormatMoney(o.Value), models.ClampPercent(o.Probability)))
				oppNode.SetShape("ellipse")

				link, err := g.CreateEdgeByName("", stageNode, oppNode)
				if err != nil {
					return fmt.Errorf("failed to link opportunity: %w", err)
				}
				link.SetStyle("dotted")
			}
		}
		return nil
	})
}
