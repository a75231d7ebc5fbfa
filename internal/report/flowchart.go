// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"strings"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Confidence color thresholds for flowchart nodes.
const (
	flowchartGreenMin = 0.80
	flowchartAmberMin = 0.70
)

// MermaidFlowchart renders the reasoning chain as a Mermaid graph with
// confidence-coded node colors: green >= 0.80, amber >= 0.70, red below.
func MermaidFlowchart(steps []types.ReasoningStep) string {
	var b strings.Builder

	b.WriteString("```mermaid\ngraph TD\n")
	b.WriteString("    Start([Research Goal<br/>Generate Novel Hypothesis]) --> Step1\n")
	b.WriteString("    style Start fill:#e1f5e1,stroke:#4caf50,stroke-width:3px\n\n")

	for i, step := range steps {
		nodeID := fmt.Sprintf("Step%d", i+1)
		nextID := "End"
		if i+1 < len(steps) {
			nextID = fmt.Sprintf("Step%d", i+2)
		}

		fmt.Fprintf(&b, "    %s[%s<br/>%s<br/>Conf: %d%% | Evidence: %d]\n",
			nodeID, step.Agent, step.Action, int(step.Confidence*100), len(step.SupportingEvidence))

		switch {
		case step.Confidence >= flowchartGreenMin:
			fmt.Fprintf(&b, "    style %s fill:#d4edda,stroke:#28a745,stroke-width:2px\n", nodeID)
		case step.Confidence >= flowchartAmberMin:
			fmt.Fprintf(&b, "    style %s fill:#fff3cd,stroke:#ffc107,stroke-width:2px\n", nodeID)
		default:
			fmt.Fprintf(&b, "    style %s fill:#f8d7da,stroke:#dc3545,stroke-width:2px\n", nodeID)
		}

		if n := len(step.AlternativesConsidered); n > 0 {
			decisionID := fmt.Sprintf("Decision%d", i+1)
			plural := ""
			if n > 1 {
				plural = "s"
			}
			fmt.Fprintf(&b, "    %s --> %s{{Evaluated<br/>%d Alternative%s}}\n", nodeID, decisionID, n, plural)
			fmt.Fprintf(&b, "    style %s fill:#e7f3ff,stroke:#2196f3,stroke-width:2px\n", decisionID)
			fmt.Fprintf(&b, "    %s -->|Best Choice| %s\n", decisionID, nextID)
		} else {
			fmt.Fprintf(&b, "    %s -->|Next Stage| %s\n", nodeID, nextID)
		}
		b.WriteString("\n")
	}

	b.WriteString("    End([Hypothesis<br/>Ready for Review])\n")
	b.WriteString("    style End fill:#d4edda,stroke:#28a745,stroke-width:3px\n\n")

	b.WriteString("    subgraph Legend\n")
	b.WriteString("        L1[High Confidence 80%+]\n")
	b.WriteString("        L2[Good Confidence 70-80%]\n")
	b.WriteString("        L3[Moderate Confidence <70%]\n")
	b.WriteString("    end\n")
	b.WriteString("    style L1 fill:#d4edda,stroke:#28a745\n")
	b.WriteString("    style L2 fill:#fff3cd,stroke:#ffc107\n")
	b.WriteString("    style L3 fill:#f8d7da,stroke:#dc3545\n")
	b.WriteString("    style Legend fill:#f9f9f9,stroke:#999,stroke-dasharray: 5 5\n")
	b.WriteString("```\n")

	return b.String()
}
