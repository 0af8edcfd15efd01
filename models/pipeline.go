// ABOUTME: Pipeline arithmetic over opportunities and initiatives
// ABOUTME: Computes total, probability-weighted and per-stage values
package models

type StageSummary struct {
	Stage         OpportunityStage `json:"stage"`
	Count         int              `json:"count"`
	Value         float64          `json:"value"`
	WeightedValue float64          `json:"weighted_value"`
}

type PipelineSummary struct {
	Count         int            `json:"count"`
	TotalValue    float64        `json:"total_value"`
	WeightedValue float64        `json:"weighted_value"`
	ByStage       []StageSummary `json:"by_stage"`
}

// WeightedValue is value × probability/100 with probability clamped to [0,100].
func (o Opportunity) WeightedValue() float64 {
	return o.Value * ClampPercent(o.Probability) / 100
}

// SummarizePipeline totals opportunities overall and per stage. ByStage follows board order
// and always lists every stage.
func SummarizePipeline(opps []Opportunity) PipelineSummary {
	summary := PipelineSummary{ByStage: make([]StageSummary, len(opportunityStages))}
	index := make(map[OpportunityStage]int, len(opportunityStages))
	for i, stage := range opportunityStages {
		summary.ByStage[i].Stage = stage
		index[stage] = i
	}

	for _, o := range opps {
		summary.Count++
		summary.TotalValue += o.Value
		summary.WeightedValue += o.WeightedValue()

		if i, ok := index[o.Stage]; ok {
			summary.ByStage[i].Count++
			summary.ByStage[i].Value += o.Value
			summary.ByStage[i].WeightedValue += o.WeightedValue()
		}
	}

	return summary
}

// ByStage groups opportunities into board columns, preserving input order within a column.
func ByStage(opps []Opportunity) map[OpportunityStage][]Opportunity {
	columns := make(map[OpportunityStage][]Opportunity, len(opportunityStages))
	for _, o := range opps {
		columns[o.Stage] = append(columns[o.Stage], o)
	}
	return columns
}

// AverageProgress is the mean initiative progress, 0 when there are none.
func AverageProgress(initiatives []Initiative) float64 {
	if len(initiatives) == 0 {
		return 0
	}
	var sum float64
	for _, i := range initiatives {
		sum += ClampPercent(i.Progress)
	}
	return sum / float64(len(initiatives))
}
