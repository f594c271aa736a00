package reporting

import (
	"sort"

	"github.com/rpggio/profitability/internal/domain/attribution"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/samber/lo"
)

// Rollup aggregates people mapped to an area or client.
type Rollup struct {
	EntityID      string  `json:"entity_id"`
	Name          string  `json:"name"`
	PeopleCount   int     `json:"people_count"`
	Hours         float64 `json:"hours"`
	RevenueTotal  float64 `json:"revenue_total"`
	CostTotal     float64 `json:"cost_total"`
	MarginTotal   float64 `json:"margin_total"`
	MarginPct     float64 `json:"margin_pct"`
	ROIAvg        float64 `json:"roi_avg"`
	AvgMarginPct  float64 `json:"avg_margin_pct"`
	AvgEfficiency float64 `json:"avg_efficiency"`
	AvgCompliance float64 `json:"avg_compliance"`
}

// RollupAreas sums productivity records per area, sorted by total margin
// descending. People without an area roll up under the empty id.
func RollupAreas(records []Productivity, names map[string]string) []Rollup {
	groups := lo.GroupBy(records, func(r Productivity) string { return r.AreaID })

	out := make([]Rollup, 0, len(groups))
	for areaID, members := range groups {
		r := Rollup{EntityID: areaID, Name: names[areaID], PeopleCount: len(members)}
		for _, m := range members {
			r.Hours += m.HoursWorked
			r.RevenueTotal += m.RevenueProrated
			r.CostTotal += m.CostTotal
			r.MarginTotal += m.Margin
		}
		r.MarginPct = attribution.Percent(r.MarginTotal, r.RevenueTotal)
		r.ROIAvg = mean(members, func(m Productivity) float64 { return m.ROI })
		r.AvgMarginPct = mean(members, func(m Productivity) float64 { return m.MarginPct })
		r.AvgEfficiency = mean(members, func(m Productivity) float64 { return m.Efficiency })
		r.AvgCompliance = mean(members, func(m Productivity) float64 { return m.CompliancePct })
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MarginTotal != out[j].MarginTotal {
			return out[i].MarginTotal > out[j].MarginTotal
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

// ClientRollup is a client's profitability after overhead.
type ClientRollup struct {
	Rollup
	Kind         ledger.ClientKind      `json:"kind"`
	Overhead     float64                `json:"overhead"`
	NetUtility   float64                `json:"net_utility"`
	Unattributed float64                `json:"unattributed_revenue"`
	Lines        []attribution.LineItem `json:"lines"`
}

// ClientInput feeds RollupClients.
type ClientInput struct {
	Clients     []ledger.Client
	Attribution attribution.Result
	Overhead    map[string]float64
	Lines       map[string][]attribution.LineItem
	// Excluded clients are left out entirely, along with aggregate clients.
	Excluded []string
}

// RollupClients builds one rollup per client that had revenue, cost or
// overhead. Net utility is revenue - cost - overhead. Clients are sorted by
// net utility descending with the house client pinned last.
func RollupClients(in ClientInput) []ClientRollup {
	excluded := lo.SliceToMap(in.Excluded, func(id string) (string, bool) { return id, true })

	roi := map[string][]float64{}
	for _, pr := range in.Attribution.People {
		for _, s := range pr.Shares {
			roi[s.Pool] = append(roi[s.Pool], s.ROI)
		}
	}

	var out []ClientRollup
	for _, c := range in.Clients {
		if excluded[c.ID] || c.Kind == ledger.ClientAggregate {
			continue
		}
		pool, hasPool := in.Attribution.Pools[c.ID]
		overhead := in.Overhead[c.ID]
		if !hasPool && overhead == 0 {
			continue
		}

		r := ClientRollup{
			Rollup: Rollup{
				EntityID:     c.ID,
				Name:         c.Name,
				PeopleCount:  pool.Contributors,
				Hours:        pool.Hours,
				RevenueTotal: pool.Revenue,
				CostTotal:    pool.Cost,
				MarginTotal:  pool.Revenue - pool.Cost,
				ROIAvg:       lo.Sum(roi[c.ID]) / float64(max(1, len(roi[c.ID]))),
			},
			Kind:         c.Kind,
			Overhead:     overhead,
			Unattributed: pool.Unattributed,
			Lines:        in.Lines[c.ID],
		}
		r.MarginPct = attribution.Percent(r.MarginTotal, r.RevenueTotal)
		r.NetUtility = r.MarginTotal - r.Overhead
		if r.Lines == nil {
			r.Lines = []attribution.LineItem{}
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		hi, hj := out[i].Kind == ledger.ClientHouse, out[j].Kind == ledger.ClientHouse
		if hi != hj {
			return hj
		}
		if out[i].NetUtility != out[j].NetUtility {
			return out[i].NetUtility > out[j].NetUtility
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

// TopClients ranks external clients by net utility. n <= 0 returns all.
func TopClients(rollups []ClientRollup, n int) []ClientRollup {
	ranked := lo.Filter(rollups, func(r ClientRollup, _ int) bool {
		return r.Kind != ledger.ClientHouse && r.Kind != ledger.ClientAggregate
	})
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].NetUtility > ranked[j].NetUtility })
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func mean[T any](items []T, f func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	return lo.SumBy(items, f) / float64(len(items))
}
