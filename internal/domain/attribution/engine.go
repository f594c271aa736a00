// Package attribution prorates client and project revenue across the people
// who booked time on them, in proportion to the cost each one incurred.
package attribution

import (
	"sort"

	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/samber/lo"
)

// Dimension selects what revenue pools are keyed by.
type Dimension string

const (
	ByClient  Dimension = "client"
	ByProject Dimension = "project"
)

// Input is everything one attribution run needs. Entries must already be
// limited to the period being attributed.
type Input struct {
	Dimension  Dimension
	Entries    []ledger.TimeEntry
	HourlyCost map[string]float64
	// Overrides replaces a person's hourly cost inside one pool:
	// pool id -> person id -> hourly cost.
	Overrides map[string]map[string]float64
	// Revenue is the recognized revenue per pool id for the period.
	Revenue map[string]float64
}

// Share is one person's slice of one pool.
type Share struct {
	Pool      string  `json:"pool"`
	Hours     float64 `json:"hours"`
	Cost      float64 `json:"cost"`
	CostShare float64 `json:"cost_share"`
	Revenue   float64 `json:"revenue_prorated"`
	Margin    float64 `json:"margin"`
	ROI       float64 `json:"roi"`
	MarginPct float64 `json:"margin_pct"`
}

// PersonResult totals a person's shares across pools.
type PersonResult struct {
	PersonID  string  `json:"person_id"`
	Hours     float64 `json:"hours"`
	Cost      float64 `json:"cost_total"`
	Revenue   float64 `json:"revenue_prorated"`
	Margin    float64 `json:"margin"`
	ROI       float64 `json:"roi"`
	MarginPct float64 `json:"margin_pct"`
	Shares    []Share `json:"shares"`
}

// Pool is a client's or project's totals. Unattributed holds revenue no one
// could be credited with because no cost was booked against it.
type Pool struct {
	ID           string  `json:"id"`
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Hours        float64 `json:"hours"`
	Attributed   float64 `json:"attributed"`
	Unattributed float64 `json:"unattributed"`
	Contributors int     `json:"contributors"`
}

// Result is the outcome of one attribution run.
type Result struct {
	Dimension Dimension               `json:"dimension"`
	People    map[string]PersonResult `json:"people"`
	Pools     map[string]Pool         `json:"pools"`
}

// Person returns a person's result, zeroed if they booked nothing.
func (r Result) Person(id string) PersonResult {
	if pr, ok := r.People[id]; ok {
		return pr
	}
	return PersonResult{PersonID: id}
}

// Unattributed lists pools with revenue that no one earned, by id.
func (r Result) Unattributed() []Pool {
	var out []Pool
	for _, p := range r.Pools {
		if p.Unattributed > 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type contribution struct {
	hours float64
	cost  float64
}

// Attribute prorates every pool's revenue over its contributors by cost share.
// For any pool with positive cost, the prorated revenue of its contributors
// sums to the pool's revenue.
func Attribute(in Input) Result {
	res := Result{
		Dimension: in.Dimension,
		People:    map[string]PersonResult{},
		Pools:     map[string]Pool{},
	}

	contrib := map[string]map[string]*contribution{}
	for _, e := range in.Entries {
		pool := poolKey(in.Dimension, e)
		if pool == "" {
			continue
		}
		if contrib[pool] == nil {
			contrib[pool] = map[string]*contribution{}
		}
		c := contrib[pool][e.PersonID]
		if c == nil {
			c = &contribution{}
			contrib[pool][e.PersonID] = c
		}
		c.hours += e.Hours
		c.cost += e.Hours * rate(in, pool, e.PersonID)
	}

	for id, rev := range in.Revenue {
		res.Pools[id] = Pool{ID: id, Revenue: rev}
	}
	for id, people := range contrib {
		pool := res.Pools[id]
		pool.ID = id
		for _, c := range people {
			pool.Hours += c.hours
			pool.Cost += c.cost
		}
		pool.Contributors = len(people)
		res.Pools[id] = pool
	}

	for _, id := range sortedKeys(contrib) {
		pool := res.Pools[id]
		for personID, c := range contrib[id] {
			share := Share{
				Pool:      id,
				Hours:     c.hours,
				Cost:      c.cost,
				CostShare: Ratio(c.cost, pool.Cost),
			}
			share.Revenue = pool.Revenue * share.CostShare
			share.Margin = share.Revenue - share.Cost
			share.ROI = Percent(share.Margin, share.Cost)
			share.MarginPct = Percent(share.Margin, share.Revenue)
			pool.Attributed += share.Revenue

			pr := res.Person(personID)
			pr.Hours += share.Hours
			pr.Cost += share.Cost
			pr.Revenue += share.Revenue
			pr.Shares = append(pr.Shares, share)
			res.People[personID] = pr
		}
		res.Pools[id] = pool
	}

	for id, pool := range res.Pools {
		pool.Unattributed = pool.Revenue - pool.Attributed
		if pool.Unattributed < 1e-9 {
			pool.Unattributed = 0
		}
		res.Pools[id] = pool
	}

	for id, pr := range res.People {
		pr.Margin = pr.Revenue - pr.Cost
		pr.ROI = Percent(pr.Margin, pr.Cost)
		pr.MarginPct = Percent(pr.Margin, pr.Revenue)
		sort.Slice(pr.Shares, func(i, j int) bool {
			if pr.Shares[i].Revenue != pr.Shares[j].Revenue {
				return pr.Shares[i].Revenue > pr.Shares[j].Revenue
			}
			return pr.Shares[i].Pool < pr.Shares[j].Pool
		})
		res.People[id] = pr
	}

	return res
}

func poolKey(dim Dimension, e ledger.TimeEntry) string {
	if dim == ByProject {
		return e.ProjectID
	}
	return e.ClientID
}

func rate(in Input, pool, personID string) float64 {
	if byPerson, ok := in.Overrides[pool]; ok {
		if r, ok := byPerson[personID]; ok {
			return r
		}
	}
	return in.HourlyCost[personID]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// Ratio divides, yielding 0 when the denominator is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percent is Ratio scaled to 100.
func Percent(num, den float64) float64 {
	return Ratio(num, den) * 100
}
