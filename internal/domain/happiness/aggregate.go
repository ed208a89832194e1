package happiness

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ScorePoint is the slice of a HappinessScore the aggregations need.
type ScorePoint struct {
	TeamID        uuid.UUID
	Score         int
	WeekStartDate time.Time
}

type TeamRef struct {
	ID   uuid.UUID
	Name string
}

// Tally accumulates stored scores.
type Tally struct {
	Sum   int
	Count int
}

func (t *Tally) Add(stored int) {
	t.Sum += stored
	t.Count++
}

// Average is the mean on the display scale, or 0 for an empty tally.
func (t Tally) Average() float64 {
	if t.Count == 0 {
		return 0
	}
	return round2(float64(t.Sum) / float64(t.Count) / 2)
}

type TeamAverage struct {
	TeamID   uuid.UUID `json:"team_id"`
	TeamName string    `json:"team_name"`
	Average  float64   `json:"average"`
	Count    int       `json:"count"`
}

type WeeklyHappinessData struct {
	Period         string        `json:"period"`
	PeriodStart    time.Time     `json:"period_start"`
	CompanyAverage float64       `json:"company_average"`
	ResponseCount  int           `json:"response_count"`
	Teams          []TeamAverage `json:"teams"`
}

// AggregateWeekly fills every bucket with the company average over all points and one
// TeamAverage per team in scope. Points outside the buckets are dropped.
func AggregateWeekly(points []ScorePoint, buckets []Bucket, teams []TeamRef, loc *time.Location, view ViewType) []WeeklyHappinessData {
	if loc == nil {
		loc = time.Local
	}
	index := make(map[string]int, len(buckets))
	company := make([]Tally, len(buckets))
	perTeam := make([]map[uuid.UUID]*Tally, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
		perTeam[i] = make(map[uuid.UUID]*Tally, len(teams))
		for _, t := range teams {
			perTeam[i][t.ID] = &Tally{}
		}
	}

	for _, p := range points {
		i, ok := index[BucketKey(WeekStartIn(p.WeekStartDate, loc), view)]
		if !ok {
			continue
		}
		company[i].Add(p.Score)
		if tally, ok := perTeam[i][p.TeamID]; ok {
			tally.Add(p.Score)
		}
	}

	out := make([]WeeklyHappinessData, 0, len(buckets))
	for i, b := range buckets {
		row := WeeklyHappinessData{
			Period:         b.Key,
			PeriodStart:    b.Start,
			CompanyAverage: company[i].Average(),
			ResponseCount:  company[i].Count,
			Teams:          make([]TeamAverage, 0, len(teams)),
		}
		for _, t := range teams {
			tally := perTeam[i][t.ID]
			row.Teams = append(row.Teams, TeamAverage{
				TeamID:   t.ID,
				TeamName: t.Name,
				Average:  tally.Average(),
				Count:    tally.Count,
			})
		}
		out = append(out, row)
	}
	return out
}

type TeamWeekAggregate struct {
	Week      string    `json:"week"`
	WeekStart time.Time `json:"week_start"`
	TeamID    uuid.UUID `json:"team_id"`
	TeamName  string    `json:"team_name"`
	Sum       int       `json:"sum"`
	Count     int       `json:"count"`
	Average   float64   `json:"average"`
}

// AggregateByWeekAndTeam groups points strictly by ISO week and team, keeping raw sums and counts.
// Rows are ordered by week, then team name, then team id.
func AggregateByWeekAndTeam(points []ScorePoint, teamNames map[uuid.UUID]string, loc *time.Location) []TeamWeekAggregate {
	if loc == nil {
		loc = time.Local
	}
	type groupKey struct {
		week string
		team uuid.UUID
	}
	groups := map[groupKey]*TeamWeekAggregate{}
	for _, p := range points {
		ws := WeekStartIn(p.WeekStartDate, loc)
		k := groupKey{week: ws.Format("2006-01-02"), team: p.TeamID}
		g, ok := groups[k]
		if !ok {
			g = &TeamWeekAggregate{
				Week:      k.week,
				WeekStart: ws,
				TeamID:    p.TeamID,
				TeamName:  teamNames[p.TeamID],
			}
			groups[k] = g
		}
		g.Sum += p.Score
		g.Count++
	}

	out := make([]TeamWeekAggregate, 0, len(groups))
	for _, g := range groups {
		g.Average = Tally{Sum: g.Sum, Count: g.Count}.Average()
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WeekStart.Equal(out[j].WeekStart) {
			return out[i].WeekStart.Before(out[j].WeekStart)
		}
		if out[i].TeamName != out[j].TeamName {
			return out[i].TeamName < out[j].TeamName
		}
		return out[i].TeamID.String() < out[j].TeamID.String()
	})
	return out
}
