// Package engine orchestrates the full analytics pipeline: metrics first,
// prioritization and predictive models over the metric aggregates, then the
// recommendation rules over everything. One call, one immutable report.
package engine

import (
	"fmt"
	"time"

	"github.com/dollydang/sprint-portfolio-analytics/internal/errors"
	"github.com/dollydang/sprint-portfolio-analytics/internal/metrics"
	"github.com/dollydang/sprint-portfolio-analytics/internal/predictive"
	"github.com/dollydang/sprint-portfolio-analytics/internal/prioritization"
	"github.com/dollydang/sprint-portfolio-analytics/internal/recommend"
	"github.com/dollydang/sprint-portfolio-analytics/internal/stats"
	"github.com/dollydang/sprint-portfolio-analytics/internal/types"
)

// Config bundles the component configurations one engine instance runs
// with. Weight tables are validated once in New, never per call.
type Config struct {
	// ConsistencyWindow limits velocity consistency to the trailing K
	// sprints; zero uses the full history.
	ConsistencyWindow int
	// ForecastHorizon is how many sprints the capacity forecast projects.
	ForecastHorizon int

	Prioritization prioritization.Config
	Predictive     predictive.Config
	Recommend      recommend.Config
}

// DefaultConfig composes the component defaults with a three-sprint
// forecast horizon.
func DefaultConfig() Config {
	return Config{
		ForecastHorizon: 3,
		Prioritization:  prioritization.DefaultConfig(),
		Predictive:      predictive.DefaultConfig(),
		Recommend:       recommend.DefaultConfig(),
	}
}

// Engine runs the pipeline. It holds configuration only: no state survives
// between Analyze calls, so one engine may serve concurrent callers.
type Engine struct {
	cfg Config
}

// New validates the configuration up front and returns a ready engine.
// Malformed weight tables fail here, not mid-computation.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Prioritization.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Predictive.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Report is the full derived output for one dataset. Every field is
// recomputed per call; none of it is cached or persisted.
type Report struct {
	GeneratedAt   time.Time    `json:"generated_at"`
	CurrentSprint types.Sprint `json:"current_sprint"`

	Metrics        metrics.SprintMetricSet              `json:"metrics"`
	Consistency    float64                              `json:"velocity_consistency"`
	Predictability float64                              `json:"predictability"`
	Trend          metrics.VelocityTrend                `json:"trend"`
	CycleTime      metrics.CycleTimeStats               `json:"cycle_time"`
	StoryTypes     map[string]map[types.StoryType]int   `json:"story_types"`
	Contribution   map[string]float64                   `json:"contribution"`
	Utilization    map[string]float64                   `json:"utilization"`
	QualityTrend   []float64                            `json:"quality_trend"`

	Health predictive.Health `json:"health"`

	Ranked          []prioritization.Ranked            `json:"ranked"`
	Composition     map[prioritization.Quadrant]int    `json:"composition"`
	PortfolioHealth float64                            `json:"portfolio_health"`
	SuccessRate     float64                            `json:"success_rate"`

	Risks      []predictive.Risk            `json:"risks"`
	Commitment predictive.MonteCarloResult  `json:"commitment"`
	Forecast   predictive.ForecastSeries    `json:"forecast"`

	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// Analyze runs the pipeline over one dataset. Errors from any model
// propagate unwrapped; nothing is retried or silently approximated.
func (e *Engine) Analyze(ds types.Dataset) (*Report, error) {
	if err := validateDataset(ds); err != nil {
		return nil, err
	}

	sprints := ds.Sprints
	current := sprints[len(sprints)-1]
	velocities := metrics.Velocities(sprints)

	// Metrics pass: everything downstream reads these aggregates.
	metricSet := metrics.Compute(sprints, ds.Stories)
	consistency := metrics.VelocityConsistency(sprints, e.cfg.ConsistencyWindow)
	utilization := metrics.TeamUtilization(ds.Team, sprints)

	// Prioritization pass.
	ranked, err := prioritization.Rank(ds.Initiatives, e.cfg.Prioritization)
	if err != nil {
		return nil, err
	}

	// Predictive pass.
	health := predictive.SprintHealth(metricSet[current.ID], consistency, e.cfg.Predictive)

	teamState := predictive.TeamState{
		CurrentSprint: current.Number,
		AvgVelocity:   stats.Mean(velocities),
		VelocityCV:    stats.CoefVariation(velocities),
		Utilization:   sprintUtilization(current),
	}
	risks := predictive.AssessPortfolio(ds.Initiatives, teamState, e.cfg.Predictive)

	commitment, err := predictive.MonteCarloForecast(velocities, current.CommittedPoints, e.cfg.Predictive)
	if err != nil {
		return nil, err
	}
	forecast, err := predictive.CapacityForecast(velocities, e.cfg.ForecastHorizon, e.cfg.Predictive)
	if err != nil {
		return nil, err
	}

	currentMetrics := metricSet[current.ID]
	recommendations := recommend.Generate(recommend.Inputs{
		Health:             health,
		Risks:              risks,
		Trend:              metrics.Trend(sprints),
		Predictability:     metrics.Predictability(sprints),
		QuickWinsBacklog:   backlogCount(prioritization.QuickWins(ranked)),
		TimeSinks:          len(prioritization.TimeSinks(ranked)),
		Utilization:        utilization,
		EstimationAccuracy: currentMetrics.EstimationAccuracy,
		AccuracyKnown:      currentMetrics.AccuracyKnown,
		BlockerImpact:      currentMetrics.BlockerImpact,
	}, e.cfg.Recommend)

	return &Report{
		GeneratedAt:   time.Now(),
		CurrentSprint: current,

		Metrics:        metricSet,
		Consistency:    consistency,
		Predictability: metrics.Predictability(sprints),
		Trend:          metrics.Trend(sprints),
		CycleTime:      metrics.CycleTime(ds.Stories),
		StoryTypes:     metrics.StoryTypeDistribution(ds.Stories),
		Contribution:   metrics.TeamContribution(ds.Stories, ds.Team),
		Utilization:    utilization,
		QualityTrend:   metrics.QualityTrend(sprints, ds.Stories),

		Health: health,

		Ranked:          ranked,
		Composition:     prioritization.Composition(ranked),
		PortfolioHealth: prioritization.PortfolioHealth(ranked),
		SuccessRate:     prioritization.SuccessRate(ds.Initiatives),

		Risks:      risks,
		Commitment: commitment,
		Forecast:   forecast,

		Recommendations: recommendations,
	}, nil
}

// validateDataset rejects shapes the engine cannot compute over: an empty
// sprint sequence or sequence numbers that do not strictly increase.
func validateDataset(ds types.Dataset) error {
	if len(ds.Sprints) == 0 {
		return errors.NewValidationError("dataset contains no sprints")
	}
	for i := 1; i < len(ds.Sprints); i++ {
		if ds.Sprints[i].Number <= ds.Sprints[i-1].Number {
			return errors.NewValidationError(
				"sprint sequence numbers must be strictly increasing",
				fmt.Sprintf("sprint %q (number %d) follows number %d",
					ds.Sprints[i].ID, ds.Sprints[i].Number, ds.Sprints[i-1].Number))
		}
	}
	for _, st := range ds.Stories {
		if !st.Status.IsValid() {
			return errors.NewValidationError(
				fmt.Sprintf("story %q has unknown status %q", st.ID, st.Status))
		}
		if !st.Type.IsValid() {
			return errors.NewValidationError(
				fmt.Sprintf("story %q has unknown type %q", st.ID, st.Type))
		}
	}
	return nil
}

// sprintUtilization is delivered points over planned team capacity for one
// sprint, the team-level stretch figure risk scoring reads.
func sprintUtilization(sp types.Sprint) float64 {
	if sp.PlannedCapacity <= 0 {
		return 0
	}
	return sp.CompletedPoints / sp.PlannedCapacity
}

func backlogCount(ranked []prioritization.Ranked) int {
	n := 0
	for _, r := range ranked {
		if r.Initiative.Status == types.InitiativeBacklog {
			n++
		}
	}
	return n
}
