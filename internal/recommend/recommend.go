// Package recommend turns upstream analytics into a small ordered set of
// advisory statements. It is a fixed-priority rule table over thresholds,
// deliberately not a model: same inputs, same advice.
package recommend

import (
	"fmt"

	"github.com/dollydang/sprint-portfolio-analytics/internal/metrics"
	"github.com/dollydang/sprint-portfolio-analytics/internal/predictive"
)

// Severity orders how urgently a recommendation should be surfaced.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Recommendation is one templated advisory statement.
type Recommendation struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Config bounds the advisory output.
type Config struct {
	MaxResults int
}

// DefaultConfig caps output at the top five triggered rules.
func DefaultConfig() Config {
	return Config{MaxResults: 5}
}

// Inputs is the snapshot of upstream outputs the rules evaluate. The
// boolean flags mark values that may be sentinel-missing upstream.
type Inputs struct {
	Health             predictive.Health
	Risks              []predictive.Risk
	Trend              metrics.VelocityTrend
	Predictability     float64
	QuickWinsBacklog   int
	TimeSinks          int
	Utilization        map[string]float64
	EstimationAccuracy float64
	AccuracyKnown      bool
	BlockerImpact      float64
}

// Rule thresholds. Utilization above overloadThreshold flags a member as
// overloaded; accuracy and blocker scores are on the 0-100 metric scale.
const (
	overloadThreshold      = 1.2
	lowAccuracyThreshold   = 70.0
	highBlockerThreshold   = 70.0
	predictableThreshold   = 0.8
)

// Generate evaluates the rule table in fixed priority order and returns at
// most cfg.MaxResults triggered recommendations.
func Generate(in Inputs, cfg Config) []Recommendation {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultConfig().MaxResults
	}

	var out []Recommendation
	add := func(code string, sev Severity, msg string) {
		out = append(out, Recommendation{Code: code, Severity: sev, Message: msg})
	}

	if n := highRiskCount(in.Risks); n > 0 {
		add("high_risk_initiatives", SeverityCritical,
			fmt.Sprintf("%d initiatives flagged high-risk - realign scope or extend their timelines", n))
	}
	if in.Health.Zone == predictive.ZoneRed {
		add("sprint_health_red", SeverityCritical,
			fmt.Sprintf("Sprint health at %.0f/100 - investigate completion rate and blockers before committing more scope", in.Health.Score))
	}
	if in.Trend.Direction == metrics.TrendDeclining {
		add("velocity_declining", SeverityWarning,
			fmt.Sprintf("Velocity declined %.0f%% versus early sprints - review sprint scope and interruptions", -in.Trend.ImprovementPct))
	}
	if n := overloadedCount(in.Utilization); n > 0 {
		add("members_overloaded", SeverityWarning,
			fmt.Sprintf("%d team members running above %.0f%% of fair-share capacity - rebalance assignments", n, overloadThreshold*100))
	}
	if in.BlockerImpact < highBlockerThreshold {
		add("blocker_drag", SeverityWarning,
			fmt.Sprintf("Blockers consumed %.0f%% of sprint capacity - escalate recurring dependencies", 100-in.BlockerImpact))
	}
	if in.AccuracyKnown && in.EstimationAccuracy < lowAccuracyThreshold {
		add("estimation_drift", SeverityWarning,
			fmt.Sprintf("Estimation accuracy at %.0f%% - recalibrate story pointing in refinement", in.EstimationAccuracy))
	}
	if in.TimeSinks > 0 {
		add("time_sinks", SeverityWarning,
			fmt.Sprintf("%d low-impact, high-effort initiatives in flight - candidates for deprioritization", in.TimeSinks))
	}
	if in.Trend.Direction == metrics.TrendImproving {
		add("velocity_improving", SeverityInfo,
			fmt.Sprintf("Velocity improved %.0f%% over the observed sprints - momentum building", in.Trend.ImprovementPct))
	}
	if in.QuickWinsBacklog > 0 {
		add("quick_wins_ready", SeverityInfo,
			fmt.Sprintf("%d quick-win initiatives sitting in the backlog - ready for immediate delivery", in.QuickWinsBacklog))
	}
	if in.Predictability >= predictableThreshold {
		add("predictable_delivery", SeverityInfo,
			fmt.Sprintf("Sprint predictability at %.0f%% - velocity is reliable for forecasting", in.Predictability*100))
	}

	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func highRiskCount(risks []predictive.Risk) int {
	n := 0
	for _, r := range risks {
		if r.Level == predictive.RiskHigh {
			n++
		}
	}
	return n
}

func overloadedCount(utilization map[string]float64) int {
	n := 0
	for _, u := range utilization {
		if u > overloadThreshold {
			n++
		}
	}
	return n
}
