package types

import "time"

// StoryStatus is the delivery state of a story.
type StoryStatus string

const (
	StatusTodo       StoryStatus = "todo"
	StatusInProgress StoryStatus = "in_progress"
	StatusDone       StoryStatus = "done"
	StatusBlocked    StoryStatus = "blocked"
)

// IsValid returns true if the status is a known value.
func (s StoryStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return true
	default:
		return false
	}
}

// StoryType classifies the kind of work a story represents.
type StoryType string

const (
	TypeFeature  StoryType = "feature"
	TypeBug      StoryType = "bug"
	TypeTechDebt StoryType = "tech_debt"
	TypeSpike    StoryType = "spike"
)

// IsValid returns true if the story type is a known value.
func (t StoryType) IsValid() bool {
	switch t {
	case TypeFeature, TypeBug, TypeTechDebt, TypeSpike:
		return true
	default:
		return false
	}
}

// StrategicCategory is the business theme an initiative serves. The set is
// closed: scoring fails for values outside it rather than defaulting.
type StrategicCategory string

const (
	CategoryRevenueGrowth       StrategicCategory = "revenue_growth"
	CategoryCustomerExperience  StrategicCategory = "customer_experience"
	CategoryCostReduction       StrategicCategory = "cost_reduction"
	CategoryTechnicalExcellence StrategicCategory = "technical_excellence"
	CategoryProcessImprovement  StrategicCategory = "process_improvement"
)

// IsValid returns true if the category is a known value.
func (c StrategicCategory) IsValid() bool {
	switch c {
	case CategoryRevenueGrowth, CategoryCustomerExperience, CategoryCostReduction,
		CategoryTechnicalExcellence, CategoryProcessImprovement:
		return true
	default:
		return false
	}
}

// InitiativeStatus is the portfolio state of an initiative.
type InitiativeStatus string

const (
	InitiativeBacklog       InitiativeStatus = "backlog"
	InitiativeActive        InitiativeStatus = "active"
	InitiativeCompleted     InitiativeStatus = "completed"
	InitiativeDeprioritized InitiativeStatus = "deprioritized"
)

// IsValid returns true if the initiative status is a known value.
func (s InitiativeStatus) IsValid() bool {
	switch s {
	case InitiativeBacklog, InitiativeActive, InitiativeCompleted, InitiativeDeprioritized:
		return true
	default:
		return false
	}
}

// Sprint is one time-boxed delivery interval. Sequence numbers are strictly
// increasing and provide time ordering; completing more points than planned
// capacity is valid over-delivery, not an error.
type Sprint struct {
	ID               string    `json:"id"`
	Number           int       `json:"number"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	PlannedCapacity  float64   `json:"planned_capacity"`
	CommittedPoints  float64   `json:"committed_points"`
	CompletedPoints  float64   `json:"completed_points"`
	CommittedStories int       `json:"committed_stories"`
	CompletedStories int       `json:"completed_stories"`
	BlockerCount     int       `json:"blocker_count"`
	BlockedStoryDays float64   `json:"blocked_story_days"`
	TotalStoryDays   float64   `json:"total_story_days"`
}

// Story is the smallest trackable unit of delivered work. ActualEffort is nil
// when effort was never tracked for the story; InitiativeID is empty for work
// outside any initiative.
type Story struct {
	ID            string      `json:"id"`
	SprintID      string      `json:"sprint_id"`
	InitiativeID  string      `json:"initiative_id,omitempty"`
	AssigneeID    string      `json:"assignee_id"`
	Estimate      float64     `json:"estimate"`
	ActualEffort  *float64    `json:"actual_effort,omitempty"`
	Status        StoryStatus `json:"status"`
	Type          StoryType   `json:"type"`
	CycleTimeDays float64     `json:"cycle_time_days"`
}

// Initiative is a portfolio-level unit of work tracked for prioritization.
// Impact and Effort share one business-defined scale.
type Initiative struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Impact          float64           `json:"impact"`
	Effort          float64           `json:"effort"`
	Category        StrategicCategory `json:"category"`
	Status          InitiativeStatus  `json:"status"`
	EstimatedPoints float64           `json:"estimated_points"`
	CompletedPoints float64           `json:"completed_points"`
	StartSprint     int               `json:"start_sprint"`
	TargetSprint    int               `json:"target_sprint"`
}

// TeamMember describes one delivery team member. Delivered holds points
// delivered per sprint, aligned to the Sprint sequence ordering.
type TeamMember struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	CapacityPerSprint float64   `json:"capacity_per_sprint"`
	Delivered         []float64 `json:"delivered"`
}

// Dataset bundles the four input collections the engine consumes. The engine
// never mutates a dataset; all derived values are computed fresh per call.
type Dataset struct {
	Sprints     []Sprint     `json:"sprints"`
	Stories     []Story      `json:"stories"`
	Initiatives []Initiative `json:"initiatives"`
	Team        []TeamMember `json:"team"`
}
