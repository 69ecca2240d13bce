package model

// Action classifies the intent of a decision cycle's output.
type Action string

const (
	ActionHold        Action = "hold"
	ActionExit        Action = "exit"
	ActionLongSpread  Action = "enter_long_spread"
	ActionShortSpread Action = "enter_short_spread"
	ActionHedge       Action = "hedge"
	ActionLongBasis   Action = "enter_long_vix"
	ActionShortBasis  Action = "enter_short_vix"
	ActionTakeProfit  Action = "take_profit"
)

// Order is a single computed trade intent: a security and a signed share
// or contract quantity. A zero quantity means no trade.
type Order struct {
	Security Security `json:"security"`
	Quantity float64  `json:"quantity"`
}

// PairsDecision is the outcome of evaluating one calibrated pair against
// its live z-score. Created fresh each cycle and discarded after handoff.
type PairsDecision struct {
	Pair   Pair    `json:"pair"`
	ZScore float64 `json:"z_score"`
	Action Action  `json:"action"`
	Legs   []Order `json:"legs,omitempty"`
}

// HedgeDecision is the outcome of one delta-hedge evaluation.
type HedgeDecision struct {
	Symbol          string  `json:"symbol"`
	Delta           float64 `json:"delta"`
	TargetUnderlier float64 `json:"target_underlier"`
	Action          Action  `json:"action"`
	Trade           Order   `json:"trade"`
}

// BasisDecision is the outcome of one VIX-basis evaluation.
type BasisDecision struct {
	Signal    float64 `json:"signal"`
	DailyRoll float64 `json:"daily_roll"`
	BusDays   int     `json:"bus_days"`
	Action    Action  `json:"action"`
	Legs      []Order `json:"legs,omitempty"`
}
