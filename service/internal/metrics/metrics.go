// Package metrics exposes prometheus counters for played rounds.
package metrics

import (
	"strconv"

	"github.com/jason-s-yu/cabo/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder groups the round counters.
type Recorder struct {
	roundsCounter           *prometheus.CounterVec
	winsCounter             *prometheus.CounterVec
	caboCallsCounter        prometheus.Counter
	falseCaboCounter        prometheus.Counter
	actionsCounter          *prometheus.CounterVec
	rejectionsCounter       *prometheus.CounterVec
	decisionFailuresCounter prometheus.Counter
	abortedCounter          prometheus.Counter
	activeGamesGauge        prometheus.Gauge
}

// New registers a Recorder with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		roundsCounter: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cabo_rounds_total",
			Help: "Finished rounds by end reason",
		}, []string{"end_reason"}),
		winsCounter: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cabo_round_outcomes_total",
			Help: "Finished rounds by winning seat, or draw",
		}, []string{"outcome"}),
		caboCallsCounter: f.NewCounter(prometheus.CounterOpts{
			Name: "cabo_calls_total",
			Help: "Rounds in which a player declared the end",
		}),
		falseCaboCounter: f.NewCounter(prometheus.CounterOpts{
			Name: "cabo_false_calls_total",
			Help: "Cabo calls that drew the penalty",
		}),
		actionsCounter: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cabo_actions_total",
			Help: "Accepted actions by kind",
		}, []string{"kind"}),
		rejectionsCounter: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cabo_action_rejections_total",
			Help: "Actions refused by the round, by kind",
		}, []string{"kind"}),
		decisionFailuresCounter: f.NewCounter(prometheus.CounterOpts{
			Name: "cabo_decision_failures_total",
			Help: "Decision provider errors and timeouts",
		}),
		abortedCounter: f.NewCounter(prometheus.CounterOpts{
			Name: "cabo_rounds_aborted_total",
			Help: "Rounds stopped before reaching game over",
		}),
		activeGamesGauge: f.NewGauge(prometheus.GaugeOpts{
			Name: "cabo_active_games",
			Help: "Games currently being played",
		}),
	}
}

// Default is registered with the global prometheus registry.
var Default = New(prometheus.DefaultRegisterer)

// RoundFinished records a scored round.
func (m *Recorder) RoundFinished(res engine.Result) {
	m.roundsCounter.WithLabelValues(res.Reason.String()).Inc()
	m.winsCounter.WithLabelValues(Outcome(res.Winner)).Inc()
	if res.CaboCaller >= 0 {
		m.caboCallsCounter.Inc()
		c := uint8(res.CaboCaller)
		if res.Raw[c] > res.Raw[engine.OpponentOf(c)] {
			m.falseCaboCounter.Inc()
		}
	}
}

// ActionApplied counts an accepted action.
func (m *Recorder) ActionApplied(kind engine.ActionKind) {
	m.actionsCounter.WithLabelValues(kind.String()).Inc()
}

// ActionRejected counts a refused action.
func (m *Recorder) ActionRejected(kind engine.ActionKind) {
	m.rejectionsCounter.WithLabelValues(kind.String()).Inc()
}

// DecisionFailed counts a provider error or timeout.
func (m *Recorder) DecisionFailed() { m.decisionFailuresCounter.Inc() }

// RoundAborted counts a round that ended with an error.
func (m *Recorder) RoundAborted() { m.abortedCounter.Inc() }

// GameStarted and GameStopped track the active games gauge.
func (m *Recorder) GameStarted() { m.activeGamesGauge.Inc() }

func (m *Recorder) GameStopped() { m.activeGamesGauge.Dec() }

// Outcome labels a winner seat, -1 being a draw.
func Outcome(winner int8) string {
	if winner < 0 {
		return "draw"
	}
	return "seat" + strconv.Itoa(int(winner))
}
