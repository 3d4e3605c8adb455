package main

import (
	"github.com/jason-s-yu/cabo/engine"
	"github.com/sirupsen/logrus"
)

// summary accumulates results across rounds.
type summary struct {
	rounds    int
	aborted   int
	wins      [engine.NumPlayers]int
	draws     int
	caboCalls int
	falseCabo int
	reasons   map[string]int
	final     [engine.NumPlayers]int
}

func newSummary() *summary {
	return &summary{reasons: make(map[string]int)}
}

func (s *summary) add(res engine.Result) {
	s.rounds++
	s.reasons[res.Reason.String()]++
	if res.Winner < 0 {
		s.draws++
	} else {
		s.wins[res.Winner]++
	}
	for seat := range s.final {
		s.final[seat] += res.Final[seat]
	}
	if res.CaboCaller >= 0 {
		s.caboCalls++
		c := uint8(res.CaboCaller)
		if res.Raw[c] > res.Raw[engine.OpponentOf(c)] {
			s.falseCabo++
		}
	}
}

// meanFinal returns the average final score per seat.
func (s *summary) meanFinal() [engine.NumPlayers]float64 {
	var out [engine.NumPlayers]float64
	if s.rounds == 0 {
		return out
	}
	for seat, total := range s.final {
		out[seat] = float64(total) / float64(s.rounds)
	}
	return out
}

func (s *summary) report(log *logrus.Entry) {
	log.WithFields(logrus.Fields{
		"rounds":     s.rounds,
		"aborted":    s.aborted,
		"wins":       s.wins,
		"draws":      s.draws,
		"cabo_calls": s.caboCalls,
		"false_cabo": s.falseCabo,
		"end":        s.reasons,
		"mean_final": s.meanFinal(),
	}).Info("simulation finished")
}
