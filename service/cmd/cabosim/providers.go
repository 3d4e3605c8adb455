package main

import (
	"strings"

	"github.com/jason-s-yu/cabo/engine"
	"github.com/jason-s-yu/cabo/engine/agent"
	"github.com/jason-s-yu/cabo/service/internal/remote"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func noClose() error { return nil }

// newProvider builds a seat provider from choice. The returned func releases
// any connection the provider holds.
func newProvider(choice string, seed uint64, log *logrus.Entry) (engine.DecisionProvider, func() error, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(choice), ":")
	switch kind {
	case "random":
		return agent.NewRandomProvider(seed), noClose, nil
	case "heuristic":
		return agent.NewHeuristicProvider(seed), noClose, nil
	case "policy":
		if arg == "" {
			return nil, nil, errors.New("policy provider needs a weights file, e.g. policy:weights.yaml")
		}
		p, err := agent.LoadPolicy(arg)
		if err != nil {
			return nil, nil, err
		}
		return agent.NewPolicyProvider(p), noClose, nil
	case "remote":
		if !strings.HasPrefix(arg, "ws://") && !strings.HasPrefix(arg, "wss://") {
			return nil, nil, errors.Errorf("remote provider needs a ws:// or wss:// url, got %q", arg)
		}
		p := remote.NewProvider(arg, log)
		return p, p.Close, nil
	}
	return nil, nil, errors.Errorf("unknown provider %q", choice)
}

// hostedProviders returns the providers served under /provider/{name}.
func hostedProviders(policyFile string, seed uint64) (map[string]engine.DecisionProvider, error) {
	hosted := map[string]engine.DecisionProvider{
		"random":    agent.NewRandomProvider(seed),
		"heuristic": agent.NewHeuristicProvider(seed),
	}
	if policyFile != "" {
		p, err := agent.LoadPolicy(policyFile)
		if err != nil {
			return nil, err
		}
		hosted["policy"] = agent.NewPolicyProvider(p)
	}
	return hosted, nil
}
