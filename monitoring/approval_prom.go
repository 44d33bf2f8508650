package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ApprovalTokensIssuedAmount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "surakshit_approval_tokens_issued_amount",
	Help: "The total number of approval tokens issued",
})

var ExecuteAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "surakshit_execute_attempts_total",
	Help: "The total number of execute requests by outcome",
}, []string{"outcome"})

var PullRequestsOpenedAmount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "surakshit_pull_requests_opened_amount",
	Help: "The total number of remediation pull requests opened",
})
