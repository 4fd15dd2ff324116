package metrics

// Metrics holds model provider usage for a time period.
type Metrics struct {
	requests         int
	tokens           int
	costMillidollars int
}

// New creates a Metrics snapshot.
func New(requests, tokens, costMillidollars int) Metrics {
	return Metrics{requests: requests, tokens: tokens, costMillidollars: costMillidollars}
}

// Requests returns the number of provider API calls.
func (m Metrics) Requests() int { return m.requests }

// Tokens returns the total tokens consumed.
func (m Metrics) Tokens() int { return m.tokens }

// CostMillidollars returns cost in millidollars (1 USD = 1000).
func (m Metrics) CostMillidollars() int { return m.costMillidollars }
