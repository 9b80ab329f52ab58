package tail

import "time"

// RetryPolicy bounds the retry loop for input read failures.
type RetryPolicy struct {
	// Initial is the delay after the first failure; it doubles per failure.
	Initial time.Duration
	// Max caps the delay.
	Max time.Duration
	// MaxConsecutive ends Run after this many failures in a row. Zero
	// retries forever.
	MaxConsecutive int
}

func (p RetryPolicy) withDefaults(poll time.Duration) RetryPolicy {
	if p.Initial <= 0 {
		p.Initial = poll
	}
	if p.Max < p.Initial {
		p.Max = p.Initial
	}
	return p
}

// Backoff returns the delay before retrying after the given 1-based failure.
func (p RetryPolicy) Backoff(failures int) time.Duration {
	if failures <= 1 {
		return p.Initial
	}
	delay := p.Initial
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= p.Max || delay <= 0 {
			return p.Max
		}
	}
	return delay
}

func (p RetryPolicy) exhausted(failures int) bool {
	return p.MaxConsecutive > 0 && failures >= p.MaxConsecutive
}
