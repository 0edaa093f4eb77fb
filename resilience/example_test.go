package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/rescache/cache"
	"github.com/jonwraymond/rescache/resilience"
)

type Sound struct {
	Name    string
	Samples []int16
}

func ExampleProtect() {
	attempts := 0
	load := func(ctx context.Context, key string) (*Sound, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("device busy")
		}
		return &Sound{Name: key, Samples: make([]int16, 8)}, nil
	}

	g := resilience.NewGuard(
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
		})),
		resilience.WithTimeout(time.Second),
	)

	sounds, _ := cache.New(resilience.Protect(g, load))
	s, err := sounds.Get(context.Background(), "jump.wav")
	fmt.Println(s.Name, err, attempts)
	// Output: jump.wav <nil> 2
}
