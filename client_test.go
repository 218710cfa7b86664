package pacer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pacer "github.com/pacerhttp/pacer"
)

// stubTransport implements http.RoundTripper for testing.
type stubTransport struct {
	calls atomic.Int32
	fn    func(req *http.Request) (*http.Response, error)
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	if t.fn != nil {
		return t.fn(req)
	}
	return stubResponse(req, http.StatusOK), nil
}

func (t *stubTransport) callCount() int {
	return int(t.calls.Load())
}

func stubResponse(req *http.Request, status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}
}

// recordingStrategy counts Wait calls, standing in for a caller-supplied
// custom strategy.
type recordingStrategy struct {
	waits atomic.Int32
}

func (s *recordingStrategy) Wait(ctx context.Context) error {
	s.waits.Add(1)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

var _ = Describe("Client", func() {
	var (
		ctx       context.Context
		transport *stubTransport
		client    *pacer.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		transport = &stubTransport{}
		client = pacer.New(
			pacer.WithHTTPClient(&http.Client{Transport: transport}),
			pacer.WithLogger(quietLogger()),
		)
	})

	Describe("ConfigureLimit", func() {
		It("accepts a duration and builds a strategy via the factory", func() {
			var got time.Duration
			strategy := &recordingStrategy{}

			client = pacer.New(
				pacer.WithHTTPClient(&http.Client{Transport: transport}),
				pacer.WithLogger(quietLogger()),
				pacer.WithStrategyFactory(func(d time.Duration) pacer.Strategy {
					got = d
					return strategy
				}),
			)

			Expect(client.ConfigureLimit("https://api.example.com/a", 5*time.Second)).To(Succeed())
			Expect(got).To(Equal(5 * time.Second))

			_, err := client.Get(ctx, "https://api.example.com/a")
			Expect(err).NotTo(HaveOccurred())
			Expect(strategy.waits.Load()).To(Equal(int32(1)))
		})

		It("stores a caller-supplied strategy instance as-is", func() {
			strategy := &recordingStrategy{}
			Expect(client.ConfigureLimit("https://api.example.com/b", strategy)).To(Succeed())

			_, err := client.Get(ctx, "https://api.example.com/b")
			Expect(err).NotTo(HaveOccurred())
			_, err = client.Get(ctx, "https://api.example.com/b")
			Expect(err).NotTo(HaveOccurred())

			Expect(strategy.waits.Load()).To(Equal(int32(2)))
		})

		It("rejects anything that is not a duration or a strategy", func() {
			err := client.ConfigureLimit("https://api.example.com/c", "2s")
			Expect(err).To(MatchError(pacer.ErrInvalidRateLimit))

			var invalid *pacer.InvalidRateLimitError
			Expect(errors.As(err, &invalid)).To(BeTrue())
			Expect(invalid.Endpoint).To(Equal("https://api.example.com/c"))
		})

		It("replaces a prior configuration for the same endpoint", func() {
			first := &recordingStrategy{}
			second := &recordingStrategy{}

			Expect(client.ConfigureLimit("https://api.example.com/d", first)).To(Succeed())
			Expect(client.ConfigureLimit("https://api.example.com/d", second)).To(Succeed())

			_, err := client.Get(ctx, "https://api.example.com/d")
			Expect(err).NotTo(HaveOccurred())

			Expect(first.waits.Load()).To(Equal(int32(0)))
			Expect(second.waits.Load()).To(Equal(int32(1)))
		})
	})

	Describe("verbs", func() {
		It("forwards the fixed method to the executor", func() {
			var methods []string
			transport.fn = func(req *http.Request) (*http.Response, error) {
				methods = append(methods, req.Method)
				return stubResponse(req, http.StatusOK), nil
			}

			_, err := client.Get(ctx, "https://api.example.com/x")
			Expect(err).NotTo(HaveOccurred())
			_, err = client.Post(ctx, "https://api.example.com/x")
			Expect(err).NotTo(HaveOccurred())
			_, err = client.Put(ctx, "https://api.example.com/x")
			Expect(err).NotTo(HaveOccurred())
			_, err = client.Delete(ctx, "https://api.example.com/x")
			Expect(err).NotTo(HaveOccurred())

			Expect(methods).To(Equal([]string{"GET", "POST", "PUT", "DELETE"}))
		})
	})

	Describe("rate limiting", func() {
		It("spaces sequential requests to a configured endpoint", func() {
			const url = "https://api.example.com/x"
			Expect(client.ConfigureLimit(url, 30*time.Millisecond)).To(Succeed())

			start := time.Now()
			for i := 0; i < 3; i++ {
				_, err := client.Get(ctx, url)
				Expect(err).NotTo(HaveOccurred())
			}

			// Three calls, two enforced gaps.
			Expect(time.Since(start)).To(BeNumerically(">=", 55*time.Millisecond))
			Expect(transport.callCount()).To(Equal(3))
		})

		It("prefers the registry entry over a per-call rate limit", func() {
			const url = "https://api.example.com/x"
			registered := &recordingStrategy{}
			Expect(client.ConfigureLimit(url, registered)).To(Succeed())

			start := time.Now()
			_, err := client.Get(ctx, url, pacer.WithRateLimit(500*time.Millisecond))
			Expect(err).NotTo(HaveOccurred())
			_, err = client.Get(ctx, url, pacer.WithRateLimit(500*time.Millisecond))
			Expect(err).NotTo(HaveOccurred())

			// The per-call limit is ignored, so nothing forces a half-second gap.
			Expect(time.Since(start)).To(BeNumerically("<", 200*time.Millisecond))
			Expect(registered.waits.Load()).To(Equal(int32(2)))
		})

		It("builds a fresh ad-hoc strategy per call", func() {
			start := time.Now()
			for i := 0; i < 2; i++ {
				_, err := client.Get(ctx, "https://api.example.com/adhoc",
					pacer.WithRateLimit(400*time.Millisecond))
				Expect(err).NotTo(HaveOccurred())
			}

			// Each call starts its own timer, so neither call waits.
			Expect(time.Since(start)).To(BeNumerically("<", 200*time.Millisecond))
			Expect(transport.callCount()).To(Equal(2))
		})

		It("keeps state across calls for a caller-held per-call strategy", func() {
			s := pacer.NewFixedInterval(40 * time.Millisecond)

			_, err := client.Get(ctx, "https://api.example.com/held", pacer.WithStrategy(s))
			Expect(err).NotTo(HaveOccurred())

			start := time.Now()
			_, err = client.Get(ctx, "https://api.example.com/held", pacer.WithStrategy(s))
			Expect(err).NotTo(HaveOccurred())
			Expect(time.Since(start)).To(BeNumerically(">=", 35*time.Millisecond))
		})
	})
})
