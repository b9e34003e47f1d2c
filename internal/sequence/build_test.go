package sequence_test

import (
	"context"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tovsim/internal/eos"
	"github.com/san-kum/tovsim/internal/sequence"
	"github.com/san-kum/tovsim/internal/tov"
)

var _ = Describe("Build", func() {
	var (
		poly *eos.Polytrope
		cfg  sequence.Config
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		poly, err = eos.NewPolytrope(100, 2)
		Expect(err).NotTo(HaveOccurred())

		cfg = sequence.DefaultConfig()
		cfg.Workers = 4
		cfg.Logger = slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		ctx = context.Background()
	})

	Context("polytrope K=100, Gamma=2 over ten densities from 1e-4 to 5e-3", func() {
		var (
			rhos []float64
			seq  *sequence.Sequence
		)

		BeforeEach(func() {
			rhos = sequence.LinearDensities(1e-4, 5e-3, 10)
			var err error
			seq, err = sequence.Build(ctx, poly, sequence.PressuresFromDensities(poly, rhos), cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("solves every density in input order", func() {
			Expect(seq.Len()).To(Equal(10))
			Expect(seq.Failures).To(BeEmpty())
			for i, m := range seq.Models {
				Expect(seq.Points[i].Density).To(Equal(rhos[i]))
				Expect(m.CentralPressure).To(Equal(poly.PressureFromDensity(rhos[i])))
			}
		})

		It("has baryonic masses above gravitational masses", func() {
			for _, m := range seq.Models {
				Expect(m.BaryonMass).To(BeNumerically(">", m.Mass))
			}
		})

		It("splits into one stable prefix and one unstable suffix", func() {
			Expect(seq.Stability).To(HaveLen(10))
			Expect(seq.Stability[0]).To(Equal(sequence.Stable))
			Expect(seq.Stability[9]).To(Equal(sequence.Unstable))

			n := seq.StableCount()
			Expect(seq.MaxMassIndex).To(Equal(n - 1))
			for i, st := range seq.Stability {
				if i < n {
					Expect(st).To(Equal(sequence.Stable), "index %d", i)
				} else {
					Expect(st).To(Equal(sequence.Unstable), "index %d", i)
				}
			}
			Expect(seq.TurningPoints).To(Equal(1))
		})

		It("puts the maximum mass where the mass curve peaks", func() {
			heaviest := seq.MaxMass()
			Expect(heaviest).NotTo(BeNil())
			for _, m := range seq.Models {
				Expect(m.Mass).To(BeNumerically("<=", heaviest.Mass))
			}
			Expect(heaviest.Mass).To(BeNumerically("~", 1.64, 0.05))
		})

		It("is causal everywhere", func() {
			Expect(seq.AllCausal()).To(BeTrue())
			for _, c := range seq.Causality {
				Expect(c.MaxSoundSpeed).To(BeNumerically(">", 0))
				Expect(c.MaxSoundSpeed).To(BeNumerically("<", 1))
				Expect(c.MinSoundSpeedSq).To(BeNumerically(">=", 0))
			}
		})

		It("does not depend on the worker count", func() {
			serial := cfg
			serial.Workers = 1
			again, err := sequence.Build(ctx, poly, sequence.PressuresFromDensities(poly, rhos), serial)
			Expect(err).NotTo(HaveOccurred())
			for i := range seq.Models {
				Expect(again.Models[i].Mass).To(Equal(seq.Models[i].Mass))
				Expect(again.Models[i].Radius).To(Equal(seq.Models[i].Radius))
			}
		})
	})

	It("skips failed solves and keeps the rest in order", func() {
		pts := sequence.PressuresFromDensities(poly, []float64{5e-4, 0, 1e-3})

		seq, err := sequence.Build(ctx, poly, pts, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.Len()).To(Equal(2))
		Expect(seq.Points[0].Density).To(Equal(5e-4))
		Expect(seq.Points[1].Density).To(Equal(1e-3))

		Expect(seq.Failures).To(HaveLen(1))
		Expect(seq.Failures[0].Index).To(Equal(1))
		Expect(seq.Failures[0].Err).To(MatchError(tov.ErrInvalidInput))
	})

	It("reports an acausal equation of state", func() {
		// P = 1000 rho^2 with epsilon = rho gives c_s^2 = 2000 rho.
		rhos := sequence.LogDensities(1e-10, 1e-1, 400)
		ps := make([]float64, len(rhos))
		for i, rho := range rhos {
			ps[i] = 1000 * rho * rho
		}
		stiff, err := eos.NewTabulated(rhos, ps, rhos, eos.ExtrapolateLinear)
		Expect(err).NotTo(HaveOccurred())

		seq, err := sequence.Build(ctx, stiff, sequence.PressuresFromDensities(stiff, []float64{2e-3}), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.Causality[0].Causal).To(BeFalse())
		Expect(seq.Causality[0].MaxSoundSpeed).To(BeNumerically(">", 1))
		Expect(seq.AllCausal()).To(BeFalse())
	})

	It("rejects an empty sweep", func() {
		_, err := sequence.Build(ctx, poly, nil, cfg)
		Expect(err).To(MatchError(sequence.ErrNoPoints))
	})

	It("fails when no model converges", func() {
		pts := []sequence.Point{{Density: 0, Pressure: 0}, {Density: -1, Pressure: -1}}
		seq, err := sequence.Build(ctx, poly, pts, cfg)
		Expect(err).To(MatchError(sequence.ErrNoModels))
		Expect(seq.Failures).To(HaveLen(2))
	})

	It("stops on a canceled context", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := sequence.Build(canceled, poly, sequence.PressuresFromDensities(poly, []float64{1e-3, 2e-3}), cfg)
		Expect(err).To(MatchError(context.Canceled))
	})
})
