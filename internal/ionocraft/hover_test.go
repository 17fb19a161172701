package ionocraft_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/ionocraft"
)

var _ = Describe("Model", func() {
	var craft *ionocraft.Model

	level := func() dynamo.State {
		x := make(dynamo.State, ionocraft.NumStates)
		x[ionocraft.Z] = 1.0
		return x
	}

	Context("hovering under trim input", func() {
		DescribeTable("keeps position within floating tolerance",
			func(mode ionocraft.Mode) {
				var err error
				craft, err = ionocraft.New(0.001, ionocraft.WithMode(mode), ionocraft.WithoutNoise())
				Expect(err).NotTo(HaveOccurred())

				x := level()
				u := craft.Equilibrium()
				for i := 0; i < 200; i++ {
					x, err = craft.Step(x, u)
					Expect(err).NotTo(HaveOccurred())
				}

				Expect(x[ionocraft.X]).To(BeNumerically("~", 0, 1e-12))
				Expect(x[ionocraft.Y]).To(BeNumerically("~", 0, 1e-12))
				Expect(x[ionocraft.Z]).To(BeNumerically("~", 1.0, 1e-9))
				Expect(x[ionocraft.VZ]).To(BeNumerically("~", 0, 1e-9))
				Expect(x[ionocraft.AZ]).To(BeNumerically("~", 0, 1e-9))
				Expect(x[ionocraft.Pitch]).To(Equal(0.0))
				Expect(x[ionocraft.Roll]).To(Equal(0.0))
			},
			Entry("three-input", ionocraft.ThreeInput),
			Entry("four-input", ionocraft.FourInput),
		)
	})

	Context("with more than trim thrust", func() {
		It("climbs, which is decreasing Z", func() {
			var err error
			craft, err = ionocraft.New(0.001, ionocraft.WithoutNoise())
			Expect(err).NotTo(HaveOccurred())

			u := craft.Equilibrium()
			u[ionocraft.Thrust] *= 1.5

			x := level()
			for i := 0; i < 100; i++ {
				x, err = craft.Step(x, u)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(x[ionocraft.Z]).To(BeNumerically("<", 1.0))
			Expect(x[ionocraft.AZ]).To(BeNumerically("~", ionocraft.Gravity/2, 1e-9))
		})
	})

	Context("with malformed vectors", func() {
		BeforeEach(func() {
			var err error
			craft, err = ionocraft.New(0.001)
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("rejects before computing",
			func(stateLen, inputLen int) {
				_, err := craft.Step(make(dynamo.State, stateLen), make(dynamo.Control, inputLen))
				Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))

				var dm *dynamo.DimensionMismatchError
				Expect(err).To(BeAssignableToTypeOf(dm))
			},
			Entry("empty state", 0, 3),
			Entry("state one short", 14, 3),
			Entry("input one long", 15, 4),
			Entry("input one short", 15, 2),
		)
	})

	Context("near gimbal lock", func() {
		It("propagates the singularity instead of guarding it", func() {
			var err error
			craft, err = ionocraft.New(0.001, ionocraft.WithoutNoise())
			Expect(err).NotTo(HaveOccurred())

			x := level()
			x[ionocraft.Pitch] = math.Pi / 2
			x[ionocraft.WZ] = 1

			next, err := craft.Step(x, craft.Equilibrium())
			Expect(err).NotTo(HaveOccurred())
			Expect(math.Abs(next[ionocraft.Yaw])).To(BeNumerically(">", 1e12))
		})
	})
})
