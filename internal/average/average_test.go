package average_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phaseavg/internal/average"
	"github.com/san-kum/phaseavg/internal/caseio"
	"github.com/san-kum/phaseavg/internal/field"
	"github.com/san-kum/phaseavg/internal/schedule"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("Run", func() {
	var (
		store *memStore
		times []float64
		req   average.Request
	)

	BeforeEach(func() {
		store = newMemStore()
		times = []float64{0.0, 0.5, 1.0, 1.5, 2.0}
		req = average.Request{
			Field:    "U",
			Kind:     field.KindVector,
			Schedule: schedule.Schedule{PhaseStart: 0.5, CycleLength: 1.0},
		}
		store.put("U", 0.0, vectors(field.Vector{100, 100, 100}, field.Vector{100, 100, 100}))
		store.put("U", 0.5, vectors(field.Vector{1, 2, 3}, field.Vector{0, 0, 2}))
		store.put("U", 1.0, vectors(field.Vector{50, 50, 50}, field.Vector{50, 50, 50}))
		store.put("U", 1.5, vectors(field.Vector{3, 4, 5}, field.Vector{0, 0, 4}))
		store.put("U", 2.0, vectors(field.Vector{70, 70, 70}, field.Vector{70, 70, 70}))
	})

	run := func(opts ...average.Option) (*average.Result, error) {
		return average.Run(store, times, req, append([]average.Option{average.WithLogger(quiet)}, opts...)...)
	}

	Context("when every scheduled instant is stored", func() {
		It("averages exactly the phase-locked snapshots", func() {
			res, err := run()
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Count).To(Equal(2))
			Expect(res.Matched()).To(Equal([]float64{0.5, 1.5}))
			Expect(res.Name).To(Equal("U_phase_locked_0.5"))
			Expect(res.Time).To(Equal(2.0))
			Expect(res.TimeName).To(Equal("2"))
			Expect(res.Visited).To(Equal(5))

			out := store.written["U_phase_locked_0.5@2"]
			Expect(out).NotTo(BeNil())
			Expect(out.Kind).To(Equal(field.KindVector))
			Expect(out.Count).To(Equal(2))
			Expect(out.Data).To(Equal([]float64{2, 3, 4, 0, 0, 3}))
		})

		It("writes exactly once, at the last visited timestamp", func() {
			_, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(store.writes).To(Equal([]string{"U_phase_locked_0.5@2"}))
		})

		It("moves the time cursor through every timestamp in order", func() {
			_, err := run()
			Expect(err).NotTo(HaveOccurred())
			// The first entry is the base field validation.
			Expect(store.cursor).To(Equal([]float64{0, 0, 0.5, 1.0, 1.5, 2.0}))
		})

		It("reports every visited timestamp to observers", func() {
			var visits []average.Visit
			_, err := run(average.WithObserver(average.ObserverFunc(func(v average.Visit) {
				visits = append(visits, v)
			})))
			Expect(err).NotTo(HaveOccurred())

			Expect(visits).To(HaveLen(5))
			statuses := make([]average.Status, len(visits))
			for i, v := range visits {
				statuses[i] = v.Status
			}
			Expect(statuses).To(Equal([]average.Status{
				average.StatusSkipped, average.StatusMatched, average.StatusSkipped,
				average.StatusMatched, average.StatusSkipped,
			}))
			Expect(visits[1].Instant).To(Equal(0.5))
			Expect(visits[3].Instant).To(Equal(1.5))
			Expect(visits[1].Cycle).To(Equal(0))
			Expect(visits[3].Cycle).To(Equal(1))
			Expect(visits[3].MeanMag).To(BeNumerically(">", 0))
		})

		It("ends in the written state", func() {
			r := average.New(store, average.WithLogger(quiet))
			Expect(r.State()).To(Equal(average.StateInit))

			_, err := r.Run(times, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.State()).To(Equal(average.StateWritten))
			Expect(r.State().Terminal()).To(BeTrue())

			_, err = r.Run(times, req)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when a scheduled snapshot is missing", func() {
		BeforeEach(func() {
			delete(store.fields, "U@1.5")
		})

		It("skips it without retargeting the schedule", func() {
			res, err := run()
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Count).To(Equal(1))
			Expect(res.Matched()).To(Equal([]float64{0.5}))
			Expect(store.reads).To(Equal([]string{"U@0", "U@0.5", "U@1.5"}))

			out := store.written["U_phase_locked_0.5@2"]
			Expect(out.Data).To(Equal([]float64{1, 2, 3, 0, 0, 2}))

			Expect(res.Samples).To(HaveLen(2))
			Expect(res.Samples[1].Status).To(Equal(average.StatusMissing))
			Expect(errors.Is(res.Samples[1].Err, field.ErrNotFound)).To(BeTrue())
		})
	})

	Context("when a scheduled snapshot is stored under another kind", func() {
		BeforeEach(func() {
			store.put("U", 1.5, scalars(7, 7))
		})

		It("counts it as a miss and keeps going", func() {
			res, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(1))
			Expect(res.Samples[1].Status).To(Equal(average.StatusMismatched))
		})
	})

	Context("when a scheduled snapshot cannot be read", func() {
		BeforeEach(func() {
			store.failAt["U@1.5"] = errors.New("disk on fire")
		})

		It("counts it as unreadable and keeps going", func() {
			res, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(1))
			Expect(res.Samples[1].Status).To(Equal(average.StatusUnreadable))
		})
	})

	Context("when no timestamp hits the schedule", func() {
		BeforeEach(func() {
			req.Schedule = schedule.Schedule{PhaseStart: 0.25, CycleLength: 1.0}
		})

		It("writes the zero field rather than failing", func() {
			res, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(0))
			Expect(res.Name).To(Equal("U_phase_locked_0.25"))

			out := store.written["U_phase_locked_0.25@2"]
			Expect(out).NotTo(BeNil())
			Expect(out.Count).To(Equal(2))
			Expect(out.Data).To(Equal([]float64{0, 0, 0, 0, 0, 0}))
			Expect(res.Summary.Max).To(Equal(0.0))
		})
	})

	Context("when the base field is absent", func() {
		BeforeEach(func() {
			delete(store.fields, "U@0")
		})

		It("fails with FieldNotFound and writes nothing", func() {
			r := average.New(store, average.WithLogger(quiet))
			_, err := r.Run(times, req)

			Expect(err).To(MatchError(average.ErrFieldNotFound))
			var fe *average.FieldError
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Field).To(Equal("U"))
			Expect(fe.Time).To(Equal("0"))
			Expect(store.writes).To(BeEmpty())
			Expect(r.State()).To(Equal(average.StateFailed))
		})
	})

	Context("when the base field is stored under another kind", func() {
		It("fails with TypeMismatch and writes nothing", func() {
			req.Kind = field.KindScalar
			_, err := run()

			Expect(err).To(MatchError(average.ErrTypeMismatch))
			Expect(store.writes).To(BeEmpty())
		})
	})

	Context("when a matched snapshot has a different entity count", func() {
		BeforeEach(func() {
			store.put("U", 1.5, vectors(field.Vector{1, 1, 1}))
		})

		It("fails without writing", func() {
			_, err := run()
			Expect(err).To(MatchError(field.ErrEntityMismatch))
			Expect(store.writes).To(BeEmpty())
		})
	})

	Context("with malformed input", func() {
		It("rejects an empty timestamp list", func() {
			times = nil
			_, err := run()
			Expect(err).To(MatchError(average.ErrNoTimes))
		})

		It("rejects an invalid schedule", func() {
			req.Schedule.CycleLength = 0
			_, err := run()
			Expect(err).To(MatchError(schedule.ErrInvalid))
			Expect(store.reads).To(BeEmpty())
		})

		It("rejects an invalid kind", func() {
			req.Kind = field.Kind(99)
			_, err := run()
			Expect(err).To(MatchError(field.ErrUnknownFieldType))
		})
	})

	Context("with a matching tolerance", func() {
		BeforeEach(func() {
			times = []float64{0, 0.1, 0.2, 0.3}
			req = average.Request{
				Field:    "p",
				Kind:     field.KindScalar,
				Schedule: schedule.Schedule{PhaseStart: 0.1, CycleLength: 0.1, Tolerance: 1e-9},
			}
			for _, t := range times {
				store.put("p", t, scalars(t*10))
			}
		})

		It("matches instants that drift from the stored times", func() {
			res, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(3))
			Expect(store.written["p_phase_locked_0.1@0.3"].Data[0]).To(BeNumerically("~", 2.0, 1e-12))
		})
	})

	DescribeTable("averaging every value kind",
		func(kind field.Kind, a, b, want []float64) {
			req = average.Request{
				Field:    "f",
				Kind:     kind,
				Schedule: schedule.Schedule{PhaseStart: 0, CycleLength: 1},
			}
			times = []float64{0, 0.5, 1}
			store.put("f", 0, &field.Raw{Kind: kind, Count: 1, Data: a})
			store.put("f", 0.5, &field.Raw{Kind: kind, Count: 1, Data: a})
			store.put("f", 1, &field.Raw{Kind: kind, Count: 1, Data: b})

			res, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(2))
			Expect(store.written["f_phase_locked_0@1"].Data).To(Equal(want))
		},
		Entry("scalar", field.KindScalar, []float64{1}, []float64{3}, []float64{2}),
		Entry("vector", field.KindVector, []float64{1, 2, 3}, []float64{3, 2, 1}, []float64{2, 2, 2}),
		Entry("tensor", field.KindTensor,
			[]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, []float64{9, 8, 7, 6, 5, 4, 3, 2, 1},
			[]float64{5, 5, 5, 5, 5, 5, 5, 5, 5}),
		Entry("symmTensor", field.KindSymmTensor,
			[]float64{2, 0, 0, 2, 0, 2}, []float64{4, 2, 2, 4, 2, 4},
			[]float64{3, 1, 1, 3, 1, 3}),
		Entry("sphTensor", field.KindSphTensor, []float64{-1}, []float64{5}, []float64{2}),
	)
})

var _ = Describe("OutputName", func() {
	It("joins the base name and the phase start", func() {
		Expect(average.OutputName("U", "0.5")).To(Equal("U_phase_locked_0.5"))
	})
})

var _ = Describe("Run against a case directory", func() {
	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		c, err := caseio.Open(root)
		Expect(err).NotTo(HaveOccurred())
		for i, t := range []float64{0, 0.5, 1, 1.5, 2} {
			raw := &field.Raw{Kind: field.KindSymmTensor, Count: 2, Data: []float64{
				float64(i), 1, 2, 3, 4, 5,
				6, 7, 8, 9, 10, float64(i) * 0.1,
			}}
			Expect(c.Write("R", t, raw)).To(Succeed())
		}
	})

	runOnce := func() []byte {
		c, err := caseio.Open(root)
		Expect(err).NotTo(HaveOccurred())
		times, err := c.Times(caseio.Selection{})
		Expect(err).NotTo(HaveOccurred())

		res, err := average.Run(c, times, average.Request{
			Field:    "R",
			Kind:     field.KindSymmTensor,
			Schedule: schedule.Schedule{PhaseStart: 0.5, CycleLength: 1},
		}, average.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Count).To(Equal(2))

		data, err := os.ReadFile(c.FieldPath(res.Name, res.Time))
		Expect(err).NotTo(HaveOccurred())
		return data
	}

	It("produces byte-identical output on repeated runs", func() {
		first := runOnce()
		second := runOnce()
		Expect(second).To(Equal(first))
	})

	It("writes into the last time directory", func() {
		runOnce()
		c, err := caseio.Open(root)
		Expect(err).NotTo(HaveOccurred())
		raw, err := c.Read("R_phase_locked_0.5", 2, field.KindSymmTensor)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw.Data[0]).To(Equal(2.0))
		Expect(raw.Data[11]).To(BeNumerically("~", 0.2, 1e-12))
	})

	It("treats a file whose header overstates its size as unreadable", func() {
		var buf bytes.Buffer
		Expect(binary.Write(&buf, binary.LittleEndian, caseio.FileHeader{
			Magic:    caseio.MagicNumber,
			Version:  caseio.Version,
			Kind:     uint8(field.KindSymmTensor),
			Count:    1 << 40,
			RawBytes: (1 << 40) * 6 * 8,
		})).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, "1.5", "R"), buf.Bytes(), 0644)).To(Succeed())

		c, err := caseio.Open(root)
		Expect(err).NotTo(HaveOccurred())
		times, err := c.Times(caseio.Selection{})
		Expect(err).NotTo(HaveOccurred())

		res, err := average.Run(c, times, average.Request{
			Field:    "R",
			Kind:     field.KindSymmTensor,
			Schedule: schedule.Schedule{PhaseStart: 0.5, CycleLength: 1},
		}, average.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Count).To(Equal(1))
		Expect(res.Samples[1].Status).To(Equal(average.StatusUnreadable))
		Expect(res.Samples[1].Err).To(MatchError(caseio.ErrCorrupt))
	})
})
