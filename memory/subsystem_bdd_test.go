package memory_test

import (
	"github.com/go-pipesim/pipesim/memory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func buildSubsystem() *memory.Subsystem {
	const addressSize = 13
	l1 := memory.NewLevel("L1", addressSize, 4, 1)
	l2 := memory.NewLevel("L2", addressSize, 6, 4)
	ram := memory.NewRAM(addressSize, 10, 10)
	return memory.NewSubsystem(l1, l2, ram)
}

func runRead(s *memory.Subsystem, addr uint32) uint32 {
	for {
		v, stall, err := s.Read(addr)
		Expect(err).NotTo(HaveOccurred())
		if !stall {
			return v
		}
	}
}

func runWrite(s *memory.Subsystem, addr, value uint32) {
	for {
		stall, err := s.Write(addr, value)
		Expect(err).NotTo(HaveOccurred())
		if !stall {
			return
		}
	}
}

var _ = Describe("memory.Subsystem", func() {
	var sub *memory.Subsystem

	BeforeEach(func() {
		sub = buildSubsystem()
	})

	Context("a cold read", func() {
		It("stalls until the full-miss (RAM) latency elapses, then returns zero-initialized RAM", func() {
			stalls := 0
			var value uint32
			for {
				v, stall, err := sub.Read(300)
				Expect(err).NotTo(HaveOccurred())
				if !stall {
					value = v
					break
				}
				stalls++
			}
			Expect(stalls).To(Equal(10))
			Expect(value).To(Equal(uint32(0)))
		})
	})

	Context("a write followed by a read to the same address", func() {
		It("returns exactly what was written, regardless of which level serves the read", func() {
			runWrite(sub, 45, 50)
			Expect(runRead(sub, 45)).To(Equal(uint32(50)))
		})
	})

	Context("an out-of-range address", func() {
		It("fails closed with AddressOutOfRangeError instead of stalling forever", func() {
			ram := memory.NewRAM(4, 1, 1) // 16 words
			l1 := memory.NewLevel("L1", 4, 2, 1)
			l2 := memory.NewLevel("L2", 4, 2, 1)
			small := memory.NewSubsystem(l1, l2, ram)

			_, _, err := small.Read(16)
			Expect(err).To(HaveOccurred())
			var rangeErr *memory.AddressOutOfRangeError
			Expect(err).To(BeAssignableToTypeOf(rangeErr))
		})
	})

	Context("write-through, no-allocate", func() {
		It("never installs a cache line on a write that misses both levels", func() {
			runWrite(sub, 500, 1)
			Expect(sub.L1.CheckHit(500)).To(BeFalse())
			Expect(sub.L2.CheckHit(500)).To(BeFalse())

			v, err := sub.RAM.Read(500)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(1)))
		})
	})

	Context("repeated access to the same block", func() {
		It("becomes an L1 hit and stalls for only the L1 latency thereafter", func() {
			runRead(sub, 80) // cold fill

			stalls := 0
			for {
				_, stall, err := sub.Read(80)
				Expect(err).NotTo(HaveOccurred())
				if !stall {
					break
				}
				stalls++
			}
			Expect(stalls).To(Equal(1))
		})
	})
})
