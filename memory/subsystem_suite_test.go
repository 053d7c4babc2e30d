package memory_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMemorySubsystemSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "memory.Subsystem stall/hit/fill suite")
}
