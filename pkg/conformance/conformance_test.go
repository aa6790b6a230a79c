package conformance

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Testdata suites", func() {
	tests, err := LoadSuites("testdata")
	if err != nil {
		panic(err)
	}
	runner := NewRunner()

	It("should load every suite", func() {
		Expect(tests).NotTo(BeEmpty())
		files := map[string]bool{}
		for _, t := range tests {
			files[t.File] = true
		}
		Expect(files).To(HaveKey("stack.yaml"))
		Expect(files).To(HaveKey("memory.yaml"))
		Expect(files).To(HaveKey("flow.yaml"))
		Expect(files).To(HaveKey("errors.yaml"))
	})

	for _, test := range tests {
		It(test.File+": "+test.Test.Name, func() {
			result := runner.Run(test)
			if result.Skipped {
				Skip(result.SkipReason)
			}
			Expect(result.Error).NotTo(HaveOccurred())
			Expect(result.Passed).To(BeTrue())
		})
	}
})

var _ = Describe("Runner", func() {
	parse := func(doc string) LoadedTest {
		tests, err := ParseSuite([]byte(doc))
		Expect(err).NotTo(HaveOccurred())
		Expect(tests).To(HaveLen(1))
		return tests[0]
	}

	It("should report mismatching cells", func() {
		test := parse(`
name: s
tests:
  - name: wrong
    source: |
      push constant 7
    ram: {0: 256}
    expect:
      ram: {256: 8}
`)
		result := NewRunner().Run(test)
		Expect(result.Passed).To(BeFalse())
		Expect(result.Error).To(MatchError("RAM[256] = 7, want 8"))
	})

	It("should fail when an expected error does not occur", func() {
		test := parse(`
name: s
tests:
  - name: fine
    source: |
      push constant 1
    ram: {0: 256}
    expect:
      error: validation
`)
		result := NewRunner().Run(test)
		Expect(result.Passed).To(BeFalse())
		Expect(result.Error).To(MatchError(ContainSubstring("run succeeded")))
	})

	It("should match errors by message fragment", func() {
		test := parse(`
name: s
tests:
  - name: pointer
    source: |
      pop pointer 3
    expect:
      error: pointer index must be 0 or 1
`)
		Expect(NewRunner().Run(test).Passed).To(BeTrue())
	})

	It("should skip tests marked skip", func() {
		test := parse(`
name: s
tests:
  - name: later
    skip: needs a keyboard
    source: |
      push constant 1
    expect:
      ram: {0: 257}
`)
		result := NewRunner().Run(test)
		Expect(result.Skipped).To(BeTrue())
		Expect(result.SkipReason).To(Equal("needs a keyboard"))
	})

	It("should reject tests without a program", func() {
		_, err := ParseSuite([]byte("name: s\ntests:\n  - name: empty\n"))
		Expect(err).To(MatchError(ContainSubstring("neither source nor units")))
	})

	It("should echo commands when asked", func() {
		test := parse(`
name: s
tests:
  - name: c
    source: |
      push constant 3 // three
    expect:
      ram: {256: 3}
`)
		r := &Runner{Comments: true}
		code, _, err := r.Program(test.Test)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(HavePrefix("// push constant 3\n"))
	})

	It("should summarize results", func() {
		results := []TestResult{
			{Passed: true},
			{Skipped: true},
			{},
		}
		stats := ComputeStats(results)
		Expect(stats).To(Equal(SummaryStats{Total: 3, Passed: 1, Failed: 1, Skipped: 1}))
		Expect(FormatStats(stats)).To(Equal("1 passed, 1 failed, 1 skipped (3 total)"))
		Expect(FormatResults(results)).To(ContainSubstring("FAIL"))
	})
})
