package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		result := Truncate("this is a long string", 10)
		Expect(result).To(Equal("this is a ..."))
	})
})

var _ = Describe("IsBlank", func() {
	It("treats whitespace-only strings as blank", func() {
		Expect(IsBlank("")).To(BeTrue())
		Expect(IsBlank("  \t\n")).To(BeTrue())
	})

	It("treats any visible text as non-blank", func() {
		Expect(IsBlank(" hi ")).To(BeFalse())
	})
})

var _ = Describe("UserAgent", func() {
	It("includes the build version", func() {
		Expect(UserAgent()).To(Equal("hospitalchat/" + Version))
	})
})
