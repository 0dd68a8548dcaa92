package validation

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adeputra/pharmacy-inventory/internal"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("should pass when all rules hold", func() {
		v := NewValidator()
		v.Field("name", "Paracetamol").Required().MaxLength(255)
		v.Field("amount", int64(5)).MinInt(1)
		Expect(v.Validate()).To(BeNil())
	})

	It("should collect one message per failed rule", func() {
		v := NewValidator()
		v.Field("name", "").Required()
		v.Field("amount", int64(0)).MinInt(1)

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Code).To(Equal(internal.CodeBadRequest))
		Expect(err.Errors).To(HaveLen(2))
		Expect(err.Errors).To(ContainElement("name is required"))
	})

	It("should validate enumerated values", func() {
		v := NewValidator()
		v.Field("type", "sideways").OneOf("in", "out")
		Expect(v.Validate()).NotTo(BeNil())

		v = NewValidator()
		v.Field("type", "out").OneOf("in", "out")
		Expect(v.Validate()).To(BeNil())
	})

	It("should validate date format but allow empty", func() {
		v := NewValidator()
		v.Field("start_date", "2025-13-40").Date()
		Expect(v.Validate()).NotTo(BeNil())

		v = NewValidator()
		v.Field("start_date", "").Date()
		Expect(v.Validate()).To(BeNil())
	})

	It("should validate email addresses", func() {
		v := NewValidator()
		v.Field("email", "not-an-email").Email()
		Expect(v.Validate()).NotTo(BeNil())

		v = NewValidator()
		v.Field("email", "apoteker@example.com").Email()
		Expect(v.Validate()).To(BeNil())
	})
})

var _ = Describe("ValidatePassword", func() {
	It("should accept a compliant password", func() {
		Expect(ValidatePassword("Str0ng@Pass")).To(BeNil())
	})

	It("should reject passwords that are too short", func() {
		err := ValidatePassword("S0r@t")
		Expect(err).NotTo(BeNil())
		Expect(err.Code).To(Equal(internal.CodePasswordNotValid))
	})

	It("should reject passwords missing a character class", func() {
		Expect(ValidatePassword("alllowercase1@")).NotTo(BeNil())
		Expect(ValidatePassword("ALLUPPERCASE1@")).NotTo(BeNil())
		Expect(ValidatePassword("NoDigitsHere@")).NotTo(BeNil())
		Expect(ValidatePassword("NoSpecials123")).NotTo(BeNil())
	})
})
