package stock_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStock(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Stock Suite")
}
