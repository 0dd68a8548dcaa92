package transport_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

func TestTransport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Suite")
}

var _ = Describe("RequestHeaderMiddleware", func() {
	var (
		base    *transport.BaseHandler
		handler http.Handler
		seen    transport.RequestHeader
		seenOK  bool
		called  bool
	)

	BeforeEach(func() {
		base = transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
		called = false
		seenOK = false
		handler = base.RequestHeaderMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			seen, seenOK = transport.HeaderFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	})

	decode := func(rec *httptest.ResponseRecorder) transport.Envelope {
		var env transport.Envelope
		Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())
		return env
	}

	It("should reject a GET without source and usecase", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/medicines", nil))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(called).To(BeFalse())

		env := decode(rec)
		Expect(env.ResponseHeader.Code).To(Equal(internal.CodeBadRequest))
		Expect(env.ResponseHeader.Success).To(BeFalse())
		Expect(env.ResponseHeader.Error).To(ConsistOf(
			"request_header.source is required",
			"request_header.usecase is required",
		))
	})

	It("should reject a GET carrying only source", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/medicines?source=web", nil))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(called).To(BeFalse())
		Expect(decode(rec).ResponseHeader.Error).To(ConsistOf("request_header.usecase is required"))
	})

	It("should synthesize the header from query parameters and pass it downstream", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/medicines?source=web&usecase=list-medicines&userId=7", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(called).To(BeTrue())
		Expect(seenOK).To(BeTrue())
		Expect(seen.Source).To(Equal("web"))
		Expect(seen.Usecase).To(Equal("list-medicines"))
		Expect(seen.UserID).To(Equal("7"))
	})

	It("should enforce the header on DELETE requests", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("DELETE", "/medicines/1", nil))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(called).To(BeFalse())
	})

	It("should let bodied requests through for decode-time validation", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/medicines", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(called).To(BeTrue())
		Expect(seenOK).To(BeFalse())
	})
})
