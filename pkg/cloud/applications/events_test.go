package applications_test

import (
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/cloudctl/pkg/cloud/applications"
)

var _ = Describe("RequestStateChangeEvent", func() {
	decode := func(s string) (applications.RequestStateChangeEvent, error) {
		var ev applications.RequestStateChangeEvent
		err := json.Unmarshal([]byte(s), &ev)
		return ev, err
	}

	It("decodes the externally tagged variant", func() {
		ev, err := decode(`{"FunctionRunAssigned":{"namespace":"ns","application_name":"app","application_version":"1","request_id":"r","function_name":"embed","function_run_id":"fr","allocation_id":"al","executor_id":"ex-1"}}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Kind).To(Equal(applications.KindFunctionRunAssigned))
		Expect(ev.FunctionRunAssigned.ExecutorID).To(Equal("ex-1"))
		Expect(ev.Metadata().RequestID).To(Equal("r"))
		Expect(ev.IsTerminal()).To(BeFalse())
		Expect(ev.Describe()).To(Equal("Function Run Assigned: embed on ex-1"))
	})

	It("rejects unknown kinds", func() {
		_, err := decode(`{"SomethingNew":{}}`)
		Expect(errors.Is(err, applications.ErrUnknownEvent)).To(BeTrue())
	})

	It("rejects objects with more than one kind", func() {
		_, err := decode(`{"RequestStarted":{},"RequestFinished":{}}`)
		Expect(errors.Is(err, applications.ErrUnknownEvent)).To(BeTrue())
	})

	It("reads timestamps with and without a zone as UTC", func() {
		ev, err := decode(`{"RequestStarted":{"request_id":"r","application_version":"1","created_at":"2025-06-01T10:00:00+02:00"}}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Metadata().CreatedAt.Time).To(Equal(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)))

		ev, err = decode(`{"RequestStarted":{"request_id":"r","application_version":"1","created_at":"2025-06-01T10:00:00.5"}}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Metadata().CreatedAt.Time).To(Equal(time.Date(2025, 6, 1, 10, 0, 0, 500000000, time.UTC)))
	})

	It("accepts loosely typed progress fields", func() {
		ev, err := decode(`{"RequestProgressUpdated":{"request_id":"r","message":{"text":"hi"},"step":1.5,"total":"n/a","attributes":{"page":3}}}`)
		Expect(err).NotTo(HaveOccurred())

		p := ev.RequestProgressUpdated
		Expect(p.Message).To(Equal(`{"text":"hi"}`))
		Expect(*p.Step).To(Equal(1.5))
		Expect(p.Total).To(BeNil())
		Expect(p.Attributes).To(MatchJSON(`{"page":3}`))
		Expect(ev.Describe()).To(Equal(`Request Progress Updated: {"text":"hi"}`))
	})

	It("encodes back to the tagged form", func() {
		ev, err := decode(`{"RequestFinished":{"request_id":"r","application_version":"1","outcome":{"failure":"cancelled"}}}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.IsTerminal()).To(BeTrue())

		data, err := json.Marshal(ev)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{"RequestFinished":{"application_version":"1","request_id":"r","outcome":{"failure":"cancelled"}}}`))
	})
})
