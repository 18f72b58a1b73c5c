package eventstream_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/cloudctl/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("wraps a payload in a versioned envelope", func() {
		event, err := eventstream.NewStreamEvent(eventstream.EventTypeBuildLog,
			eventstream.EventSource{ProjectID: "proj-1", BuildID: "b1"},
			map[string]any{"message": "Step 1/3", "sequence_number": 1},
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventID).NotTo(BeEmpty())
		Expect(event.EmittedAt.IsZero()).To(BeFalse())
		Expect(event.Payload).To(MatchJSON(`{"message":"Step 1/3","sequence_number":1}`))

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())
		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("payload"))
		Expect(got["source"]).To(Equal(map[string]any{"project_id": "proj-1", "build_id": "b1"}))
	})

	It("rejects payloads that cannot be marshaled", func() {
		_, err := eventstream.NewStreamEvent(eventstream.EventTypeBuildLog, eventstream.EventSource{}, func() {})
		Expect(err).To(MatchError(ContainSubstring("marshaling cloudctl.build.log payload")))
	})

	It("keys events by request, then build, then event id", func() {
		e := &eventstream.StreamEvent{EventID: "evt", Source: eventstream.EventSource{RequestID: "r1", BuildID: "b1"}}
		Expect(e.Key()).To(Equal("r1"))

		e.Source.RequestID = ""
		Expect(e.Key()).To(Equal("b1"))

		e.Source.BuildID = ""
		Expect(e.Key()).To(Equal("evt"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.EventTypeRequestProgress).To(Equal("cloudctl.request.progress"))
		Expect(eventstream.EventTypeBuildLog).To(Equal("cloudctl.build.log"))
		Expect(eventstream.ErrNilEvent).To(MatchError("nil stream event"))
	})
})
