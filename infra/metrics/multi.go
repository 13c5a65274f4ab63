package metrics

import coremetrics "github.com/mjoly/fieldops/core/metrics"

// MultiSink fanouts assignment records to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards the records to all sinks, returning the first error encountered.
func (m *MultiSink) RecordAssignment(records []coremetrics.AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(records); err != nil {
			return err
		}
	}
	return nil
}

// RecordBatch forwards batch summaries when supported by the sink.
func (m *MultiSink) RecordBatch(rec coremetrics.BatchRecord) error {
	for _, s := range m.Sinks {
		if br, ok := s.(coremetrics.BatchRecorder); ok {
			if err := br.RecordBatch(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordStatusChange forwards lifecycle transitions when supported by the sink.
func (m *MultiSink) RecordStatusChange(rec coremetrics.StatusRecord) error {
	for _, s := range m.Sinks {
		if sr, ok := s.(coremetrics.StatusRecorder); ok {
			if err := sr.RecordStatusChange(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
