package metrics

// MultiSink fans out run events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordLaneLoad forwards lane loads to the sinks supporting them.
func (m *MultiSink) RecordLaneLoad(loads []LaneLoad) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(LaneLoadRecorder); ok {
			if err := rec.RecordLaneLoad(loads); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the sinks holding connections.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
