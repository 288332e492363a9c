package services

import "go.uber.org/atomic"

// RecordStats counts messages the engine has processed since start. It is
// shared between the engine, the health endpoint and the metrics gauge.
type RecordStats struct {
	processed  atomic.Int64
	milestones atomic.Int64
}

func NewRecordStats() *RecordStats {
	return &RecordStats{}
}

func (rs *RecordStats) RecordsProcessed() int64 {
	return rs.processed.Load()
}

func (rs *RecordStats) MilestonesSent() int64 {
	return rs.milestones.Load()
}
