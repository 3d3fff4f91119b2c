// Package data provides thread-safe storage for the enriched medication
// table. The DataContainer swaps whole datasets atomically so readers never
// observe a partial refresh.
package data

import (
	"sync/atomic"
	"time"

	"github.com/vineetdaniels2108/RxNormSIGProject/enrichment/entities"
	"github.com/vineetdaniels2108/RxNormSIGProject/interfaces"
	"github.com/vineetdaniels2108/RxNormSIGProject/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the enriched table behind atomic pointers for
// zero-downtime updates
type DataContainer struct {
	records         atomic.Value // []entities.EnrichedRecord
	recordsMap      atomic.Value // map[string]entities.EnrichedRecord
	runStats        atomic.Value // *entities.RunStats
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.records.Store(make([]entities.EnrichedRecord, 0))
	dc.recordsMap.Store(make(map[string]entities.EnrichedRecord))
	dc.runStats.Store(&entities.RunStats{})
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Thread-safe getters with type check

// GetRecords returns the enriched record list
func (dc *DataContainer) GetRecords() []entities.EnrichedRecord {
	if v := dc.records.Load(); v != nil {
		if records, ok := v.([]entities.EnrichedRecord); ok {
			return records
		}
	}

	logging.Warn("Enriched record list is empty or invalid")
	return []entities.EnrichedRecord{}
}

// GetRecordsMap returns the rxcui lookup map for O(1) access
func (dc *DataContainer) GetRecordsMap() map[string]entities.EnrichedRecord {
	if v := dc.recordsMap.Load(); v != nil {
		if recordsMap, ok := v.(map[string]entities.EnrichedRecord); ok {
			return recordsMap
		}
	}

	logging.Warn("Enriched record map is empty or invalid")
	return make(map[string]entities.EnrichedRecord)
}

// GetRunStats returns the statistics of the last enrichment run
func (dc *DataContainer) GetRunStats() *entities.RunStats {
	if v := dc.runStats.Load(); v != nil {
		if stats, ok := v.(*entities.RunStats); ok {
			return stats
		}
	}

	logging.Warn("Run statistics are empty or invalid")
	return &entities.RunStats{}
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data refresh is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically swaps in a freshly enriched dataset
func (dc *DataContainer) UpdateData(records []entities.EnrichedRecord, recordsMap map[string]entities.EnrichedRecord, stats *entities.RunStats) {
	dc.records.Store(records)
	dc.recordsMap.Store(recordsMap)
	dc.runStats.Store(stats)
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a data refresh.
// Returns true if the refresh can proceed, false if another one is running.
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data refresh
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}

// BuildRecordsMap builds the rxcui lookup map from a record list.
func BuildRecordsMap(records []entities.EnrichedRecord) map[string]entities.EnrichedRecord {
	m := make(map[string]entities.EnrichedRecord, len(records))
	for i := range records {
		m[records[i].RxCUI] = records[i]
	}
	return m
}
