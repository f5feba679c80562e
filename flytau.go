// This package contains all the types for the flight scheduler. No datastore imports.
package flytau

import "time"

const(
	// Resources with no commitments are assumed to be parked here. Overridden by config
	// key "homebase".
	DefaultHomeBase Airport = "TLV"

	// Flights strictly longer than this are long-haul; they need bigger aircraft, long-haul
	// certified crew, and a bigger crew.
	LongHaulThresholdMinutes = 360

	// A flight can only be cancelled while at least this far from departure
	CancellationNotice = 72 * time.Hour
)
