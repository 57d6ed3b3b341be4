package domain

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Slot is a derived half-open time interval [Start, End) bookable for one
// doctor on one date. Slots are never persisted: they are recomputed from
// schedule rules on demand, which avoids a consistency problem between a
// cached slot table and the live appointment table.
type Slot struct {
	DoctorID         int64
	Date             time.Time
	Start            types.TimeString
	End              types.TimeString
	DurationMinutes  int
	Teleconsultation bool
	Available        bool
}

// Covers returns true if the slot starts at the given time
func (s *Slot) Covers(start types.TimeString) bool {
	return s.Start == start
}
