package event

import "testing"

func TestDetermineMultiDayAndPioneer(t *testing.T) {
	tests := []struct {
		name       string
		distances  []Distance
		dateStart  string
		isMultiDay bool
		isPioneer  bool
		rideDays   int
		dateEnd    string
	}{
		{
			name: "single day",
			distances: []Distance{
				{Distance: "25", Date: "2025-03-20"},
				{Distance: "50", Date: "2025-03-20"},
			},
			dateStart:  "2025-03-20",
			isMultiDay: false,
			isPioneer:  false,
			rideDays:   1,
			dateEnd:    "2025-03-20",
		},
		{
			name:       "no dated distances",
			distances:  []Distance{{Distance: "50"}},
			dateStart:  "2025-03-20",
			isMultiDay: false,
			isPioneer:  false,
			rideDays:   1,
			dateEnd:    "2025-03-20",
		},
		{
			name: "two days",
			distances: []Distance{
				{Distance: "50", Date: "2025-03-20", StartTime: "07:00 am"},
				{Distance: "75", Date: "2025-03-21", StartTime: "06:00 am"},
			},
			dateStart:  "2025-03-20",
			isMultiDay: true,
			isPioneer:  false,
			rideDays:   2,
			dateEnd:    "2025-03-21",
		},
		{
			name: "three days is a pioneer ride",
			distances: []Distance{
				{Distance: "25", Date: "2025-06-01"},
				{Distance: "25", Date: "2025-06-02"},
				{Distance: "25", Date: "2025-06-03"},
			},
			dateStart:  "2025-06-01",
			isMultiDay: true,
			isPioneer:  true,
			rideDays:   3,
			dateEnd:    "2025-06-03",
		},
		{
			name: "calendar span wins over distinct date count",
			distances: []Distance{
				{Distance: "50", Date: "2025-06-01"},
				{Distance: "50", Date: "2025-06-04"},
			},
			dateStart:  "2025-06-01",
			isMultiDay: true,
			isPioneer:  true,
			rideDays:   4,
			dateEnd:    "2025-06-04",
		},
		{
			name: "unparseable dates fall back to distinct count",
			distances: []Distance{
				{Distance: "50", Date: "first day"},
				{Distance: "50", Date: "second day"},
			},
			dateStart:  "who knows",
			isMultiDay: true,
			isPioneer:  false,
			rideDays:   2,
			dateEnd:    "second day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isMultiDay, isPioneer, rideDays, dateEnd := DetermineMultiDayAndPioneer(tt.distances, tt.dateStart)

			if isMultiDay != tt.isMultiDay {
				t.Errorf("isMultiDay = %v, expected %v", isMultiDay, tt.isMultiDay)
			}
			if isPioneer != tt.isPioneer {
				t.Errorf("isPioneer = %v, expected %v", isPioneer, tt.isPioneer)
			}
			if rideDays != tt.rideDays {
				t.Errorf("rideDays = %d, expected %d", rideDays, tt.rideDays)
			}
			if dateEnd != tt.dateEnd {
				t.Errorf("dateEnd = %q, expected %q", dateEnd, tt.dateEnd)
			}
		})
	}
}
