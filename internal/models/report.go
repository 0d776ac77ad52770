package models

// Report is a finished (or pending) lab result.
type Report struct {
	ID       string `json:"id"`
	TestType string `json:"testType"`
	Price    int64  `json:"price"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// ExampleReports returns the records seeded into an empty report collection.
func ExampleReports() []Report {
	return []Report{
		{ID: "LBC-2025-1042", TestType: TestCBC, Price: 1500, Date: "Dec 1, 2025", Status: ReportStatusReady},
		{ID: "LBC-2025-0991", TestType: TestLipidProfile, Price: 2500, Date: "Nov 20, 2025", Status: ReportStatusReady},
		{ID: "LBC-2025-0880", TestType: TestThyroidPanel, Price: 3000, Date: "Nov 5, 2025", Status: ReportStatusReady},
	}
}
