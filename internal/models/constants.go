package models

// Persisted collection keys.
const (
	KeyUser      = "labcare_user"
	KeyAuth      = "labcare_auth"
	KeyBookings  = "labcare_bookings"
	KeyReports   = "labcare_reports"
	KeyFeedbacks = "labcare_feedbacks"
)

const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"

	ReportStatusReady = "Ready"
)

const (
	CollectionHome   = "Home Sample Collection"
	CollectionWalkIn = "Walk-in at Lab"
)

const (
	BookingIDPrefix  = "LBC-"
	FeedbackIDPrefix = "FB-"
)

const (
	TestCBC            = "Complete Blood Count (CBC)"
	TestLipidProfile   = "Lipid Profile"
	TestThyroidPanel   = "Thyroid Panel"
	TestCovidPCR       = "COVID-19 PCR"
	TestLiverFunction  = "Liver Function Test"
	DefaultUserEmail   = "user@example.com"
	DefaultUserName    = "User"
	RecentBookingsSize = 5
)

// LabTest is one entry of the price catalog. Prices are in LKR.
type LabTest struct {
	Name  string `yaml:"name" json:"name"`
	Price int64  `yaml:"price" json:"price"`
}

// DefaultCatalog is the built-in price table.
func DefaultCatalog() []LabTest {
	return []LabTest{
		{Name: TestCBC, Price: 1500},
		{Name: TestLipidProfile, Price: 2500},
		{Name: TestThyroidPanel, Price: 3000},
		{Name: TestCovidPCR, Price: 5000},
		{Name: TestLiverFunction, Price: 2000},
	}
}

// Catalog maps test names to prices.
type Catalog struct {
	tests  []LabTest
	prices map[string]int64
}

func NewCatalog(tests []LabTest) *Catalog {
	if len(tests) == 0 {
		tests = DefaultCatalog()
	}
	c := &Catalog{tests: tests, prices: make(map[string]int64, len(tests))}
	for _, t := range tests {
		c.prices[t.Name] = t.Price
	}
	return c
}

// Price returns the price for a test type, or 0 for an unknown type.
func (c *Catalog) Price(testType string) int64 {
	return c.prices[testType]
}

func (c *Catalog) Known(testType string) bool {
	_, ok := c.prices[testType]
	return ok
}

func (c *Catalog) Tests() []LabTest {
	out := make([]LabTest, len(c.tests))
	copy(out, c.tests)
	return out
}
