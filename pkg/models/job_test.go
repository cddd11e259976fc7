package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func money(amount string, currency string) *Money {
	return &Money{Amount: decimal.RequireFromString(amount), Currency: currency}
}

func TestValidateSalaryRange(t *testing.T) {
	cases := []struct {
		name    string
		job     Job
		wantErr bool
	}{
		{"both nil", Job{}, false},
		{"min only", Job{MinSalary: money("1000", "USD")}, false},
		{"max only", Job{MaxSalary: money("2000", "USD")}, false},
		{"max >= min", Job{MinSalary: money("1000", "USD"), MaxSalary: money("2000", "USD")}, false},
		{"max == min", Job{MinSalary: money("1000", "USD"), MaxSalary: money("1000", "USD")}, false},
		{"max < min", Job{MinSalary: money("2000", "USD"), MaxSalary: money("1000", "USD")}, true},
		{"negative min", Job{MinSalary: money("-1", "USD")}, true},
		{"negative max", Job{MaxSalary: money("-1", "USD")}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.job.ValidateSalaryRange()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Job{
		Title:     "Backend Engineer",
		Link:      "https://remotive.com/remote-jobs/123",
		Locations: []string{"US", "GB-ENG", "US-CA"},
	}
	assert.NoError(t, valid.Validate())

	missingTitle := valid
	missingTitle.Title = ""
	assert.Error(t, missingTitle.Validate())

	badLink := valid
	badLink.Link = "not a url"
	assert.Error(t, badLink.Validate())

	badLocation := valid
	badLocation.Locations = []string{"X"}
	assert.Error(t, badLocation.Validate())

	invertedRange := valid
	invertedRange.MinSalary = money("2000", "USD")
	invertedRange.MaxSalary = money("1000", "USD")
	assert.Error(t, invertedRange.Validate())
}

func TestPortalName(t *testing.T) {
	bases := map[string]string{
		"Remotive":  "https://remotive.com",
		"Wellfound": "https://wellfound.com",
		"Himalayas": "https://himalayas.app",
	}

	assert.Equal(t, "Remotive", PortalName("https://remotive.com/remote-jobs/123", bases))
	assert.Equal(t, "Wellfound", PortalName("https://wellfound.com/jobs/456", bases))
	assert.Equal(t, "", PortalName("https://example.com/jobs/789", bases))
}
