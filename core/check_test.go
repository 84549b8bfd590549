package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
)

func TestCheckFailOn(t *testing.T) {
	result := &schema.AdvancedAnalysisResult{
		Security: schema.SecurityReport{Vulnerabilities: []schema.SecurityVulnerability{
			{Severity: schema.SeverityHigh},
			{Severity: schema.SeverityMedium},
		}},
	}

	tests := []struct {
		name      string
		threshold schema.Severity
		count     int
	}{
		{"disabled", "", 0},
		{"low", schema.SeverityLow, 2},
		{"high", schema.SeverityHigh, 1},
		{"critical", schema.SeverityCritical, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFailOn(&contract.Config{FailOn: tt.threshold}, result)
			if tt.count == 0 {
				assert.NoError(t, err)
				return
			}
			var gate *GateError
			if assert.True(t, errors.As(err, &gate)) {
				assert.Equal(t, tt.count, gate.Count)
			}
		})
	}

	assert.EqualError(t, &GateError{Threshold: schema.SeverityHigh, Count: 1}, "1 vulnerability at or above high severity")
	assert.EqualError(t, &GateError{Threshold: schema.SeverityLow, Count: 2}, "2 vulnerabilities at or above low severity")
}

func TestPrintGateResult(t *testing.T) {
	var buf bytes.Buffer
	PrintGateResult(&buf, &contract.Config{}, nil)
	assert.Empty(t, buf.String())

	cfg := &contract.Config{FailOn: schema.SeverityHigh}
	PrintGateResult(&buf, cfg, nil)
	assert.Contains(t, buf.String(), "No vulnerabilities at or above high severity")

	buf.Reset()
	PrintGateResult(&buf, cfg, &GateError{Threshold: schema.SeverityHigh, Count: 3})
	assert.Contains(t, buf.String(), "Security gate failed: 3 vulnerabilities")
}
