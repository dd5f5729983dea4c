package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConnectionStatus(t *testing.T) {
	valid := []byte(`{"companyId":"c1","platformKey":"xero","connectionId":"conn-1","newStatus":"Linked"}`)
	assert.NoError(t, ValidateConnectionStatus(valid))

	missing := []byte(`{"companyId":"c1","platformKey":"xero","newStatus":"Linked"}`)
	assert.Error(t, ValidateConnectionStatus(missing))

	empty := []byte(`{"companyId":"","platformKey":"xero","connectionId":"conn-1","newStatus":"Linked"}`)
	assert.Error(t, ValidateConnectionStatus(empty))

	wrongType := []byte(`{"companyId":42,"platformKey":"xero","connectionId":"conn-1","newStatus":"Linked"}`)
	assert.Error(t, ValidateConnectionStatus(wrongType))
}

func TestValidateDataSync(t *testing.T) {
	valid := []byte(`{"companyId":"c1","connectionId":"conn-1","dataType":"balanceSheet"}`)
	assert.NoError(t, ValidateDataSync(valid))

	// Unknown data types pass schema validation; the orchestrator decides
	// whether they map to a requirement.
	unknownType := []byte(`{"companyId":"c1","connectionId":"conn-1","dataType":"bankTransactions"}`)
	assert.NoError(t, ValidateDataSync(unknownType))

	missing := []byte(`{"companyId":"c1","connectionId":"conn-1"}`)
	assert.Error(t, ValidateDataSync(missing))
}

func TestValidateCategorisation(t *testing.T) {
	assert.NoError(t, ValidateCategorisation([]byte(`{"companyId":"c1"}`)))
	assert.Error(t, ValidateCategorisation([]byte(`{}`)))
	assert.Error(t, ValidateCategorisation([]byte(`not json`)))
}
