package compliance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "complianceadvisor/internal/errors"
)

func defaultRules(t *testing.T) *Rules {
	t.Helper()
	r, err := Default()
	require.NoError(t, err)
	return r
}

func TestRequirementsFor(t *testing.T) {
	rules := defaultRules(t)

	tests := []struct {
		name           string
		in             Classification
		wantDocuments  []string
		wantCompliance []string
	}{
		{
			name:           "exact match",
			in:             Classification{"India", "Business", "Fintech / Payments"},
			wantDocuments:  []string{"Company Registration Certificate", "Director KYC", "Tax Registration"},
			wantCompliance: []string{"PCI DSS", "RBI KYC"},
		},
		{
			name:           "exact match is sorted",
			in:             Classification{"USA", "Business", "eSIM / Telecom"},
			wantDocuments:  []string{"Company Registration Certificate", "Director KYC", "Tax Registration"},
			wantCompliance: []string{"FCC Rules", "PCI DSS", "SOC 2"},
		},
		{
			name:           "falls back to product default",
			in:             Classification{"UAE", "Individual", "Insurance"},
			wantDocuments:  []string{"Address Proof", "National ID", "Passport"},
			wantCompliance: []string{"SOC 2"},
		},
		{
			name:           "empty default stays empty",
			in:             Classification{"India", "Business", "eSIM / Telecom"},
			wantDocuments:  []string{"Company Registration Certificate", "Director KYC", "Tax Registration"},
			wantCompliance: []string{},
		},
		{
			name:           "unknown product and country",
			in:             Classification{"Mars", "Individual", "Space Tourism"},
			wantDocuments:  []string{"Address Proof", "National ID", "Passport"},
			wantCompliance: []string{},
		},
		{
			name:           "EU adds GDPR to default",
			in:             Classification{"Germany (EU)", "Individual", "eSIM / Telecom"},
			wantDocuments:  []string{"Address Proof", "National ID", "Passport"},
			wantCompliance: []string{"GDPR"},
		},
		{
			name:           "EU does not duplicate GDPR",
			in:             Classification{"Germany (EU)", "Business", "Fintech / Payments"},
			wantDocuments:  []string{"Company Registration Certificate", "Director KYC", "Tax Registration"},
			wantCompliance: []string{"GDPR", "PCI DSS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rules.RequirementsFor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDocuments, got.Documents)
			assert.Equal(t, tt.wantCompliance, got.Compliance)
		})
	}
}

func TestRequirementsFor_IsPure(t *testing.T) {
	rules := defaultRules(t)
	in := Classification{"Germany (EU)", "Business", "eSIM / Telecom"}

	first, err := rules.RequirementsFor(in)
	require.NoError(t, err)
	first.Compliance[0] = "tampered"
	first.Documents[0] = "tampered"

	second, err := rules.RequirementsFor(in)
	require.NoError(t, err)
	third, err := rules.RequirementsFor(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"GDPR"}, second.Compliance)
	assert.Equal(t, second, third)

	// The EU append must not leak into the shared default for other countries.
	other, err := rules.RequirementsFor(Classification{"India", "Business", "eSIM / Telecom"})
	require.NoError(t, err)
	assert.Empty(t, other.Compliance)
}

func TestRequirementsFor_IndividualDocumentsIgnoreCountryAndProduct(t *testing.T) {
	rules := defaultRules(t)
	want := []string{"Address Proof", "National ID", "Passport"}

	for _, country := range []string{"India", "USA", "Germany (EU)", "Nowhere"} {
		for _, product := range []string{"Fintech / Payments", "Insurance", "anything"} {
			got, err := rules.RequirementsFor(Classification{country, "Individual", product})
			require.NoError(t, err)
			assert.Equal(t, want, got.Documents)
		}
	}
}

func TestRequirementsFor_UnknownEntityType(t *testing.T) {
	rules := defaultRules(t)

	_, err := rules.RequirementsFor(Classification{"India", "Partnership", "Insurance"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownEntityType)
}

func TestOptions(t *testing.T) {
	opts := defaultRules(t).Options()
	assert.Equal(t, []string{"Individual", "Business"}, opts.EntityTypes)
	assert.Contains(t, opts.Countries, "Germany (EU)")
	assert.Len(t, opts.ProductCategories, 3)
}

func TestParse_ValidationFailures(t *testing.T) {
	const header = `
eu_jurisdictions = ["Germany (EU)"]
countries = ["India", "Germany (EU)"]
entity_types = ["Individual"]
product_categories = ["Insurance"]

[documents]
Individual = ["Passport"]
`
	tests := []struct {
		name    string
		table   string
		wantErr string
	}{
		{
			name:    "unknown top-level key",
			table:   "bogus = 1\n" + header,
			wantErr: "unknown keys",
		},
		{
			name: "undeclared country in rule",
			table: header + `
[[rule]]
country = "France"
entity_type = "Individual"
product_category = "Insurance"
compliance = ["GDPR"]
`,
			wantErr: `undeclared country "France"`,
		},
		{
			name: "duplicate rule",
			table: header + `
[[rule]]
country = "India"
entity_type = "Individual"
product_category = "Insurance"
compliance = ["A"]

[[rule]]
country = "India"
entity_type = "Individual"
product_category = "Insurance"
compliance = ["B"]
`,
			wantErr: "duplicate entry",
		},
		{
			name: "entity type without documents",
			table: `
countries = ["India"]
entity_types = ["Individual", "Business"]
product_categories = ["Insurance"]

[documents]
Individual = ["Passport"]
`,
			wantErr: `no list for entity type "Business"`,
		},
		{
			name: "undeclared default product",
			table: header + `
[defaults]
"Crypto" = ["X"]
`,
			wantErr: `undeclared product category "Crypto"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.table)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte(embeddedTable), 0o600))

	rules, err := LoadFile(path)
	require.NoError(t, err)
	got, err := rules.RequirementsFor(Classification{"Singapore", "Business", "Fintech / Payments"})
	require.NoError(t, err)
	assert.Equal(t, []string{"MAS Guidelines", "PCI DSS"}, got.Compliance)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
