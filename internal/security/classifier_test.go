package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/femar/gestao/internal/rbac"
)

func TestClassifierDefaultRules(t *testing.T) {
	c := NewClassifier(0)
	assert.Equal(t, DefaultAnomalyThreshold, c.Threshold())

	tests := []struct {
		name   string
		signal Signal
		want   RiskLevel
		rule   string
	}{
		{"login", Signal{Kind: KindLogin}, RiskLow, "login"},
		{"failed login", Signal{Kind: KindLoginFailed}, RiskMedium, "login-failed"},
		{"invoice at threshold", Signal{Kind: KindInvoiceUpload, Amount: 20000}, RiskLow, "invoice-upload"},
		{"invoice above threshold", Signal{Kind: KindInvoiceUpload, Amount: 20000.01}, RiskHigh, "invoice-upload-anomalous-amount"},
		{"document upload", Signal{Kind: KindDocumentUpload}, RiskLow, "document-upload"},
		{"grant ordinary permission", Signal{Kind: KindPermissionGrant, Permission: rbac.PermViewFinance}, RiskMedium, "permission-grant"},
		{"grant manage permissions", Signal{Kind: KindPermissionGrant, Permission: rbac.PermManagePermissions}, RiskHigh, "permission-grant-manage-permissions"},
		{"create user", Signal{Kind: KindUserCreate}, RiskMedium, "user-create"},
		{"create permission manager", Signal{Kind: KindUserCreate, Permission: rbac.PermManagePermissions}, RiskHigh, "user-create-manage-permissions"},
		{"update user", Signal{Kind: KindUserUpdate}, RiskMedium, "user-update"},
		{"promote to permission manager", Signal{Kind: KindUserUpdate, Permission: rbac.PermManagePermissions}, RiskHigh, "user-update-manage-permissions"},
		{"report", Signal{Kind: KindReportGeneration}, RiskMedium, "report-generation"},
		{"export", Signal{Kind: KindDataExport}, RiskMedium, "data-export"},
		{"unknown kind", Signal{Kind: "teleport"}, RiskMedium, "default"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := c.Decide(tc.signal)
			assert.Equal(t, tc.want, d.Level)
			assert.Equal(t, tc.rule, d.Rule)
			assert.Equal(t, tc.want, c.Classify(tc.signal))
		})
	}
}

func TestClassifierCustomThreshold(t *testing.T) {
	c := NewClassifier(500)
	assert.Equal(t, RiskHigh, c.Classify(Signal{Kind: KindInvoiceUpload, Amount: 501}))
	assert.Equal(t, RiskLow, c.Classify(Signal{Kind: KindInvoiceUpload, Amount: 500}))
}

func TestClassifierTiesGoToEarlierRule(t *testing.T) {
	c := NewClassifierWithRules(0, []Rule{
		{Name: "first", Kind: KindLogin, Level: RiskHigh, Specificity: 1},
		{Name: "second", Kind: KindLogin, Level: RiskLow, Specificity: 1},
	})
	assert.Equal(t, Decision{Level: RiskHigh, Rule: "first"}, c.Decide(Signal{Kind: KindLogin}))
}

func TestClassifierCopiesRules(t *testing.T) {
	rules := []Rule{{Name: "login", Kind: KindLogin, Level: RiskLow, Specificity: 1}}
	c := NewClassifierWithRules(0, rules)
	rules[0].Level = RiskHigh

	assert.Equal(t, RiskLow, c.Classify(Signal{Kind: KindLogin}))
}
