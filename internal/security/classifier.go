package security

import "github.com/femar/gestao/internal/rbac"

// ActionKind names the category of a console action for risk purposes.
type ActionKind string

// Action kinds understood by the classifier.
const (
	KindLogin               ActionKind = "login"
	KindLoginFailed         ActionKind = "login-failed"
	KindPasswordChange      ActionKind = "password-change"
	KindDocumentUpload      ActionKind = "document-upload"
	KindInvoiceUpload       ActionKind = "invoice-upload"
	KindUserCreate          ActionKind = "user-create"
	KindUserUpdate          ActionKind = "user-update"
	KindUserDelete          ActionKind = "user-delete"
	KindPermissionGrant     ActionKind = "permission-grant"
	KindPermissionSave      ActionKind = "permission-save"
	KindReportGeneration    ActionKind = "report-generation"
	KindDataExport          ActionKind = "data-export"
	KindAlertSettingsChange ActionKind = "alert-settings-change"
)

// DefaultAnomalyThreshold is the monetary cutoff above which uploads are High.
const DefaultAnomalyThreshold = 20000.0

// Signal is the contextual input to classification.
type Signal struct {
	Kind       ActionKind
	Amount     float64
	Permission rbac.Permission
}

// Rule is one row of the priority table. A nil Match matches every signal of
// Kind. Among matching rules the highest Specificity wins; ties go to the
// earlier row.
type Rule struct {
	Name        string
	Kind        ActionKind
	Match       func(s Signal, threshold float64) bool
	Level       RiskLevel
	Specificity int
}

// Decision is the classification outcome and the rule that produced it.
type Decision struct {
	Level RiskLevel
	Rule  string
}

const fallbackRule = "default"

// DefaultRules is the reference risk policy.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "login", Kind: KindLogin, Level: RiskLow, Specificity: 1},
		{Name: "login-failed", Kind: KindLoginFailed, Level: RiskMedium, Specificity: 1},
		{Name: "password-change", Kind: KindPasswordChange, Level: RiskLow, Specificity: 1},
		{Name: "document-upload", Kind: KindDocumentUpload, Level: RiskLow, Specificity: 1},
		{Name: "document-upload-anomalous-amount", Kind: KindDocumentUpload, Match: amountAboveThreshold, Level: RiskHigh, Specificity: 2},
		{Name: "invoice-upload", Kind: KindInvoiceUpload, Level: RiskLow, Specificity: 1},
		{Name: "invoice-upload-anomalous-amount", Kind: KindInvoiceUpload, Match: amountAboveThreshold, Level: RiskHigh, Specificity: 2},
		{Name: "user-create", Kind: KindUserCreate, Level: RiskMedium, Specificity: 1},
		{Name: "user-create-manage-permissions", Kind: KindUserCreate, Match: grantsManagePermissions, Level: RiskHigh, Specificity: 2},
		{Name: "user-update", Kind: KindUserUpdate, Level: RiskMedium, Specificity: 1},
		{Name: "user-update-manage-permissions", Kind: KindUserUpdate, Match: grantsManagePermissions, Level: RiskHigh, Specificity: 2},
		{Name: "user-delete", Kind: KindUserDelete, Level: RiskMedium, Specificity: 1},
		{Name: "permission-grant", Kind: KindPermissionGrant, Level: RiskMedium, Specificity: 1},
		{Name: "permission-grant-manage-permissions", Kind: KindPermissionGrant, Match: grantsManagePermissions, Level: RiskHigh, Specificity: 2},
		{Name: "permission-save", Kind: KindPermissionSave, Level: RiskMedium, Specificity: 1},
		{Name: "report-generation", Kind: KindReportGeneration, Level: RiskMedium, Specificity: 1},
		{Name: "data-export", Kind: KindDataExport, Level: RiskMedium, Specificity: 1},
		{Name: "alert-settings-change", Kind: KindAlertSettingsChange, Level: RiskMedium, Specificity: 1},
	}
}

func amountAboveThreshold(s Signal, threshold float64) bool {
	return s.Amount > threshold
}

func grantsManagePermissions(s Signal, _ float64) bool {
	return s.Permission == rbac.PermManagePermissions
}

// Classifier assigns risk levels. It holds no mutable state.
type Classifier struct {
	threshold float64
	rules     []Rule
}

// NewClassifier builds a Classifier with the default rules. A non-positive
// threshold falls back to DefaultAnomalyThreshold.
func NewClassifier(threshold float64) *Classifier {
	return NewClassifierWithRules(threshold, DefaultRules())
}

// NewClassifierWithRules builds a Classifier over a custom priority table.
func NewClassifierWithRules(threshold float64, rules []Rule) *Classifier {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}
	table := make([]Rule, len(rules))
	copy(table, rules)
	return &Classifier{threshold: threshold, rules: table}
}

// Threshold returns the anomaly threshold in use.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify returns the risk level for s.
func (c *Classifier) Classify(s Signal) RiskLevel {
	return c.Decide(s).Level
}

// Decide returns the risk level together with the winning rule name.
// Signals no rule covers are Medium.
func (c *Classifier) Decide(s Signal) Decision {
	best := -1
	for i, rule := range c.rules {
		if rule.Kind != s.Kind {
			continue
		}
		if rule.Match != nil && !rule.Match(s, c.threshold) {
			continue
		}
		if best < 0 || rule.Specificity > c.rules[best].Specificity {
			best = i
		}
	}
	if best < 0 {
		return Decision{Level: RiskMedium, Rule: fallbackRule}
	}
	return Decision{Level: c.rules[best].Level, Rule: c.rules[best].Name}
}
