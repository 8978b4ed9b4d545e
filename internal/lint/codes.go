package lint

// Code identifies a lint rule. Codes are short opaque strings grouped
// by prefix per source-file kind. The table below is the closed set;
// TestCodesGloballyUnique guards it against collisions.
type Code string

// Manifest-level codes (TMPL_ prefix).
const (
	// CodeTmplEmptyFile: the manifest parses to no JSON at all. Fatal
	// for the pass; no other validation runs.
	CodeTmplEmptyFile Code = "TMPL_EMPTY_FILE"
	// CodeTmplInvalidRelPath: a path field holds something that is not a
	// well-formed relative path.
	CodeTmplInvalidRelPath Code = "TMPL_INVALID_REL_PATH"
	// CodeTmplRelPathNotFound: a path field points at nothing, or at a
	// directory.
	CodeTmplRelPathNotFound Code = "TMPL_REL_PATH_NOT_FOUND"
	// CodeTmplRelPathNotJSON: a field that must reference a JSON file
	// references something else.
	CodeTmplRelPathNotJSON Code = "TMPL_REL_PATH_NOT_JSON"
	// CodeTmplDuplicateRelPath: the same relative path is referenced by
	// more than one field.
	CodeTmplDuplicateRelPath Code = "TMPL_DUPLICATE_REL_PATH"
	// CodeTmplAppMissingObjects: an app/embeddedapp template declares no
	// dashboards, dataflows, external files, lenses or recipes.
	CodeTmplAppMissingObjects Code = "TMPL_APP_MISSING_OBJECTS"
	// CodeTmplDashOneDashboard: a dashboard template must declare
	// exactly one dashboard.
	CodeTmplDashOneDashboard Code = "TMPL_DASH_ONE_DASHBOARD"
	// CodeTmplDataMissingObjects: a data template declares none of
	// datasetFiles, externalFiles, recipes.
	CodeTmplDataMissingObjects Code = "TMPL_DATA_MISSING_OBJECTS"
	// CodeTmplDataUnsupportedObject: a data template declares an asset
	// collection data templates do not support.
	CodeTmplDataUnsupportedObject Code = "TMPL_DATA_UNSUPPORTED_OBJECT"
	// CodeTmplDataNoDependencies: a data template declares template
	// dependencies.
	CodeTmplDataNoDependencies Code = "TMPL_DATA_NO_DEPENDENCIES"
	// CodeTmplEmbeddedNoUIPages: an embeddedapp template's UI file
	// declares pages.
	CodeTmplEmbeddedNoUIPages Code = "TMPL_EMBEDDED_APP_NO_UI_PAGES"
	// CodeTmplEmbeddedRequiresShare: an embeddedapp template's folder
	// file declares no shares.
	CodeTmplEmbeddedRequiresShare Code = "TMPL_EMBEDDED_APP_REQUIRES_SHARE"
	// CodeTmplDuplicateName: two assets share a name within one
	// namespace.
	CodeTmplDuplicateName Code = "TMPL_DUPLICATE_NAME"
	// CodeTmplDuplicateLabel: two assets share a label.
	CodeTmplDuplicateLabel Code = "TMPL_DUPLICATE_LABEL"
)

// Variable-definition codes (VARS_ prefix).
const (
	CodeVarsInvalidName         Code = "VARS_INVALID_NAME"
	CodeVarsRegexMissingSlash   Code = "VARS_REGEX_MISSING_SLASH"
	CodeVarsInvalidRegex        Code = "VARS_INVALID_REGEX"
	CodeVarsInvalidRegexOptions Code = "VARS_INVALID_REGEX_OPTIONS"
	CodeVarsMultipleRegexes     Code = "VARS_MULTIPLE_REGEXES"
)

// UI-page codes (UI_ prefix).
const (
	CodeUIPageUnknownVariable     Code = "UI_PAGE_UNKNOWN_VARIABLE"
	CodeUIPageUnsupportedVariable Code = "UI_PAGE_UNSUPPORTED_VARIABLE"
)

// Layout codes (LAYOUT_ prefix).
const (
	CodeLayoutUnknownVariable     Code = "LAYOUT_UNKNOWN_VARIABLE"
	CodeLayoutUnsupportedVariable Code = "LAYOUT_UNSUPPORTED_VARIABLE"
)

// Readiness codes (READINESS_ prefix).
const (
	CodeReadinessUnknownVariable Code = "READINESS_UNKNOWN_VARIABLE"
)

// Auto-install codes (AUTO_INSTALL_ prefix).
const (
	CodeAutoInstallUnknownVariable Code = "AUTO_INSTALL_UNKNOWN_VARIABLE"
)

// Rules-file codes (RULES_ prefix).
const (
	CodeRulesDuplicateConstant Code = "RULES_DUPLICATE_CONSTANT"
	CodeRulesDuplicateRuleName Code = "RULES_DUPLICATE_RULE_NAME"
	CodeRulesDuplicateMacro    Code = "RULES_DUPLICATE_MACRO"
)

// Schema-validation code (SCHEMA_ prefix), emitted by the schemaval
// orchestrator through the observer hook.
const (
	CodeSchemaValidation Code = "SCHEMA_VALIDATION"
)

// AllCodes enumerates the closed code table. Every code emitted
// anywhere in the module must appear here exactly once.
var AllCodes = []Code{
	CodeTmplEmptyFile,
	CodeTmplInvalidRelPath,
	CodeTmplRelPathNotFound,
	CodeTmplRelPathNotJSON,
	CodeTmplDuplicateRelPath,
	CodeTmplAppMissingObjects,
	CodeTmplDashOneDashboard,
	CodeTmplDataMissingObjects,
	CodeTmplDataUnsupportedObject,
	CodeTmplDataNoDependencies,
	CodeTmplEmbeddedNoUIPages,
	CodeTmplEmbeddedRequiresShare,
	CodeTmplDuplicateName,
	CodeTmplDuplicateLabel,
	CodeVarsInvalidName,
	CodeVarsRegexMissingSlash,
	CodeVarsInvalidRegex,
	CodeVarsInvalidRegexOptions,
	CodeVarsMultipleRegexes,
	CodeUIPageUnknownVariable,
	CodeUIPageUnsupportedVariable,
	CodeLayoutUnknownVariable,
	CodeLayoutUnsupportedVariable,
	CodeReadinessUnknownVariable,
	CodeAutoInstallUnknownVariable,
	CodeRulesDuplicateConstant,
	CodeRulesDuplicateRuleName,
	CodeRulesDuplicateMacro,
	CodeSchemaValidation,
}
