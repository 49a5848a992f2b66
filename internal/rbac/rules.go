package rbac

const (
	PermTestGenerate   = "test:generate"
	PermTestView       = "test:view"
	PermAnswerSubmit   = "answer:submit"
	PermResultsView    = "results:view"
	PermResultsViewAll = "results:view-all" // other users' results
	PermResultsExport  = "results:export"
	PermEvaluateRun    = "evaluate:run"
)

// Default policy.
var RolePermissions = map[string][]string{
	"student": {
		PermTestView,
		PermAnswerSubmit,
		PermResultsView,
	},
	"teacher": {
		PermTestGenerate,
		PermTestView,
		PermAnswerSubmit,
		"results:*",
		PermEvaluateRun,
	},
	"admin": {
		"*", // everything
	},
}
